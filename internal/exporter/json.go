package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"trackpulse/pkg/contracts/domain"
)

// WriteJSON writes the dataset with a metadata envelope, the structured
// counterpart of the CSV report for web consumers.
func WriteJSON(path string, ds *domain.Dataset) error {
	slog.Info("Writing track report JSON",
		slog.String("path", path),
		slog.Int("record_count", ds.Len()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	envelope := map[string]interface{}{
		"dataset":      ds,
		"record_count": ds.Len(),
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "track_report_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
