package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"trackpulse/pkg/contracts/domain"
)

// Header is the canonical column order of the exported track report.
var Header = []string{
	"TRACK", "POSTED_ISO", "DAYS",
	"PLAYS", "LIKES", "REPOSTS", "COMMENTS",
	"PLAY_LIKE_RATIO", "ENGAGEMENT_RATE_PCT", "LIKE_PCT", "PLAYS_PER_DAY",
	"CATEGORY",
}

// recordRow renders one record in Header column order
func recordRow(rec domain.TrackRecord) []string {
	return []string{
		rec.Title,
		rec.PostedISO,
		formatDays(rec.DaysSinceUpload),
		formatInt(rec.Plays),
		formatInt(rec.Likes),
		formatInt(rec.Reposts),
		formatInt(rec.Comments),
		formatRatio(rec.PlayLikeRatio),
		formatFloat(rec.EngagementRatePct),
		formatFloat(rec.LikePct),
		formatFloat(rec.PlaysPerDay),
		string(rec.Category),
	}
}

// BuildCSV renders the dataset as canonical CSV text. Rows keep the dataset's
// record order; titles are quoted only when they contain a comma, quote or
// newline, with internal quotes doubled.
func BuildCSV(ds *domain.Dataset) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}
	for i, rec := range ds.Records {
		if err := w.Write(recordRow(rec)); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return sb.String(), nil
}

// WriteOptions configures CSV file writing behavior
type WriteOptions struct {
	// BOMPrefix adds a UTF-8 BOM for Excel compatibility
	BOMPrefix bool
}

// WriteCSV writes the dataset report to a CSV file, creating parent
// directories as needed.
func WriteCSV(path string, ds *domain.Dataset, options WriteOptions) error {
	slog.Info("Writing track report CSV",
		slog.String("path", path),
		slog.Int("record_count", ds.Len()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	text, err := BuildCSV(ds)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if _, err := file.WriteString(text); err != nil {
		return fmt.Errorf("failed to write csv content: %w", err)
	}
	return nil
}
