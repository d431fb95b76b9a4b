package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"trackpulse/pkg/contracts/domain"
)

const xlsxSheetName = "Tracks"

// WriteXLSX writes the dataset report as an Excel workbook with the same
// columns as the CSV export. Counts stay numeric cells so spreadsheet
// formulas work on them; rate columns keep the 2-decimal string rendering for
// parity with the CSV export.
func WriteXLSX(path string, ds *domain.Dataset) error {
	slog.Info("Writing track report workbook",
		slog.String("path", path),
		slog.Int("record_count", ds.Len()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), xlsxSheetName)

	headerRow := make([]interface{}, len(Header))
	for i, h := range Header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, rec := range ds.Records {
		row := []interface{}{
			rec.Title,
			rec.PostedISO,
			daysCell(rec.DaysSinceUpload),
			rec.Plays,
			rec.Likes,
			rec.Reposts,
			rec.Comments,
			formatRatio(rec.PlayLikeRatio),
			formatFloat(rec.EngagementRatePct),
			formatFloat(rec.LikePct),
			formatFloat(rec.PlaysPerDay),
			string(rec.Category),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(xlsxSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// daysCell keeps absent day counts as empty cells instead of zeros
func daysCell(days *int) interface{} {
	if days == nil {
		return ""
	}
	return *days
}
