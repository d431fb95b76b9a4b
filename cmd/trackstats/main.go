package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"trackpulse/internal/config"
	"trackpulse/internal/dataprocessing"
	"trackpulse/internal/exporter"
	"trackpulse/internal/infrastructure"
	"trackpulse/internal/services"
)

func main() {
	in := flag.String("in", "", "input csv file path (reads stdin when omitted)")
	out := flag.String("out", "", "output file path (defaults to data/reports/tracks.<format>)")
	format := flag.String("format", "csv", "output format: csv | xlsx | json")
	missingAsZero := flag.Bool("missing-as-zero", true, "coerce unparsable counts to 0 instead of dropping the row")
	showQuality := flag.Bool("show-quality", true, "flag records whose rate metrics were zeroed by a zero play count")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	// Every run gets its own trace ID so log lines correlate.
	ctx := infrastructure.EnsureTraceID(context.Background())
	logger = infrastructure.LoggerWithContext(ctx)

	exportFormat, err := services.ParseExportFormat(*format)
	if err != nil {
		logger.Error("Invalid format", slog.String("format", *format))
		os.Exit(2)
	}

	input, err := readInput(*in)
	if err != nil {
		logger.Error("Failed to read input", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting track analysis",
		slog.String("input", inputName(*in)),
		slog.String("format", string(exportFormat)),
		slog.Bool("missing_as_zero", *missingAsZero),
		slog.Bool("show_quality", *showQuality))

	opts := dataprocessing.Options{
		MissingAsZero: *missingAsZero,
		ShowQuality:   *showQuality,
	}

	svc := services.NewTrackService(cfg, paths, logger)
	dataset, err := svc.Analyze(ctx, string(input), opts)
	if err != nil {
		logger.Error("Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = paths.GetReportPath(fmt.Sprintf("tracks.%s", exportFormat))
	}

	switch exportFormat {
	case services.FormatCSV:
		err = exporter.WriteCSV(path, dataset, exporter.WriteOptions{BOMPrefix: true})
	case services.FormatXLSX:
		err = exporter.WriteXLSX(path, dataset)
	case services.FormatJSON:
		err = exporter.WriteJSON(path, dataset)
	}
	if err != nil {
		logger.Error("Failed to write report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Report written",
		slog.String("path", path),
		slog.Int("records", dataset.Len()))
}

// readInput reads the whole input file, or stdin when path is empty
func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func inputName(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}
