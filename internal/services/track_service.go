package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"trackpulse/internal/config"
	"trackpulse/internal/dataprocessing"
	apierrors "trackpulse/internal/errors"
	"trackpulse/internal/exporter"
	"trackpulse/internal/infrastructure"
	"trackpulse/pkg/contracts/domain"
)

// ExportFormat selects the on-disk report representation
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
	FormatJSON ExportFormat = "json"
)

// ParseExportFormat validates a user-supplied format string
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// TrackService runs the track statistics pipeline: tokenize raw CSV text,
// normalize rows into records, aggregate dataset metrics, and export reports.
type TrackService struct {
	config  *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	now     func() time.Time
}

// NewTrackService creates a new track service
func NewTrackService(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *TrackService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("TrackService initialized",
		slog.String("reports_dir", paths.ReportsDir),
		slog.Bool("missing_as_zero", cfg.Pipeline.MissingAsZero),
		slog.Bool("show_quality", cfg.Pipeline.ShowQuality))

	return &TrackService{
		config: cfg,
		paths:  paths,
		logger: logger,
		now:    time.Now,
	}
}

// WithMetrics attaches pipeline instruments. Returns the service for chaining.
func (s *TrackService) WithMetrics(m *infrastructure.PipelineMetrics) *TrackService {
	s.metrics = m
	return s
}

// WithClock overrides the time source used for relative date resolution
func (s *TrackService) WithClock(now func() time.Time) *TrackService {
	s.now = now
	return s
}

// DefaultOptions returns the processing options configured for this service
func (s *TrackService) DefaultOptions() dataprocessing.Options {
	missingAsZero, showQuality := s.config.Pipeline.Options()
	return dataprocessing.Options{
		MissingAsZero: missingAsZero,
		ShowQuality:   showQuality,
	}
}

// Analyze runs the full pipeline over raw CSV text. Empty input yields an
// empty dataset rather than an error; binary input is rejected.
func (s *TrackService) Analyze(ctx context.Context, text string, opts dataprocessing.Options) (*domain.Dataset, error) {
	if !utf8.ValidString(text) {
		return nil, apierrors.NewEncodingError("input is not valid UTF-8 text", ErrNotText)
	}

	start := s.now()
	rows := dataprocessing.Tokenize(text)
	dataset := dataprocessing.NewProcessor(s.logger, opts).WithClock(s.now).Process(ctx, rows)

	elapsed := time.Since(start)
	s.logger.InfoContext(ctx, "analysis complete",
		slog.Int("input_rows", len(rows)),
		slog.Int("records", dataset.Len()),
		slog.Duration("elapsed", elapsed))

	if s.metrics != nil {
		s.metrics.RowsProcessed.Add(ctx, int64(dataset.Len()))
		s.metrics.RowsDropped.Add(ctx, int64(len(rows)-dataset.Len()))
		s.metrics.DatasetsAnalyzed.Add(ctx, 1)
		s.metrics.AnalyzeDuration.Record(ctx, elapsed.Seconds())
	}

	return dataset, nil
}

// AnalyzeBytes is Analyze for a raw request body
func (s *TrackService) AnalyzeBytes(ctx context.Context, data []byte, opts dataprocessing.Options) (*domain.Dataset, error) {
	if !utf8.Valid(data) {
		return nil, apierrors.NewEncodingError("input is not valid UTF-8 text", ErrNotText)
	}
	return s.Analyze(ctx, string(data), opts)
}

// BuildCSV renders the canonical CSV report for a dataset
func (s *TrackService) BuildCSV(ctx context.Context, dataset *domain.Dataset) (string, error) {
	out, err := exporter.BuildCSV(dataset)
	if err != nil {
		return "", apierrors.NewEncodingError("failed to build CSV report", err)
	}
	return out, nil
}

// Export writes the dataset to the reports directory in the requested format
// and returns the full path of the written file.
func (s *TrackService) Export(ctx context.Context, dataset *domain.Dataset, format ExportFormat, baseName string) (string, error) {
	if baseName == "" {
		baseName = fmt.Sprintf("tracks_%s", s.now().UTC().Format("20060102_150405"))
	}

	path := s.paths.GetReportPath(fmt.Sprintf("%s.%s", baseName, format))

	var err error
	switch format {
	case FormatCSV:
		err = exporter.WriteCSV(path, dataset, exporter.WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		err = exporter.WriteXLSX(path, dataset)
	case FormatJSON:
		err = exporter.WriteJSON(path, dataset)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", apierrors.NewStorageError(fmt.Sprintf("failed to write %s report", format), err)
	}

	s.logger.InfoContext(ctx, "report exported",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("records", dataset.Len()))

	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1)
	}

	return path, nil
}
