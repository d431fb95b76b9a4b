package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"trackpulse/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check returns the current health status. Status degrades to "degraded" when
// the reports directory is not writable.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: map[string]interface{}{},
	}

	if err := s.checkReportsDir(); err != nil {
		status.Status = "degraded"
		status.Services["reports_dir"] = map[string]string{
			"status":  "unavailable",
			"message": err.Error(),
		}
		s.logger.WarnContext(ctx, "reports directory check failed",
			slog.String("error", err.Error()))
	} else {
		status.Services["reports_dir"] = map[string]string{"status": "ok"}
	}

	return status
}

// checkReportsDir verifies the reports directory exists and is a directory
func (s *HealthService) checkReportsDir() error {
	info, err := os.Stat(s.paths.ReportsDir)
	if err != nil {
		return fmt.Errorf("reports directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("reports path is not a directory: %s", s.paths.ReportsDir)
	}
	return nil
}
