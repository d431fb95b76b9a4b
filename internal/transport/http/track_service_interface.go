package http

import (
	"context"

	"trackpulse/internal/dataprocessing"
	"trackpulse/pkg/contracts/domain"
)

// TrackServiceInterface defines the service operations the track handler
// depends on. Satisfied by services.TrackService.
type TrackServiceInterface interface {
	AnalyzeBytes(ctx context.Context, data []byte, opts dataprocessing.Options) (*domain.Dataset, error)
	BuildCSV(ctx context.Context, dataset *domain.Dataset) (string, error)
	DefaultOptions() dataprocessing.Options
}
