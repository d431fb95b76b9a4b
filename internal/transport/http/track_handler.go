package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"trackpulse/internal/dataprocessing"
	apierrors "trackpulse/internal/errors"
	"trackpulse/pkg/contracts/domain"
)

// TrackHandler handles track analysis HTTP requests with RFC 7807 compliance
type TrackHandler struct {
	service      TrackServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodyBytes int64
}

// AnalyzeResponse is the JSON envelope returned by the analyze endpoint
type AnalyzeResponse struct {
	Dataset     *domain.Dataset `json:"dataset"`
	RecordCount int             `json:"record_count"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(service TrackServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBodyBytes int64) *TrackHandler {
	return &TrackHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "tracks")),
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes returns the track analysis routes
func (h *TrackHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/analyze", h.Analyze)
	r.Post("/export", h.Export)

	return r
}

// Analyze handles POST /api/tracks/analyze. The request body is raw CSV
// text; the response is the analyzed dataset as JSON.
func (h *TrackHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := h.parseOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dataset, err := h.service.AnalyzeBytes(ctx, body, opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, AnalyzeResponse{
		Dataset:     dataset,
		RecordCount: dataset.Len(),
		GeneratedAt: time.Now().UTC(),
	})
}

// Export handles POST /api/tracks/export. The request body is raw CSV text;
// the response is the canonical CSV report.
func (h *TrackHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := h.parseOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dataset, err := h.service.AnalyzeBytes(ctx, body, opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out, err := h.service.BuildCSV(ctx, dataset)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tracks.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

// parseOptions reads processing options from query parameters, falling back
// to the service defaults for absent parameters.
func (h *TrackHandler) parseOptions(r *http.Request) (dataprocessing.Options, error) {
	opts := h.service.DefaultOptions()

	if raw := r.URL.Query().Get("missing_as_zero"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, apierrors.ErrValidation("missing_as_zero", "must be a boolean")
		}
		opts.MissingAsZero = v
	}

	if raw := r.URL.Query().Get("show_quality"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, apierrors.ErrValidation("show_quality", "must be a boolean")
		}
		opts.ShowQuality = v
	}

	return opts, nil
}

// readBody reads the request body, enforcing the configured size cap
func (h *TrackHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	reader := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apierrors.ErrPayloadTooLarge
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	return body, nil
}
