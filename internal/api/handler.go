// Package api implements the lakerisk REST API.
// It serves risk predictions, importance analyses and the reference catalog
// over JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lakerisk/lakerisk/internal/assessment"
	"github.com/lakerisk/lakerisk/pkg/model"
	"github.com/lakerisk/lakerisk/pkg/reference"
	"github.com/lakerisk/lakerisk/pkg/scoring"
)

// Handler is the top-level API handler for the lakerisk service.
type Handler struct {
	svc        *assessment.Service
	cache      *ImportanceCache
	sweepLimit int
	version    string
	logger     *slog.Logger
}

// Options configures a Handler.
type Options struct {
	CacheSize  int    // importance cache entries; <= 0 uses the default
	SweepLimit int    // species per sweep; <= 0 means every species
	Version    string // reported by /api/info
	Logger     *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc *assessment.Service, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:        svc,
		cache:      NewImportanceCache(opts.CacheSize),
		sweepLimit: opts.SweepLimit,
		version:    opts.Version,
		logger:     logger,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Catalog
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/info", h.handleInfo)
	mux.HandleFunc("GET /api/species", h.handleListSpecies)
	mux.HandleFunc("GET /api/species/{name}", h.handleGetSpecies)
	mux.HandleFunc("GET /api/lakes", h.handleListLakes)
	mux.HandleFunc("GET /api/lakes/{name}", h.handleGetLake)
	mux.HandleFunc("GET /api/models", h.handleModels)

	// Scoring
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("POST /api/geojson", h.handleGeoJSON)
	mux.HandleFunc("POST /api/risk-scores", h.handleRiskScores)
	mux.HandleFunc("POST /api/sweep", h.handleSweep)

	// Importance
	mux.HandleFunc("GET /api/overview/most-contributing", h.handleMostContributing)
	mux.HandleFunc("POST /api/interpretation/feature-importance", h.handleFeatureImportance)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// writeOK wraps fields in the success envelope.
func writeOK(w http.ResponseWriter, r *http.Request, fields map[string]any) {
	body := map[string]any{"success": true}
	if id := RequestIDFrom(r.Context()); id != "" {
		body["request_id"] = id
	}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	body := map[string]any{"success": false, "error": msg}
	if kind != "" {
		body["kind"] = kind
	}
	if id := RequestIDFrom(r.Context()); id != "" {
		body["request_id"] = id
	}
	writeJSON(w, status, body)
}

// writeServiceError maps a facade error onto a status code and kind.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assessment.ErrInvalidReading):
		writeError(w, r, http.StatusBadRequest, "InvalidReading", err.Error())
	case errors.Is(err, reference.ErrSpeciesNotFound):
		writeError(w, r, http.StatusBadRequest, string(scoring.KindSpeciesNotFound), err.Error())
	case errors.Is(err, model.ErrModelUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, string(scoring.KindModelUnavailable), err.Error())
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, r, http.StatusInternalServerError, string(scoring.KindComputationFailure), err.Error())
	}
}
