package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lakerisk/lakerisk/pkg/scoring"
	"github.com/lakerisk/lakerisk/pkg/surface"
	"github.com/lakerisk/lakerisk/pkg/water"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// assessRequest is the body shared by the scoring and importance endpoints.
// Reading fields are pointers so a missing field can be told from a zero.
type assessRequest struct {
	Species         string   `json:"species"`
	Variant         string   `json:"variant"`
	Temperature     *float64 `json:"temperature"`
	PH              *float64 `json:"ph"`
	Salinity        *float64 `json:"salinity"`
	DissolvedOxygen *float64 `json:"dissolved_oxygen"`
	BOD             *float64 `json:"bod"`
	Turbidity       *float64 `json:"turbidity"`
	Limit           int      `json:"limit"`
}

// reading checks that every parameter is present and returns the reading.
func (req assessRequest) reading() (water.Reading, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"temperature", req.Temperature},
		{"ph", req.PH},
		{"salinity", req.Salinity},
		{"dissolved_oxygen", req.DissolvedOxygen},
		{"bod", req.BOD},
		{"turbidity", req.Turbidity},
	}
	for _, f := range fields {
		if f.v == nil {
			return water.Reading{}, fmt.Errorf("missing required field: %s", f.name)
		}
	}
	return water.Reading{
		PH:              *req.PH,
		Salinity:        *req.Salinity,
		DissolvedOxygen: *req.DissolvedOxygen,
		BOD:             *req.BOD,
		Turbidity:       *req.Turbidity,
		Temperature:     *req.Temperature,
	}, nil
}

// decodeAssess reads the request body. When needSpecies is set the species
// field is required as well.
func decodeAssess(w http.ResponseWriter, r *http.Request, needSpecies bool) (assessRequest, water.Reading, bool) {
	var req assessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest", "invalid request body: "+err.Error())
		return req, water.Reading{}, false
	}
	if needSpecies && req.Species == "" {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest", "missing required field: species")
		return req, water.Reading{}, false
	}
	reading, err := req.reading()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "InvalidRequest", err.Error())
		return req, water.Reading{}, false
	}
	return req, reading, true
}

func (h *Handler) score(w http.ResponseWriter, r *http.Request) (*scoring.Result, bool) {
	req, reading, ok := decodeAssess(w, r, true)
	if !ok {
		return nil, false
	}
	res, err := h.svc.ScoreRisk(r.Context(), req.Species, reading, req.Variant)
	if err != nil {
		h.writeServiceError(w, r, err)
		return nil, false
	}
	return res, true
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	res, ok := h.score(w, r)
	if !ok {
		return
	}
	fields := map[string]any{
		"species":          res.Species,
		"variant":          res.Variant,
		"input_parameters": res.Reading,
		"predictions":      res.Predictions,
	}
	if res.Warning != "" {
		fields["warning"] = res.Warning
	}
	writeOK(w, r, fields)
}

func (h *Handler) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	res, ok := h.score(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, surface.ToGeoJSON(res))
}

type riskScoreRow struct {
	Lake      string            `json:"lake"`
	Region    string            `json:"region"`
	Score     float64           `json:"score"`
	RiskLevel scoring.RiskLevel `json:"risk_level"`
	Presence  string            `json:"presence"`
}

func (h *Handler) handleRiskScores(w http.ResponseWriter, r *http.Request) {
	res, ok := h.score(w, r)
	if !ok {
		return
	}
	rows := make([]riskScoreRow, 0, len(res.Predictions))
	for _, p := range res.Predictions {
		rows = append(rows, riskScoreRow{
			Lake:      p.LakeName,
			Region:    p.Region,
			Score:     p.AdjustedScore,
			RiskLevel: p.RiskLevel,
			Presence:  string(p.Presence),
		})
	}
	writeOK(w, r, map[string]any{"count": len(rows), "data": rows})
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	req, reading, ok := decodeAssess(w, r, false)
	if !ok {
		return
	}
	limit := h.sweepLimit
	if req.Limit > 0 && (limit <= 0 || req.Limit < limit) {
		limit = req.Limit
	}
	rows, err := h.svc.Sweep(r.Context(), reading, req.Variant, limit, nil)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []scoring.SweepRow{}
	}
	writeOK(w, r, map[string]any{"count": len(rows), "data": rows})
}
