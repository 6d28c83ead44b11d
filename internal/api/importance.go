package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/water"
)

// globalImportance returns the variant's global analysis, computing it at
// most once per cache lifetime.
func (h *Handler) globalImportance(ctx context.Context, variant string) (*importance.Result, error) {
	if variant == "" {
		variant = h.svc.DefaultVariant()
	}
	key := "global|" + variant
	if res := h.cache.Get(key); res != nil {
		return res, nil
	}
	res, err := h.svc.ImportanceAnalysis(ctx, variant)
	if err != nil {
		return nil, err
	}
	h.cache.Put(key, res)
	return res, nil
}

func (h *Handler) conditionImportance(ctx context.Context, species string, reading water.Reading, variant string) (*importance.Result, error) {
	if variant == "" {
		variant = h.svc.DefaultVariant()
	}
	key := fmt.Sprintf("local|%s|%s|%v", variant, species, reading.Vector())
	if res := h.cache.Get(key); res != nil {
		return res, nil
	}
	res, err := h.svc.ConditionImportance(ctx, species, reading, variant)
	if err != nil {
		return nil, err
	}
	h.cache.Put(key, res)
	return res, nil
}

func (h *Handler) handleMostContributing(w http.ResponseWriter, r *http.Request) {
	res, err := h.globalImportance(r.Context(), r.URL.Query().Get("variant"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	entry, ok := res.MostContributing()
	if !ok {
		writeOK(w, r, map[string]any{"data": nil, "message": "model attributes no importance to any parameter"})
		return
	}
	writeOK(w, r, map[string]any{
		"data": map[string]any{
			"parameter":        entry.Parameter,
			"total_importance": entry.Importance,
			"percentage":       entry.Percentage,
			"feature_count":    entry.FeatureCount,
			"features":         entry.Features,
			"variant":          res.Variant,
		},
	})
}

// handleFeatureImportance explains one species under one reading. Without a
// species it falls back to the global analysis.
func (h *Handler) handleFeatureImportance(w http.ResponseWriter, r *http.Request) {
	req, reading, ok := decodeAssess(w, r, false)
	if !ok {
		return
	}

	var (
		res *importance.Result
		err error
	)
	if req.Species == "" {
		if err := reading.Validate(); err != nil {
			writeError(w, r, http.StatusBadRequest, "InvalidReading", err.Error())
			return
		}
		res, err = h.globalImportance(r.Context(), req.Variant)
	} else {
		res, err = h.conditionImportance(r.Context(), req.Species, reading, req.Variant)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	data := map[string]any{"analysis": res}
	if top, ok := res.MostContributing(); ok {
		data["most_contributing"] = top.Parameter
	}
	writeOK(w, r, map[string]any{"data": data})
}
