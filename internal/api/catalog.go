package api

import (
	"net/http"

	"github.com/lakerisk/lakerisk/pkg/water"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, map[string]any{"status": "healthy"})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	th := h.svc.Thresholds()
	writeOK(w, r, map[string]any{
		"version":          h.version,
		"default_variant":  h.svc.DefaultVariant(),
		"species_count":    len(h.svc.SpeciesList()),
		"lake_count":       len(h.svc.LakeList()),
		"thresholds":       th,
		"parameter_ranges": water.Ranges,
	})
}

func (h *Handler) handleListSpecies(w http.ResponseWriter, r *http.Request) {
	names := h.svc.SpeciesList()
	writeOK(w, r, map[string]any{"count": len(names), "species": names})
}

func (h *Handler) handleGetSpecies(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.SpeciesInfo(r.PathValue("name"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, map[string]any{"data": info})
}

func (h *Handler) handleListLakes(w http.ResponseWriter, r *http.Request) {
	lakes := h.svc.LakeList()
	writeOK(w, r, map[string]any{"count": len(lakes), "lakes": lakes})
}

func (h *Handler) handleGetLake(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	lake, ok := h.svc.LakeInfo(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "LakeNotFound", "lake not found: "+name)
		return
	}
	writeOK(w, r, map[string]any{"data": lake})
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, map[string]any{
		"default": h.svc.DefaultVariant(),
		"models":  h.svc.Models(),
	})
}
