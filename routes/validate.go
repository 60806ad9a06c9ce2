package routes

import (
	"net/http"

	"vidserve/logger"
)

// ValidationResponse reports which renditions of a source verifiably
// exist right now, against what the last job attempted.
type ValidationResponse struct {
	Status             string   `json:"status"`
	ExistingQualities  []string `json:"existingQualities"`
	AttemptedQualities []string `json:"attemptedQualities"`
	MissingQualities   []string `json:"missingQualities"`
}

// ValidateCompressionHandler answers GET /files/{id}/validate-compression.
// Existence comes from the object store, never from job bookkeeping.
func (h *Handler) ValidateCompressionHandler(w http.ResponseWriter, r *http.Request) {
	meta, ok := h.lookupMeta(w, r)
	if !ok {
		return
	}

	existing, err := h.resolver.ExistingQualities(r.Context(), meta.SourceKey)
	if err != nil {
		logger.Errorf("Existence scan for %s failed: %v", meta.SourceKey, err)
		errorJSON(w, http.StatusInternalServerError, "object store unavailable")
		return
	}

	resp := ValidationResponse{
		Status:            string(h.coordinator.Status(meta.SourceKey)),
		ExistingQualities: existing,
	}

	rec, err := h.coordinator.LastRecord(meta.SourceKey)
	if err != nil {
		logger.Errorf("History lookup for %s failed: %v", meta.SourceKey, err)
	}
	if rec != nil {
		resp.AttemptedQualities = rec.Attempted
		have := make(map[string]bool, len(existing))
		for _, q := range existing {
			have[q] = true
		}
		for _, q := range rec.Attempted {
			if !have[q] {
				resp.MissingQualities = append(resp.MissingQualities, q)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
