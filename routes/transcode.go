package routes

import (
	"net/http"

	"vidserve/logger"
)

// TranscodeResponse acknowledges a transcode request.
type TranscodeResponse struct {
	SourceID       string `json:"sourceId"`
	Status         string `json:"status"`
	AlreadyRunning bool   `json:"alreadyRunning"`
}

// TranscodeHandler answers POST /files/{id}/transcode. A job already in
// flight for the source is acknowledged, not restarted.
func (h *Handler) TranscodeHandler(w http.ResponseWriter, r *http.Request) {
	meta, ok := h.lookupMeta(w, r)
	if !ok {
		return
	}

	handle, err := h.coordinator.Request(meta.SourceKey)
	if err != nil {
		logger.Errorf("Transcode request for %s failed: %v", meta.SourceKey, err)
		errorJSON(w, http.StatusInternalServerError, "failed to start transcoding")
		return
	}

	writeJSON(w, http.StatusAccepted, TranscodeResponse{
		SourceID:       handle.SourceID,
		Status:         string(handle.Status),
		AlreadyRunning: handle.AlreadyRunning,
	})
}
