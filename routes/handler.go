// Package routes implements the HTTP surface: playback streaming with
// range semantics, compression validation, transcode triggering and a
// status event stream.
package routes

import (
	"encoding/json"
	"net/http"

	"vidserve/delivery"
	"vidserve/history"
	"vidserve/job"
	"vidserve/logger"
	"vidserve/metadata"
	"vidserve/models"
	"vidserve/notify"
	"vidserve/objectstore"
)

// Coordinator is the transcoding surface the routes need.
type Coordinator interface {
	Request(sourceID string) (job.Handle, error)
	Status(sourceID string) models.JobStatus
	LastRecord(sourceID string) (*history.Record, error)
}

// Handler carries the collaborators shared by all routes.
type Handler struct {
	store       objectstore.Store
	meta        metadata.Store
	coordinator Coordinator
	resolver    *delivery.Resolver
	bus         *notify.EventBus
	tokenSecret []byte
	proxySigned bool
}

// NewHandler wires the route handlers. tokenSecret may be empty to
// disable playback token checks; proxySigned switches the streaming
// endpoint to proxying from signed URLs where the backend supports it.
func NewHandler(store objectstore.Store, meta metadata.Store, coordinator Coordinator,
	resolver *delivery.Resolver, bus *notify.EventBus, tokenSecret []byte, proxySigned bool) *Handler {
	return &Handler{
		store:       store,
		meta:        meta,
		coordinator: coordinator,
		resolver:    resolver,
		bus:         bus,
		tokenSecret: tokenSecret,
		proxySigned: proxySigned,
	}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /files/{id}/binary", h.BinaryHandler)
	mux.HandleFunc("HEAD /files/{id}/binary", h.BinaryHandler)
	mux.HandleFunc("GET /files/{id}/validate-compression", h.ValidateCompressionHandler)
	mux.HandleFunc("POST /files/{id}/transcode", h.TranscodeHandler)
	mux.HandleFunc("GET /files/{id}/events", h.EventsHandler)
	mux.HandleFunc("GET /health", HealthHandler)
	mux.HandleFunc("GET /version", VersionHandler)
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

// errorJSON writes a short machine-readable error body.
func errorJSON(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}

// lookupMeta resolves the file record for a request, writing the error
// response itself when the lookup fails.
func (h *Handler) lookupMeta(w http.ResponseWriter, r *http.Request) (models.FileMeta, bool) {
	id := r.PathValue("id")
	meta, err := h.meta.GetFileMeta(r.Context(), id)
	if err == metadata.ErrNotFound {
		errorJSON(w, http.StatusNotFound, "file not found")
		return models.FileMeta{}, false
	}
	if err != nil {
		logger.Errorf("Metadata lookup for %s failed: %v", id, err)
		errorJSON(w, http.StatusInternalServerError, "metadata lookup failed")
		return models.FileMeta{}, false
	}
	return meta, true
}
