package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vidserve/logger"
	"vidserve/notify"
)

// EventsHandler answers GET /files/{id}/events with a server-sent event
// stream of job status transitions for the file's source.
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	meta, ok := h.lookupMeta(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		errorJSON(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.bus.Subscribe(meta.SourceKey)
	defer h.bus.Unsubscribe(meta.SourceKey, ch)

	// Current status first, so late subscribers see where the job is.
	sendEvent(w, notify.Event{
		SourceID:  meta.SourceKey,
		Status:    string(h.coordinator.Status(meta.SourceKey)),
		Timestamp: time.Now().Unix(),
	})
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			sendEvent(w, ev)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func sendEvent(w http.ResponseWriter, ev notify.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("Failed to marshal event: %v", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
