// Package notify emits job status transitions to external consumers.
// Everything here is fire-and-forget: existence-based delivery stays
// correct even when every notification is lost.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vidserve/logger"
	"vidserve/models"
)

// MetaWriter pushes the terminal compression status back to the
// metadata collaborator.
type MetaWriter interface {
	SetCompressionStatus(ctx context.Context, sourceID string, status models.JobStatus, qualities []string) error
}

// Notifier fans a status transition out to the in-process event bus,
// an optional webhook and the metadata collaborator.
type Notifier struct {
	bus         *EventBus
	meta        MetaWriter
	callbackURL string
	client      *http.Client
}

// New creates a notifier. callbackURL may be empty; meta may be nil.
func New(bus *EventBus, meta MetaWriter, callbackURL string) *Notifier {
	return &Notifier{
		bus:         bus,
		meta:        meta,
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Bus exposes the event bus for subscribers (SSE handler).
func (n *Notifier) Bus() *EventBus { return n.bus }

// Notify publishes the transition. Failures are logged, never
// propagated; the caller's job state does not depend on them.
func (n *Notifier) Notify(sourceID string, from, to models.JobStatus, available []string) {
	event := Event{
		SourceID:           sourceID,
		Status:             string(to),
		AvailableQualities: available,
		Timestamp:          time.Now().Unix(),
	}
	n.bus.Publish(event)

	if to.Terminal() && n.meta != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := n.meta.SetCompressionStatus(ctx, sourceID, to, available); err != nil {
			logger.Errorf("failed to push compression status for %s: %v", sourceID, err)
		}
		cancel()
	}

	if to.Terminal() && n.callbackURL != "" {
		if err := n.sendCallback(event); err != nil {
			logger.Errorf("failed to send callback for %s: %v", sourceID, err)
		}
	}
}

// sendCallback POSTs the event to the configured webhook.
func (n *Notifier) sendCallback(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal callback payload: %w", err)
	}

	req, err := http.NewRequest("POST", n.callbackURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Vidserve/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned non-2xx status: %d", resp.StatusCode)
	}
	return nil
}
