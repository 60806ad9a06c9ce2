package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vidserve/artifact"
	"vidserve/history"
	"vidserve/models"
	"vidserve/notify"
	"vidserve/utils"
)

func TestValidateCompressionReportsDelta(t *testing.T) {
	ha := newHarness(t, nil)
	ha.addFile("f1", "vid1.mp4")
	ha.putObject(t, artifact.Derive("vid1.mp4", "720p"), []byte("a"))
	ha.putObject(t, artifact.Derive("vid1.mp4", "360p"), []byte("b"))
	ha.coord.status = models.StatusCompleted
	ha.coord.rec = &history.Record{
		SourceID:  "vid1.mp4",
		Status:    models.StatusCompleted,
		Attempted: []string{"720p", "480p", "360p"},
		Succeeded: []string{"720p", "360p"},
	}

	rec := ha.do("GET", "/files/f1/validate-compression", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp ValidationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "completed" {
		t.Errorf("status = %s", resp.Status)
	}
	if len(resp.ExistingQualities) != 2 || resp.ExistingQualities[0] != "720p" || resp.ExistingQualities[1] != "360p" {
		t.Errorf("existing = %v", resp.ExistingQualities)
	}
	if len(resp.MissingQualities) != 1 || resp.MissingQualities[0] != "480p" {
		t.Errorf("missing = %v", resp.MissingQualities)
	}
}

func TestValidateCompressionWithoutHistory(t *testing.T) {
	ha := newHarness(t, nil)
	ha.addFile("f1", "vid1.mp4")

	rec := ha.do("GET", "/files/f1/validate-compression", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp ValidationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "none" || len(resp.ExistingQualities) != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestTranscodeTrigger(t *testing.T) {
	ha := newHarness(t, nil)
	ha.addFile("f1", "videos/vid1.mp4")

	rec := ha.do("POST", "/files/f1/transcode", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(ha.coord.requested) != 1 || ha.coord.requested[0] != "videos/vid1.mp4" {
		t.Errorf("requested = %v", ha.coord.requested)
	}

	var resp TranscodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SourceID != "videos/vid1.mp4" || resp.Status != "pending" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestTranscodeUnknownFile(t *testing.T) {
	ha := newHarness(t, nil)

	rec := ha.do("POST", "/files/missing/transcode", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if len(ha.coord.requested) != 0 {
		t.Errorf("unexpected request for %v", ha.coord.requested)
	}
}

func TestPlaybackTokenEnforced(t *testing.T) {
	secret := []byte("test-secret-key-for-playback-tokens-32b")
	ha := newHarness(t, secret)
	ha.addFile("f1", "vid1.mp4")
	ha.putObject(t, "vid1.mp4", []byte("original"))

	rec := ha.do("GET", "/files/f1/binary", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", rec.Code)
	}

	token, err := utils.CreatePlaybackToken("f1", time.Hour, secret)
	if err != nil {
		t.Fatal(err)
	}
	rec = ha.do("GET", "/files/f1/binary?token="+token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, body %s", rec.Code, rec.Body.String())
	}

	other, err := utils.CreatePlaybackToken("f2", time.Hour, secret)
	if err != nil {
		t.Fatal(err)
	}
	rec = ha.do("GET", "/files/f1/binary?token="+other, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token: status = %d, want 401", rec.Code)
	}
}

func TestEventsStreamSendsCurrentStatus(t *testing.T) {
	ha := newHarness(t, nil)
	ha.addFile("f1", "vid1.mp4")
	ha.coord.status = models.StatusCompressing

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest("GET", "/files/f1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ha.mux.ServeHTTP(rec, req)
	}()
	<-done

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("body = %q", body)
	}
	var ev notify.Event
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(body), "data: ")), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.SourceID != "vid1.mp4" || ev.Status != "compressing" {
		t.Errorf("event = %+v", ev)
	}
}

func TestEventsStreamForwardsBusEvents(t *testing.T) {
	ha := newHarness(t, nil)
	ha.addFile("f1", "vid1.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/files/f1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ha.mux.ServeHTTP(rec, req)
	}()

	// Give the handler time to subscribe before publishing.
	time.Sleep(50 * time.Millisecond)
	ha.bus.Publish(notify.Event{SourceID: "vid1.mp4", Status: "completed", Timestamp: time.Now().Unix()})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(rec.Body.String(), `"completed"`) {
		t.Errorf("body = %q, want a completed event", rec.Body.String())
	}
}
