package history

import (
	"path/filepath"
	"testing"
	"time"

	"vidserve/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := Record{
		SourceID:  "videos/vid1.mp4",
		Status:    models.StatusCompleted,
		Attempted: []string{"720p", "480p", "360p"},
		Succeeded: []string{"720p", "360p"},
		Failures:  map[string]string{"480p": "encoder h264 failed: exit status 1"},
	}
	if err := s.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("videos/vid1.mp4")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("record missing")
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s", got.Status)
	}
	if len(got.Succeeded) != 2 || got.Succeeded[0] != "720p" {
		t.Errorf("succeeded = %v", got.Succeeded)
	}
	if got.Failures["480p"] == "" {
		t.Error("480p failure should be recorded")
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should be set on Put")
	}
}

func TestGetMissingIsNil(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get("absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil record, got %+v", got)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(Record{SourceID: "v.mp4", Status: models.StatusFailed}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Record{SourceID: "v.mp4", Status: models.StatusCompleted}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("v.mp4")
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestCleanupOldRecords(t *testing.T) {
	s := openTestStore(t)

	old := Record{SourceID: "old.mp4", Status: models.StatusCompleted,
		Timestamp: time.Now().Add(-48 * time.Hour)}
	fresh := Record{SourceID: "fresh.mp4", Status: models.StatusCompleted,
		Timestamp: time.Now()}
	if err := s.Put(old); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(fresh); err != nil {
		t.Fatal(err)
	}

	if err := s.CleanupOldRecords(24 * time.Hour); err != nil {
		t.Fatalf("CleanupOldRecords: %v", err)
	}

	if got, _ := s.Get("old.mp4"); got != nil {
		t.Error("old record should have been removed")
	}
	if got, _ := s.Get("fresh.mp4"); got == nil {
		t.Error("fresh record should remain")
	}
}
