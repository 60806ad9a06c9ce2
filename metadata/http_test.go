package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidserve/models"
)

func TestGetFileMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/files/vid1/meta" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sekrit" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(models.FileMeta{
			ID:          "vid1",
			SourceKey:   "videos/vid1.mp4",
			ContentType: "video/mp4",
			Size:        1024,
		})
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "sekrit")
	meta, err := s.GetFileMeta(context.Background(), "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if meta.SourceKey != "videos/vid1.mp4" || meta.Size != 1024 {
		t.Errorf("meta = %+v", meta)
	}
}

func TestGetFileMetaNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "")
	if _, err := s.GetFileMeta(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetCompressionStatus(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/internal/files/compression-status" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "")
	err := s.SetCompressionStatus(context.Background(), "videos/vid1.mp4", models.StatusCompleted, []string{"720p"})
	if err != nil {
		t.Fatal(err)
	}
	if body["sourceId"] != "videos/vid1.mp4" || body["status"] != "completed" {
		t.Errorf("body = %v", body)
	}
}

func TestMemStoreRoundTrip(t *testing.T) {
	m := NewMemStore()
	m.Add(models.FileMeta{ID: "vid1", SourceKey: "vid1.mp4"})

	meta, err := m.GetFileMeta(context.Background(), "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if meta.SourceKey != "vid1.mp4" {
		t.Errorf("meta = %+v", meta)
	}

	if _, err := m.GetFileMeta(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}

	m.SetCompressionStatus(context.Background(), "vid1.mp4", models.StatusFailed, nil)
	if got := m.CompressionStatus("vid1.mp4"); got != models.StatusFailed {
		t.Errorf("status = %s", got)
	}
}
