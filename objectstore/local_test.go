package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	return NewLocal(t.TempDir())
}

func writeObject(t *testing.T, store *Local, key string, data []byte) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "src")
	if err := os.WriteFile(src, data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.Upload(context.Background(), src, key); err != nil {
		t.Fatalf("Upload(%s): %v", key, err)
	}
}

func TestLocalUploadStatExists(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()
	data := []byte("0123456789")
	writeObject(t, store, "videos/vid1.mp4", data)

	info, err := store.Stat(ctx, "videos/vid1.mp4")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", info.Size, len(data))
	}
	if info.ContentType != "video/mp4" {
		t.Errorf("content type = %q, want video/mp4", info.ContentType)
	}

	ok, err := store.Exists(ctx, "videos/vid1.mp4")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true, nil", ok, err)
	}
	ok, err = store.Exists(ctx, "videos/missing.mp4")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestLocalRangedRead(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()
	writeObject(t, store, "clip.mp4", []byte("0123456789"))

	rc, err := store.RangedRead(ctx, "clip.mp4", 2, 5)
	if err != nil {
		t.Fatalf("RangedRead: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "2345" {
		t.Errorf("read %q, want %q", got, "2345")
	}
}

func TestLocalDownloadAndDelete(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()
	writeObject(t, store, "clip.mp4", []byte("payload"))

	dst := filepath.Join(t.TempDir(), "out.mp4")
	if err := store.Download(ctx, "clip.mp4", dst); err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("downloaded %q", data)
	}

	if err := store.Delete(ctx, "clip.mp4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Stat(ctx, "clip.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat after delete = %v, want ErrNotFound", err)
	}
}

func TestLocalNotFoundMapping(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	if _, err := store.Stat(ctx, "nope.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat = %v, want ErrNotFound", err)
	}
	if _, err := store.RangedRead(ctx, "nope.mp4", 0, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("RangedRead = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "nope.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store := newTestLocal(t)
	if _, err := store.Stat(context.Background(), "../outside"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected traversal rejection, got %v", err)
	}
}

func TestLocalSignedURLUnsupported(t *testing.T) {
	store := newTestLocal(t)
	_, err := store.SignedReadURL(context.Background(), "clip.mp4", time.Minute)
	if !errors.Is(err, ErrSignedURLUnsupported) {
		t.Errorf("SignedReadURL = %v, want ErrSignedURLUnsupported", err)
	}
}
