package encoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidserve/models"
)

func TestVideoArgs(t *testing.T) {
	p := models.QualityProfile{Name: "720p", Width: 1280, Height: 720, BitrateKbps: 2500, CRF: 23}
	args := videoArgs("in.mp4", "out.mp4", "libx264", p)

	want := map[string]string{
		"-c:v":      "libx264",
		"-crf":      "23",
		"-maxrate":  "2500k",
		"-bufsize":  "5000k",
		"-vf":       "scale=1280:720",
		"-c:a":      "aac",
		"-b:a":      "128k",
		"-threads":  "2",
		"-movflags": "+faststart",
	}
	got := map[string]string{}
	for i := 0; i < len(args)-1; i++ {
		if _, ok := want[args[i]]; ok {
			got[args[i]] = args[i+1]
		}
	}
	for flag, val := range want {
		if got[flag] != val {
			t.Errorf("%s = %q, want %q", flag, got[flag], val)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("last arg = %q, want output path", args[len(args)-1])
	}
}

func TestRegisterSkipsMissingCommand(t *testing.T) {
	before := len(Registry)
	Register("bogus", "definitely-not-a-real-command-xyz", EncodeH264)
	if len(Registry) != before {
		t.Error("encoder with missing command should not be registered")
	}
}

func TestRegisterCopyAlwaysAvailable(t *testing.T) {
	RegisterCopy()
	fn, ok := Get("copy")
	if !ok || fn == nil {
		t.Fatal("copy encoder should always be registered")
	}
}

func TestEncodeCopy(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.mp4")
	out := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(in, []byte("video-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := EncodeCopy(context.Background(), in, out, models.QualityProfile{}); err != nil {
		t.Fatalf("EncodeCopy: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("output = %q", data)
	}
}

func TestEncodeErrorMessage(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &EncodeError{Encoder: "h264", Output: "moov atom not found", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("EncodeError should unwrap to the process error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "h264") || !strings.Contains(msg, "moov atom not found") {
		t.Errorf("unexpected message: %q", msg)
	}
}
