package encoder

import (
	"context"
	"fmt"
	"os/exec"

	"vidserve/logger"
	"vidserve/models"
)

// EncodeFunc transcodes input into exactly one output file at the
// given path, targeting the quality profile. It never touches the
// object store and never retries; retry policy belongs to the caller.
type EncodeFunc func(ctx context.Context, input, output string, profile models.QualityProfile) error

// EncodeError is a fatal failure of the external transcoding process,
// carrying the diagnostic output it produced.
type EncodeError struct {
	Encoder string
	Output  string // captured stderr tail
	Err     error
}

func (e *EncodeError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("encoder %s failed: %v: %s", e.Encoder, e.Err, e.Output)
	}
	return fmt.Sprintf("encoder %s failed: %v", e.Encoder, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Registry maps encoder name → encode function
var Registry = map[string]EncodeFunc{}

// Register adds the encoder if the underlying command exists, logs status
func Register(name string, cmdName string, fn EncodeFunc) {
	if _, err := exec.LookPath(cmdName); err != nil {
		logger.Warnf("encoder [%s] skipped: command '%s' not found in PATH", name, cmdName)
		return
	}
	Registry[name] = fn
	logger.Debugf("encoder [%s] registered (command: %s)", name, cmdName)
}

// Get looks up an encoder by name.
func Get(name string) (EncodeFunc, bool) {
	fn, ok := Registry[name]
	return fn, ok
}

// RegisterDefaults registers the built-in encoders.
func RegisterDefaults() {
	Register("h264", "ffmpeg", EncodeH264)
	Register("hevc", "ffmpeg", EncodeHEVC)
	RegisterCopy()
}
