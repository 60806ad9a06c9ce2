package encoder

import (
	"context"
	"fmt"
	"io"
	"os"

	"vidserve/models"
)

// EncodeCopy copies the input byte-for-byte. Used when a rendition
// should keep the source encoding untouched.
func EncodeCopy(ctx context.Context, in, out string, _ models.QualityProfile) error {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open %s: %w", in, err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// RegisterCopy registers the copy encoder. It has no external command
// dependency and is always available.
func RegisterCopy() {
	Registry["copy"] = EncodeCopy
}
