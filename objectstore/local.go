package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local stores objects under a base directory on the local filesystem.
// Used in development and tests; no signed URLs.
type Local struct {
	baseDir string
}

// NewLocal creates a filesystem-backed store rooted at baseDir.
func NewLocal(baseDir string) *Local {
	return &Local{baseDir: baseDir}
}

// fullPath resolves a key inside the base directory and rejects keys
// that escape it.
func (l *Local) fullPath(key string) (string, error) {
	full := filepath.Join(l.baseDir, filepath.FromSlash(key))
	base := filepath.Clean(l.baseDir)
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("key escapes store directory: %s", key)
	}
	return full, nil
}

func (l *Local) Upload(ctx context.Context, localPath, key string) error {
	full, err := l.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	dst, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create %s: %w", full, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	return nil
}

func (l *Local) Download(ctx context.Context, key, localPath string) error {
	full, err := l.fullPath(key)
	if err != nil {
		return err
	}
	src, err := os.Open(full)
	if err != nil {
		return mapLocalErr(err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	_, err := l.Stat(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *Local) Stat(ctx context.Context, key string) (Info, error) {
	full, err := l.fullPath(key)
	if err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(full)
	if err != nil {
		return Info{}, mapLocalErr(err)
	}
	if fi.IsDir() {
		return Info{}, ErrNotFound
	}
	return Info{Size: fi.Size(), ContentType: contentTypeFor(key)}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	full, err := l.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return mapLocalErr(err)
	}
	return nil
}

func (l *Local) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrSignedURLUnsupported
}

func (l *Local) RangedRead(ctx context.Context, key string, start, end int64) (io.ReadCloser, error) {
	full, err := l.fullPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, mapLocalErr(err)
	}
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek %d: %w", start, err)
	}
	return &limitReadCloser{
		Reader: io.LimitReader(file, end-start+1),
		Closer: file,
	}, nil
}

func mapLocalErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
