// Package objectstore abstracts the durable blob storage that holds
// source videos and their renditions. The store is the single source of
// truth for which renditions exist; nothing else tracks them.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"vidserve/config"
)

var (
	// ErrNotFound is returned when the object does not exist.
	ErrNotFound = errors.New("objectstore: object not found")
	// ErrSignedURLUnsupported is returned by backends that cannot issue
	// time-limited read URLs; callers fall back to direct ranged reads.
	ErrSignedURLUnsupported = errors.New("objectstore: backend does not issue signed URLs")
)

// Info describes a stored object.
type Info struct {
	Size        int64
	ContentType string
}

// Store is the gateway to durable blob storage.
//
// RangedRead returns the inclusive byte span [start, end]; callers are
// responsible for validating the range against Stat().Size first.
type Store interface {
	Upload(ctx context.Context, localPath, key string) error
	Download(ctx context.Context, key, localPath string) error
	Exists(ctx context.Context, key string) (bool, error)
	Stat(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) error
	SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	RangedRead(ctx context.Context, key string, start, end int64) (io.ReadCloser, error)
}

// New builds the Store selected by VIDSERVE_STORE_BACKEND.
func New(ctx context.Context) (Store, error) {
	backend := config.GetStoreBackend()
	switch backend {
	case "gcs":
		return NewGCS(ctx, config.GetBucket(), config.GetGCSCredentialsFile())
	case "s3":
		return NewS3(config.GetBucket(), config.GetS3Region(),
			config.GetS3AccessKey(), config.GetS3SecretKey()), nil
	case "sftp":
		return NewSFTP(config.GetSFTPHost(), config.GetSFTPUser(),
			config.GetSFTPPassword(), config.GetSFTPBaseDir()), nil
	case "local":
		return NewLocal(config.GetLocalStoreDir()), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// limitReadCloser wraps a limited reader with the closer of the
// underlying handle. Used by backends that seek a plain file handle.
type limitReadCloser struct {
	io.Reader
	io.Closer
}
