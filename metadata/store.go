// Package metadata talks to the collaborator service that owns file
// records. Playback requests look up file metadata here; finished
// jobs push their compression status back.
package metadata

import (
	"context"
	"errors"

	"vidserve/models"
)

// ErrNotFound is returned when no file record exists for the id.
var ErrNotFound = errors.New("metadata: file not found")

// Store is the metadata collaborator surface this service needs.
type Store interface {
	// GetFileMeta returns the record for a file id.
	GetFileMeta(ctx context.Context, id string) (models.FileMeta, error)

	// SetCompressionStatus records the terminal outcome of a job and
	// the renditions it produced.
	SetCompressionStatus(ctx context.Context, sourceID string, status models.JobStatus, qualities []string) error
}
