package metadata

import (
	"context"
	"sync"

	"vidserve/models"
)

// MemStore is an in-process metadata store for development setups
// without a metadata service.
type MemStore struct {
	mu       sync.RWMutex
	files    map[string]models.FileMeta
	statuses map[string]models.JobStatus
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		files:    make(map[string]models.FileMeta),
		statuses: make(map[string]models.JobStatus),
	}
}

// Add registers a file record, keyed by its id.
func (m *MemStore) Add(meta models.FileMeta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[meta.ID] = meta
}

func (m *MemStore) GetFileMeta(ctx context.Context, id string) (models.FileMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.files[id]
	if !ok {
		return models.FileMeta{}, ErrNotFound
	}
	return meta, nil
}

func (m *MemStore) SetCompressionStatus(ctx context.Context, sourceID string, status models.JobStatus, qualities []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[sourceID] = status
	return nil
}

// CompressionStatus reports the last status pushed for a source.
func (m *MemStore) CompressionStatus(sourceID string) models.JobStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.statuses[sourceID]; ok {
		return s
	}
	return models.StatusNone
}
