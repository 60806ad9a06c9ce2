package job

import (
	"context"
	"sync"
)

// Registry enforces the single-job-per-source invariant: at most one
// transcoding job per source identifier may hold an entry at a time.
// Acquire is atomic check-and-insert; a false return means another job
// for the source is already running.
type Registry interface {
	Acquire(ctx context.Context, sourceID string) (bool, error)
	Release(ctx context.Context, sourceID string) error
}

// MemoryRegistry is the process-local registry used by single-instance
// deployments.
type MemoryRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{active: make(map[string]struct{})}
}

func (r *MemoryRegistry) Acquire(ctx context.Context, sourceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, running := r.active[sourceID]; running {
		return false, nil
	}
	r.active[sourceID] = struct{}{}
	return true, nil
}

func (r *MemoryRegistry) Release(ctx context.Context, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, sourceID)
	return nil
}

// Active reports whether a job currently holds the source.
func (r *MemoryRegistry) Active(sourceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, running := r.active[sourceID]
	return running
}
