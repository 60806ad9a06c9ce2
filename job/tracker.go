package job

import (
	"sync"

	"vidserve/models"
)

// Tracker holds the in-memory status of jobs that are not yet
// terminal. Entries are evicted once a job completes or fails; the
// history store answers for terminal jobs after that.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]models.JobStatus
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]models.JobStatus)}
}

// Set records the status of a source's job.
func (t *Tracker) Set(sourceID string, status models.JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[sourceID] = status
}

// Get returns the live status of a source's job, or StatusNone when no
// job is tracked.
func (t *Tracker) Get(sourceID string) models.JobStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.states[sourceID]; ok {
		return s
	}
	return models.StatusNone
}

// Clear evicts the source's entry.
func (t *Tracker) Clear(sourceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, sourceID)
}
