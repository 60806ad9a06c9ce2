package job

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"vidserve/artifact"
	"vidserve/encoder"
	"vidserve/history"
	"vidserve/logger"
	"vidserve/models"
)

// Notifier receives job status transitions. Fire-and-forget: delivery
// loss degrades perceived latency only, existence-based delivery stays
// correct.
type Notifier interface {
	Notify(sourceID string, from, to models.JobStatus, available []string)
}

// HistoryStore persists terminal job outcomes.
type HistoryStore interface {
	Put(rec history.Record) error
	Get(sourceID string) (*history.Record, error)
}

// Store is the slice of the object store gateway the coordinator needs.
type Store interface {
	Download(ctx context.Context, key, localPath string) error
	Upload(ctx context.Context, localPath, key string) error
	Delete(ctx context.Context, key string) error
}

// Config tunes one coordinator instance.
type Config struct {
	ScratchDir    string
	EncoderName   string
	EncodeTimeout time.Duration
	Parallel      int64 // concurrent quality encodes within one job
	Catalog       []models.QualityProfile
}

// Handle represents a transcoding request. AlreadyRunning means a job
// for the source was active when the request arrived; that is progress,
// not an error. Done is closed when the job reaches a terminal state
// and is nil on AlreadyRunning handles.
type Handle struct {
	SourceID       string
	AlreadyRunning bool
	Status         models.JobStatus
	Done           <-chan struct{}
}

// Coordinator drives one end-to-end transcoding job per source:
// download once, encode every catalog quality, upload the successes,
// clean up, release the source lease.
type Coordinator struct {
	store    Store
	registry Registry
	history  HistoryStore
	notifier Notifier
	tracker  *Tracker
	cfg      Config
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(store Store, registry Registry, hist HistoryStore, notifier Notifier, cfg Config) *Coordinator {
	if cfg.Parallel <= 0 {
		cfg.Parallel = 1
	}
	if cfg.EncodeTimeout <= 0 {
		cfg.EncodeTimeout = 30 * time.Minute
	}
	return &Coordinator{
		store:    store,
		registry: registry,
		history:  hist,
		notifier: notifier,
		tracker:  NewTracker(),
		cfg:      cfg,
	}
}

// Request starts a transcoding job for the source unless one is already
// running. The source id is normalized first so requests against a
// rendition id target the original.
func (c *Coordinator) Request(sourceID string) (Handle, error) {
	sourceID = artifact.Base(sourceID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	acquired, err := c.registry.Acquire(ctx, sourceID)
	if err != nil {
		return Handle{}, fmt.Errorf("acquire job lease: %w", err)
	}
	if !acquired {
		return Handle{
			SourceID:       sourceID,
			AlreadyRunning: true,
			Status:         models.StatusCompressing,
		}, nil
	}

	c.tracker.Set(sourceID, models.StatusPending)
	c.notifier.Notify(sourceID, models.StatusNone, models.StatusPending, nil)

	done := make(chan struct{})
	go c.run(sourceID, done)

	return Handle{SourceID: sourceID, Status: models.StatusPending, Done: done}, nil
}

// Status returns the live job status for a source, falling back to the
// last recorded terminal status once the in-memory entry is evicted.
func (c *Coordinator) Status(sourceID string) models.JobStatus {
	sourceID = artifact.Base(sourceID)
	if s := c.tracker.Get(sourceID); s != models.StatusNone {
		return s
	}
	rec, err := c.history.Get(sourceID)
	if err != nil {
		logger.Errorf("history lookup for %s: %v", sourceID, err)
		return models.StatusNone
	}
	if rec == nil {
		return models.StatusNone
	}
	return rec.Status
}

// LastRecord returns the last job record for a source, or nil.
func (c *Coordinator) LastRecord(sourceID string) (*history.Record, error) {
	return c.history.Get(artifact.Base(sourceID))
}

func (c *Coordinator) run(sourceID string, done chan struct{}) {
	defer close(done)
	ctx := context.Background()

	scratch := filepath.Join(c.cfg.ScratchDir, "vidserve-"+uuid.NewString())
	rec := history.Record{SourceID: sourceID, Failures: map[string]string{}}

	// Scratch removal and lease release must run on every exit path.
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Errorf("failed to remove scratch dir %s: %v", scratch, err)
		}
		if err := c.registry.Release(ctx, sourceID); err != nil {
			logger.Errorf("failed to release job lease for %s: %v", sourceID, err)
		}
	}()

	c.tracker.Set(sourceID, models.StatusCompressing)
	c.notifier.Notify(sourceID, models.StatusPending, models.StatusCompressing, nil)
	logger.Infof("transcoding %s: %d qualities", sourceID, len(c.cfg.Catalog))

	if err := os.MkdirAll(scratch, 0755); err != nil {
		c.finishFailed(sourceID, rec, fmt.Errorf("create scratch dir: %w", err))
		return
	}

	localSource := filepath.Join(scratch, "source"+path.Ext(sourceID))
	if err := c.store.Download(ctx, sourceID, localSource); err != nil {
		c.finishFailed(sourceID, rec, fmt.Errorf("download source: %w", err))
		return
	}

	enc, ok := encoder.Get(c.cfg.EncoderName)
	if !ok {
		c.finishFailed(sourceID, rec, fmt.Errorf("encoder %s not registered", c.cfg.EncoderName))
		return
	}

	// Encode phase. A failed quality is recorded and skipped; the job
	// carries on with the remaining qualities.
	outputs := make(map[string]string, len(c.cfg.Catalog))
	sem := semaphore.NewWeighted(c.cfg.Parallel)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, p := range c.cfg.Catalog {
		rec.Attempted = append(rec.Attempted, p.Name)
		wg.Add(1)
		go func(p models.QualityProfile) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				rec.Failures[p.Name] = err.Error()
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			out := filepath.Join(scratch, p.Name+path.Ext(sourceID))
			ectx, cancel := context.WithTimeout(ctx, c.cfg.EncodeTimeout)
			defer cancel()

			err := enc(ectx, localSource, out, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Errorf("encode %s quality %s failed: %v", sourceID, p.Name, err)
				rec.Failures[p.Name] = err.Error()
				return
			}
			outputs[p.Name] = out
		}(p)
	}
	wg.Wait()

	// Upload phase. Transport failures abort the whole job; anything
	// already uploaded is removed best-effort so no partial set lingers.
	var uploaded []string
	for _, p := range c.cfg.Catalog {
		out, ok := outputs[p.Name]
		if !ok {
			continue
		}
		key := artifact.Derive(sourceID, p.Name)
		if err := c.store.Upload(ctx, out, key); err != nil {
			for _, name := range uploaded {
				if derr := c.store.Delete(ctx, artifact.Derive(sourceID, name)); derr != nil {
					logger.Errorf("cleanup of partial artifact %s failed: %v", name, derr)
				}
			}
			c.finishFailed(sourceID, rec, fmt.Errorf("upload %s: %w", key, err))
			return
		}
		uploaded = append(uploaded, p.Name)
	}

	rec.Succeeded = uploaded
	if len(uploaded) > 0 {
		rec.Status = models.StatusCompleted
	} else {
		rec.Status = models.StatusFailed
	}
	c.finish(sourceID, rec, uploaded)
	logger.Infof("transcoding %s finished: %s (%d/%d qualities)",
		sourceID, rec.Status, len(uploaded), len(c.cfg.Catalog))
}

func (c *Coordinator) finishFailed(sourceID string, rec history.Record, err error) {
	logger.Errorf("transcoding %s failed: %v", sourceID, err)
	rec.Status = models.StatusFailed
	rec.JobError = err.Error()
	c.finish(sourceID, rec, nil)
}

// finish records the outcome, evicts the in-memory entry and notifies.
func (c *Coordinator) finish(sourceID string, rec history.Record, available []string) {
	if err := c.history.Put(rec); err != nil {
		// The object store remains authoritative; losing the record
		// only degrades the validation endpoint.
		logger.Errorf("failed to store history record for %s: %v", sourceID, err)
	}
	c.tracker.Clear(sourceID)
	c.notifier.Notify(sourceID, models.StatusCompressing, rec.Status, available)
}
