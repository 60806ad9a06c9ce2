// Package history keeps a durable record of the last transcoding job
// per source. Delivery never consults it for rendition existence (the
// object store is authoritative); it feeds the validation endpoint and
// terminal status lookups after the in-memory job entry is evicted.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"

	"vidserve/models"
)

// Record is the outcome of one transcoding job.
type Record struct {
	SourceID  string            `json:"source_id"`
	Status    models.JobStatus  `json:"status"`
	Attempted []string          `json:"attempted"`        // quality names the job tried
	Succeeded []string          `json:"succeeded"`        // quality names that produced an artifact
	Failures  map[string]string `json:"failures"`         // quality name -> error
	JobError  string            `json:"error,omitempty"`  // set when the whole job aborted
	Timestamp time.Time         `json:"timestamp"`
}

// Store is a pebble-backed record store keyed by source id. Each new
// job overwrites the previous record for its source.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores the record, replacing any previous record for the source.
func (s *Store) Put(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}
	return s.db.Set([]byte(rec.SourceID), data, pebble.Sync)
}

// Get retrieves the record for a source. Returns (nil, nil) when no
// record exists.
func (s *Store) Get(sourceID string) (*Record, error) {
	data, closer, err := s.db.Get([]byte(sourceID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history record: %w", err)
	}
	return &rec, nil
}

// Delete removes the record for a source.
func (s *Store) Delete(sourceID string) error {
	return s.db.Delete([]byte(sourceID), pebble.Sync)
}

// List returns all records (for admin/debugging).
func (s *Store) List() ([]Record, error) {
	var records []Record
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // skip invalid records
		}
		records = append(records, rec)
	}
	return records, nil
}

// CleanupOldRecords removes records older than maxAge.
func (s *Store) CleanupOldRecords(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue
		}
		if rec.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			keysToDelete = append(keysToDelete, key)
		}
	}

	for _, key := range keysToDelete {
		if err := s.db.Delete(key, pebble.Sync); err != nil {
			return fmt.Errorf("failed to delete old history record: %w", err)
		}
	}
	return nil
}
