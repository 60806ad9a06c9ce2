// Package delivery decides which object to serve for a playback
// request: the exact requested rendition, a fallback rendition, the
// original source, or "try again shortly" while a job is running.
package delivery

import (
	"context"

	"vidserve/artifact"
	"vidserve/models"
)

// Kind classifies a delivery decision.
type Kind int

const (
	ServeExact Kind = iota
	ServeFallback
	ServeOriginal
	Defer
)

// Decision is computed per request and never persisted.
type Decision struct {
	Kind    Kind
	Key     string // object key to serve; empty for Defer
	Quality string // quality name served; empty for the original
	Reason  string // set for Defer
}

// Existence is the single store capability the resolver needs.
// Existence is checked at decision time, never cached: the object
// store is the only source of truth for which renditions exist.
type Existence interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Resolver implements the quality-fallback cascade.
type Resolver struct {
	store    Existence
	catalog  []models.QualityProfile
	fallback models.QualityProfile
}

// NewResolver builds a resolver over the given catalog. fallback is
// the default quality tried first when the requested one is missing.
func NewResolver(store Existence, catalog []models.QualityProfile, fallback models.QualityProfile) *Resolver {
	return &Resolver{store: store, catalog: catalog, fallback: fallback}
}

// Resolve applies the decision table in order:
//
//  1. the requested rendition exists           -> ServeExact
//  2. a job is actively running                -> Defer("processing")
//  3. the fallback or any catalog rendition
//     exists                                   -> ServeFallback
//  4. otherwise                                -> ServeOriginal
//
// Step 2 before step 3 is deliberate: while a job is compressing, a
// fallback served now could differ from the rendition that lands
// moments later. The original (step 4) keeps every request servable.
func (r *Resolver) Resolve(ctx context.Context, sourceID, requestedQuality string, status models.JobStatus) (Decision, error) {
	sourceID = artifact.Base(sourceID)

	// No quality requested: the caller wants the source as uploaded.
	if requestedQuality == "" {
		return Decision{Kind: ServeOriginal, Key: sourceID}, nil
	}

	key := artifact.Derive(sourceID, requestedQuality)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if exists {
		return Decision{Kind: ServeExact, Key: key, Quality: requestedQuality}, nil
	}

	if status == models.StatusCompressing || status == models.StatusPending {
		return Decision{Kind: Defer, Reason: "processing"}, nil
	}

	if d, ok, err := r.tryFallback(ctx, sourceID, requestedQuality); err != nil {
		return Decision{}, err
	} else if ok {
		return d, nil
	}

	return Decision{Kind: ServeOriginal, Key: sourceID}, nil
}

// tryFallback checks the default fallback quality first, then the rest
// of the catalog in order.
func (r *Resolver) tryFallback(ctx context.Context, sourceID, requested string) (Decision, bool, error) {
	candidates := make([]string, 0, len(r.catalog))
	if r.fallback.Name != "" && r.fallback.Name != requested {
		candidates = append(candidates, r.fallback.Name)
	}
	for _, p := range r.catalog {
		if p.Name == requested || p.Name == r.fallback.Name {
			continue
		}
		candidates = append(candidates, p.Name)
	}

	for _, name := range candidates {
		key := artifact.Derive(sourceID, name)
		exists, err := r.store.Exists(ctx, key)
		if err != nil {
			return Decision{}, false, err
		}
		if exists {
			return Decision{Kind: ServeFallback, Key: key, Quality: name}, true, nil
		}
	}
	return Decision{}, false, nil
}

// ExistingQualities returns the catalog quality names whose artifacts
// exist right now. Used by the validation endpoint.
func (r *Resolver) ExistingQualities(ctx context.Context, sourceID string) ([]string, error) {
	sourceID = artifact.Base(sourceID)
	existing := make([]string, 0, len(r.catalog))
	for _, p := range r.catalog {
		exists, err := r.store.Exists(ctx, artifact.Derive(sourceID, p.Name))
		if err != nil {
			return nil, err
		}
		if exists {
			existing = append(existing, p.Name)
		}
	}
	return existing, nil
}
