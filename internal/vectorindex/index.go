// Package vectorindex abstracts the external nearest-neighbor store behind
// a narrow upsert/delete/query interface, with pluggable backends.
package vectorindex

import (
	"context"
	"time"

	"docvault-go/internal/model"
)

// Filter restricts a query to a subset of chunk metadata. Backends that
// cannot push a clause down may ignore it; the ranking stage re-applies
// both filters before scoring.
type Filter struct {
	// Kinds limits matches to the given document kinds; empty means all.
	Kinds []string
	// Oldest excludes documents modified before the given time; the zero
	// value disables the age floor.
	Oldest time.Time
}

// Index is the vector store consumed by the ingest and search paths.
// Implementations return *errs.IndexUnavailableError when the store cannot
// be reached or rejects an operation.
type Index interface {
	// Upsert writes the given chunks, keyed by ChunkID.
	Upsert(ctx context.Context, chunks []model.IndexedChunk) error
	// DeleteBySource removes every chunk whose source matches.
	DeleteBySource(ctx context.Context, source string) error
	// Query returns up to k matches ordered by ascending distance.
	Query(ctx context.Context, vector []float32, k int, filter Filter) ([]model.RawMatch, error)
}

// Matches reports whether metadata with the given kind and modification
// time passes the filter.
func (f Filter) Matches(kind string, modTime time.Time) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if k == kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Oldest.IsZero() && modTime.Before(f.Oldest) {
		return false
	}
	return true
}
