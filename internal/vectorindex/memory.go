package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"docvault-go/internal/model"
)

// Memory is a brute-force cosine-distance index held in process memory.
// It backs tests and single-node development setups.
type Memory struct {
	mu     sync.RWMutex
	chunks map[string]model.IndexedChunk
}

// NewMemory returns an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{chunks: make(map[string]model.IndexedChunk)}
}

func (m *Memory) Upsert(ctx context.Context, chunks []model.IndexedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ChunkID] = c
	}
	return nil
}

func (m *Memory) DeleteBySource(ctx context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.Source == source {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, vector []float32, k int, filter Filter) ([]model.RawMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]model.RawMatch, 0, len(m.chunks))
	for _, c := range m.chunks {
		modTime := time.Unix(c.ModTime, 0)
		if !filter.Matches(c.Kind, modTime) {
			continue
		}
		matches = append(matches, model.RawMatch{
			ChunkID:  c.ChunkID,
			Source:   c.Source,
			Ordinal:  c.Ordinal,
			Kind:     c.Kind,
			ModTime:  modTime,
			Text:     c.TextContent,
			Distance: cosineDistance(vector, c.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of stored chunks for a source.
func (m *Memory) Count(source string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.chunks {
		if c.Source == source {
			n++
		}
	}
	return n
}

// IDs returns the stored chunk identifiers for a source, unordered.
func (m *Memory) IDs(source string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, c := range m.chunks {
		if c.Source == source {
			ids = append(ids, id)
		}
	}
	return ids
}

// cosineDistance is 1 - cosine similarity; orthogonal or zero vectors get
// the maximum distance of 1.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
