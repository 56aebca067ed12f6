package indexer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault-go/internal/chunk"
	"docvault-go/internal/errs"
	"docvault-go/internal/model"
	"docvault-go/internal/vectorindex"
)

// stubEmbedder yields deterministic vectors and can be told to fail after
// a number of successful calls.
type stubEmbedder struct {
	mu        sync.Mutex
	calls     int
	failAfter int // fail on call n+1 when >= 0
}

func (s *stubEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failAfter >= 0 && s.calls > s.failAfter {
		return nil, errors.New("provider unavailable")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (s *stubEmbedder) Model() string { return "stub-embedder" }

func newTestIndexer(idx vectorindex.Index, emb *stubEmbedder) *Indexer {
	return New(chunk.NewSplitter(10, 2), emb, idx, time.Second)
}

func sourceMeta(source string) model.SourceMeta {
	return model.SourceMeta{
		Source:  source,
		Kind:    model.KindNotes,
		ModTime: time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC),
	}
}

func wordText(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func Test_Reindex_WritesAllChunks(t *testing.T) {
	idx := vectorindex.NewMemory()
	ix := newTestIndexer(idx, &stubEmbedder{failAfter: -1})

	// 26 words, window 10 step 8: windows at 0, 8, 16; the third reaches
	// the end, so no tail window follows.
	count, err := ix.Reindex(context.Background(), wordText(26), sourceMeta("notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, idx.Count("notes.txt"))

	ids := idx.IDs("notes.txt")
	sort.Strings(ids)
	assert.Equal(t, []string{"notes.txt:0", "notes.txt:1", "notes.txt:2"}, ids)
}

func Test_Reindex_Idempotent(t *testing.T) {
	idx := vectorindex.NewMemory()
	ix := newTestIndexer(idx, &stubEmbedder{failAfter: -1})
	text := wordText(26)
	meta := sourceMeta("notes.txt")

	first, err := ix.Reindex(context.Background(), text, meta)
	require.NoError(t, err)
	firstIDs := idx.IDs("notes.txt")

	second, err := ix.Reindex(context.Background(), text, meta)
	require.NoError(t, err)
	secondIDs := idx.IDs("notes.txt")

	assert.Equal(t, first, second)
	sort.Strings(firstIDs)
	sort.Strings(secondIDs)
	assert.Equal(t, firstIDs, secondIDs)
	assert.Equal(t, second, idx.Count("notes.txt"))
}

func Test_Reindex_RemovesStaleVectors(t *testing.T) {
	idx := vectorindex.NewMemory()
	ix := newTestIndexer(idx, &stubEmbedder{failAfter: -1})
	meta := sourceMeta("notes.txt")

	// First version: 5 chunks (10-word window, step 8, 36 words).
	count, err := ix.Reindex(context.Background(), wordText(36), meta)
	require.NoError(t, err)
	require.Equal(t, 5, count)

	// Shorter second version: 3 chunks; no vectors from the old version
	// may survive.
	count, err = ix.Reindex(context.Background(), wordText(22), meta)
	require.NoError(t, err)
	require.Equal(t, 3, count)
	assert.Equal(t, 3, idx.Count("notes.txt"))

	ids := idx.IDs("notes.txt")
	sort.Strings(ids)
	assert.Equal(t, []string{"notes.txt:0", "notes.txt:1", "notes.txt:2"}, ids)
}

func Test_Reindex_EmbeddingFailureMidBatch(t *testing.T) {
	idx := vectorindex.NewMemory()
	ix := newTestIndexer(idx, &stubEmbedder{failAfter: 2})

	_, err := ix.Reindex(context.Background(), wordText(36), sourceMeta("notes.txt"))
	require.Error(t, err)

	var embErr *errs.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, "notes.txt", embErr.Source)

	// Best effort: chunks upserted before the failure remain until the
	// caller retries the whole source.
	assert.Equal(t, 2, idx.Count("notes.txt"))

	// A successful retry replaces everything.
	ix2 := newTestIndexer(idx, &stubEmbedder{failAfter: -1})
	count, err := ix2.Reindex(context.Background(), wordText(36), sourceMeta("notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, count, idx.Count("notes.txt"))
}

func Test_Reindex_LeavesOtherSourcesAlone(t *testing.T) {
	idx := vectorindex.NewMemory()
	ix := newTestIndexer(idx, &stubEmbedder{failAfter: -1})

	_, err := ix.Reindex(context.Background(), wordText(26), sourceMeta("a.txt"))
	require.NoError(t, err)
	before := idx.Count("a.txt")

	_, err = ix.Reindex(context.Background(), wordText(26), sourceMeta("b.txt"))
	require.NoError(t, err)
	assert.Equal(t, before, idx.Count("a.txt"))
}

func Test_Reindex_ConcurrentSameSource(t *testing.T) {
	idx := vectorindex.NewMemory()
	ix := newTestIndexer(idx, &stubEmbedder{failAfter: -1})
	meta := sourceMeta("notes.txt")
	text := wordText(36)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ix.Reindex(context.Background(), text, meta)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Serialized delete-before-insert: never empty, never doubled.
	assert.Equal(t, 5, idx.Count("notes.txt"))
}
