package vectorindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault-go/internal/model"
)

func indexed(id, source, kind string, mtime time.Time, vec []float32) model.IndexedChunk {
	return model.IndexedChunk{
		ChunkID:     id,
		Source:      source,
		Kind:        kind,
		ModTime:     mtime.Unix(),
		TextContent: "text of " + id,
		Vector:      vec,
	}
}

func Test_Memory_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	idx := NewMemory()

	require.NoError(t, idx.Upsert(ctx, []model.IndexedChunk{
		indexed("a:0", "a", model.KindPDF, now, []float32{1, 0}),
		indexed("a:1", "a", model.KindPDF, now, []float32{0.9, 0.1}),
		indexed("b:0", "b", model.KindNotes, now, []float32{0, 1}),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 10, Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "a:0", matches[0].ChunkID)
	assert.Equal(t, "a:1", matches[1].ChunkID)
	assert.Equal(t, "b:0", matches[2].ChunkID)
	for i := 0; i+1 < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].Distance, matches[i+1].Distance)
	}
}

func Test_Memory_QueryRespectsK(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, []model.IndexedChunk{
		indexed("a:0", "a", model.KindPDF, now, []float32{1, 0}),
		indexed("a:1", "a", model.KindPDF, now, []float32{0.9, 0.1}),
		indexed("b:0", "b", model.KindNotes, now, []float32{0, 1}),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 2, Filter{})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func Test_Memory_Filters(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	old := now.Add(-90 * 24 * time.Hour)
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, []model.IndexedChunk{
		indexed("a:0", "a", model.KindPDF, now, []float32{1, 0}),
		indexed("b:0", "b", model.KindNotes, now, []float32{1, 0}),
		indexed("c:0", "c", model.KindPDF, old, []float32{1, 0}),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 10, Filter{Kinds: []string{model.KindPDF}})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, model.KindPDF, m.Kind)
	}

	matches, err = idx.Query(ctx, []float32{1, 0}, 10, Filter{Oldest: now.Add(-24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotEqual(t, "c:0", m.ChunkID)
	}
}

func Test_Memory_DeleteBySource(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, []model.IndexedChunk{
		indexed("a:0", "a", model.KindPDF, now, []float32{1, 0}),
		indexed("a:1", "a", model.KindPDF, now, []float32{0, 1}),
		indexed("b:0", "b", model.KindPDF, now, []float32{1, 0}),
	}))

	require.NoError(t, idx.DeleteBySource(ctx, "a"))
	assert.Equal(t, 0, idx.Count("a"))
	assert.Equal(t, 1, idx.Count("b"))
}

func Test_Memory_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, []model.IndexedChunk{
		indexed("a:0", "a", model.KindPDF, now, []float32{1, 0}),
	}))
	require.NoError(t, idx.Upsert(ctx, []model.IndexedChunk{
		indexed("a:0", "a", model.KindPDF, now, []float32{0, 1}),
	}))
	assert.Equal(t, 1, idx.Count("a"))
}

func Test_Filter_Matches(t *testing.T) {
	now := time.Now()
	var cases = []struct {
		name   string
		filter Filter
		kind   string
		mtime  time.Time
		want   bool
	}{
		{name: "empty_filter", filter: Filter{}, kind: model.KindPDF, mtime: now, want: true},
		{name: "kind_included", filter: Filter{Kinds: []string{model.KindPDF, model.KindNotes}}, kind: model.KindNotes, mtime: now, want: true},
		{name: "kind_excluded", filter: Filter{Kinds: []string{model.KindPDF}}, kind: model.KindMarkdown, mtime: now, want: false},
		{name: "too_old", filter: Filter{Oldest: now}, kind: model.KindPDF, mtime: now.Add(-time.Hour), want: false},
		{name: "recent_enough", filter: Filter{Oldest: now.Add(-time.Hour)}, kind: model.KindPDF, mtime: now, want: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.filter.Matches(c.kind, c.mtime))
		})
	}
}
