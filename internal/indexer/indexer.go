// Package indexer drives atomic re-indexing of one source: remove every
// stale vector for the source, then chunk, embed, and upsert the new ones.
package indexer

import (
	"context"
	"sync"
	"time"

	"docvault-go/internal/chunk"
	"docvault-go/internal/errs"
	"docvault-go/internal/model"
	"docvault-go/internal/vectorindex"
	"docvault-go/pkg/embedding"
)

// Indexer writes a source's chunks into the vector index. Reindex calls
// for the same source are serialized; different sources may run
// concurrently.
type Indexer struct {
	splitter chunk.Splitter
	embedder embedding.Client
	index    vectorindex.Index
	timeout  time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Indexer. timeout bounds each embedding and index call;
// zero means no bound beyond the caller's context.
func New(splitter chunk.Splitter, embedder embedding.Client, index vectorindex.Index, timeout time.Duration) *Indexer {
	return &Indexer{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		timeout:  timeout,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Reindex replaces all indexed vectors for meta.Source with vectors for
// the given text and returns the number of chunks written.
//
// Existing vectors are deleted before any insert, so document edits can
// never leave stale fragments from a previous version queryable. If
// embedding fails mid-batch the chunks upserted so far remain; the caller
// retries the whole source. The per-source lock is held until this
// function returns, whatever the outcome.
func (ix *Indexer) Reindex(ctx context.Context, text string, meta model.SourceMeta) (int, error) {
	lock := ix.sourceLock(meta.Source)
	lock.Lock()
	defer lock.Unlock()

	dctx, cancel := ix.bound(ctx)
	err := ix.index.DeleteBySource(dctx, meta.Source)
	cancel()
	if err != nil {
		return 0, err
	}

	chunks := ix.splitter.Split(text, meta)
	for _, ch := range chunks {
		ectx, cancel := ix.bound(ctx)
		vector, err := ix.embedder.CreateEmbedding(ectx, ch.Text)
		cancel()
		if err != nil {
			return 0, &errs.EmbeddingError{Source: meta.Source, Err: err}
		}

		doc := model.IndexedChunk{
			ChunkID:      ch.ID(),
			Source:       ch.Meta.Source,
			Ordinal:      ch.Ordinal,
			Kind:         ch.Meta.Kind,
			ModTime:      ch.Meta.ModTime.Unix(),
			TextContent:  ch.Text,
			Vector:       vector,
			ModelVersion: ix.embedder.Model(),
		}

		uctx, cancel := ix.bound(ctx)
		err = ix.index.Upsert(uctx, []model.IndexedChunk{doc})
		cancel()
		if err != nil {
			return 0, err
		}
	}
	return len(chunks), nil
}

func (ix *Indexer) sourceLock(source string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	lock, ok := ix.locks[source]
	if !ok {
		lock = &sync.Mutex{}
		ix.locks[source] = lock
	}
	return lock
}

func (ix *Indexer) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if ix.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, ix.timeout)
}
