// Package pipeline processes ingest tasks from the task queue: it fetches
// the raw file from object storage, extracts its text, rebuilds the vector
// index entries for that source, and records the outcome in the catalog.
package pipeline

import (
	"context"
	"time"

	"docvault-go/internal/indexer"
	"docvault-go/internal/model"
	"docvault-go/internal/repository"
	"docvault-go/pkg/extract"
	"docvault-go/pkg/kafka"
	"docvault-go/pkg/log"
	"docvault-go/pkg/storage"
)

// Processor implements kafka.TaskProcessor. One task corresponds to one
// source; a failed task never leaves stale vectors for that source behind,
// because reindexing deletes before it inserts.
type Processor struct {
	repo      repository.DocumentRepository
	extractor extract.Extractor
	indexer   *indexer.Indexer
	bucket    string
	fetch     func(ctx context.Context, bucket, source string) ([]byte, error)
}

func NewProcessor(repo repository.DocumentRepository, extractor extract.Extractor, ix *indexer.Indexer, bucket string) *Processor {
	return &Processor{
		repo:      repo,
		extractor: extractor,
		indexer:   ix,
		bucket:    bucket,
		fetch:     storage.GetDocument,
	}
}

func (p *Processor) Process(ctx context.Context, task kafka.IngestTask) error {
	log.Infof("Processing ingest task, source: %s, kind: %s", task.Source, task.Kind)

	raw, err := p.fetch(ctx, p.bucket, task.Source)
	if err != nil {
		log.Errorf("Failed to fetch raw file, source: %s, error: %v", task.Source, err)
		p.markFailed(task.Source)
		return err
	}
	log.Infof("Fetched raw file, source: %s, size: %d bytes", task.Source, len(raw))

	count, err := p.Ingest(ctx, task.Source, task.Kind, time.Unix(task.ModTime, 0).UTC(), raw)
	if err != nil {
		p.markFailed(task.Source)
		return err
	}

	if err := p.repo.MarkIndexed(task.Source, count); err != nil {
		log.Errorf("Failed to update catalog, source: %s, error: %v", task.Source, err)
		return err
	}
	log.Infof("Ingest task completed, source: %s, chunks: %d", task.Source, count)
	return nil
}

// Ingest extracts text from raw bytes and rebuilds the source's index
// entries, returning the number of chunks written. It is synchronous;
// the queue consumer and any direct caller share this path.
func (p *Processor) Ingest(ctx context.Context, source, kind string, modTime time.Time, raw []byte) (int, error) {
	text, err := p.extractor.Extract(ctx, raw, source, kind)
	if err != nil {
		log.Errorf("Failed to extract text, source: %s, error: %v", source, err)
		return 0, err
	}
	log.Infof("Extracted text, source: %s, length: %d", source, len(text))

	meta := model.SourceMeta{
		Source:  source,
		Kind:    kind,
		ModTime: modTime,
	}
	count, err := p.indexer.Reindex(ctx, text, meta)
	if err != nil {
		log.Errorf("Failed to reindex, source: %s, error: %v", source, err)
		return 0, err
	}
	return count, nil
}

func (p *Processor) markFailed(source string) {
	if err := p.repo.MarkFailed(source); err != nil {
		log.Errorf("Failed to mark document failed, source: %s, error: %v", source, err)
	}
}
