package service

import (
	"context"
	"time"

	"docvault-go/internal/errs"
	"docvault-go/internal/model"
	"docvault-go/internal/repository"
	"docvault-go/internal/vectorindex"
	"docvault-go/pkg/kafka"
	"docvault-go/pkg/log"
	"docvault-go/pkg/storage"
)

// DocumentService manages the document catalog and the ingest entry point.
type DocumentService interface {
	// Ingest stores the raw bytes, records the source in the catalog as
	// pending, and enqueues the background indexing task.
	Ingest(ctx context.Context, source string, modTime time.Time, raw []byte) error
	List() ([]model.Document, error)
	// Delete removes the source from the catalog, the vector index, and
	// object storage.
	Delete(ctx context.Context, source string) error
}

type documentService struct {
	repo   repository.DocumentRepository
	index  vectorindex.Index
	bucket string
}

// NewDocumentService creates a new DocumentService instance.
func NewDocumentService(repo repository.DocumentRepository, index vectorindex.Index, bucket string) DocumentService {
	return &documentService{
		repo:   repo,
		index:  index,
		bucket: bucket,
	}
}

func (s *documentService) Ingest(ctx context.Context, source string, modTime time.Time, raw []byte) error {
	if source == "" {
		return &errs.ValidationError{Field: "source", Reason: "must not be empty"}
	}
	if len(raw) == 0 {
		return &errs.ValidationError{Field: "file", Reason: "must not be empty"}
	}
	kind := model.KindFromFilename(source)
	log.Infof("[DocumentService] Ingesting source: %s, kind: %s, size: %d bytes", source, kind, len(raw))

	if err := storage.PutDocument(ctx, s.bucket, source, raw); err != nil {
		log.Errorf("[DocumentService] Failed to store raw file, source: %s, error: %v", source, err)
		return err
	}

	doc := &model.Document{
		Source:    source,
		Kind:      kind,
		ModTime:   modTime.UTC(),
		SizeBytes: int64(len(raw)),
		Status:    model.StatusPending,
	}
	if err := s.repo.Upsert(doc); err != nil {
		log.Errorf("[DocumentService] Failed to record catalog row, source: %s, error: %v", source, err)
		return err
	}

	task := kafka.IngestTask{
		Source:    source,
		Kind:      kind,
		ModTime:   modTime.UTC().Unix(),
		SizeBytes: int64(len(raw)),
	}
	if err := kafka.ProduceIngestTask(task); err != nil {
		log.Errorf("[DocumentService] Failed to enqueue ingest task, source: %s, error: %v", source, err)
		return err
	}
	log.Infof("[DocumentService] Ingest task enqueued, source: %s", source)
	return nil
}

func (s *documentService) List() ([]model.Document, error) {
	return s.repo.FindAll()
}

func (s *documentService) Delete(ctx context.Context, source string) error {
	if source == "" {
		return &errs.ValidationError{Field: "source", Reason: "must not be empty"}
	}
	log.Infof("[DocumentService] Deleting source: %s", source)

	if err := s.index.DeleteBySource(ctx, source); err != nil {
		log.Errorf("[DocumentService] Failed to delete vectors, source: %s, error: %v", source, err)
		return err
	}
	if err := storage.RemoveDocument(ctx, s.bucket, source); err != nil {
		log.Warnf("[DocumentService] Failed to remove raw file, source: %s, error: %v", source, err)
	}
	if err := s.repo.DeleteBySource(source); err != nil {
		log.Errorf("[DocumentService] Failed to delete catalog row, source: %s, error: %v", source, err)
		return err
	}
	log.Infof("[DocumentService] Source deleted: %s", source)
	return nil
}
