// Package repository defines the data access layer for the document
// catalog.
package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"docvault-go/internal/model"
)

// DocumentRepository persists the catalog of ingested sources.
type DocumentRepository interface {
	Upsert(doc *model.Document) error
	FindBySource(source string) (*model.Document, error)
	FindAll() ([]model.Document, error)
	MarkIndexed(source string, chunkCount int) error
	MarkFailed(source string) error
	DeleteBySource(source string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a DocumentRepository backed by GORM.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Upsert creates the catalog row for a source or, on re-upload, resets the
// existing row to pending with the new metadata.
func (r *documentRepository) Upsert(doc *model.Document) error {
	var existing model.Document
	err := r.db.Where("source = ?", doc.Source).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(doc).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&model.Document{}).Where("source = ?", doc.Source).Updates(map[string]interface{}{
		"kind":        doc.Kind,
		"mod_time":    doc.ModTime,
		"size_bytes":  doc.SizeBytes,
		"status":      model.StatusPending,
		"chunk_count": 0,
		"indexed_at":  nil,
	}).Error
}

func (r *documentRepository) FindBySource(source string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("source = ?", source).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindAll() ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Order("source asc").Find(&docs).Error
	return docs, err
}

// MarkIndexed records a successful reindex.
func (r *documentRepository) MarkIndexed(source string, chunkCount int) error {
	now := time.Now()
	return r.db.Model(&model.Document{}).Where("source = ?", source).Updates(map[string]interface{}{
		"status":      model.StatusIndexed,
		"chunk_count": chunkCount,
		"indexed_at":  &now,
	}).Error
}

// MarkFailed records a failed reindex; the row stays visible so the
// failure can be inspected and the upload retried.
func (r *documentRepository) MarkFailed(source string) error {
	return r.db.Model(&model.Document{}).Where("source = ?", source).Update("status", model.StatusFailed).Error
}

func (r *documentRepository) DeleteBySource(source string) error {
	return r.db.Where("source = ?", source).Delete(&model.Document{}).Error
}
