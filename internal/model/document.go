// Package model defines the persistence and transfer types of the service.
package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Document kinds as stored in chunk metadata and the catalog.
const (
	KindPDF      = "pdf"
	KindMarkdown = "markdown"
	KindNotes    = "notes"
)

// Catalog row statuses.
const (
	StatusPending = 0
	StatusIndexed = 1
	StatusFailed  = 2
)

// KindFromFilename maps a file name to its document kind. Anything that is
// neither a PDF nor Markdown is treated as plain notes.
func KindFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".md", ".markdown":
		return KindMarkdown
	default:
		return KindNotes
	}
}

// ValidKind reports whether k is a known document kind.
func ValidKind(k string) bool {
	return k == KindPDF || k == KindMarkdown || k == KindNotes
}

// Document is the ORM model for the 'documents' catalog table. One row per
// ingested source; a re-upload supersedes the row rather than duplicating it.
type Document struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Source     string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"source"`
	Kind       string     `gorm:"type:varchar(16);not null" json:"kind"`
	ModTime    time.Time  `gorm:"not null" json:"modTime"`
	SizeBytes  int64      `gorm:"not null" json:"sizeBytes"`
	Status     int        `gorm:"type:tinyint;not null;default:0" json:"status"`
	ChunkCount int        `gorm:"not null;default:0" json:"chunkCount"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	IndexedAt  *time.Time `gorm:"default:null" json:"indexedAt"`
}

// TableName sets the table name for the Document model.
func (Document) TableName() string {
	return "documents"
}
