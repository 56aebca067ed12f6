package model

import "time"

// SourceMeta is the document metadata every chunk inherits unchanged.
type SourceMeta struct {
	Source  string
	Kind    string
	ModTime time.Time
}

// IndexedChunk is the record stored in the vector index: one per live
// chunk, keyed by ChunkID derived from source and ordinal.
type IndexedChunk struct {
	ChunkID      string    `json:"chunk_id"`
	Source       string    `json:"source"`
	Ordinal      int       `json:"ordinal"`
	Kind         string    `json:"kind"`
	ModTime      int64     `json:"mtime"`
	TextContent  string    `json:"text_content"`
	Vector       []float32 `json:"vector"`
	ModelVersion string    `json:"model_version"`
}

// RawMatch is one nearest-neighbor hit returned by the vector index, with
// the raw metric distance (lower is closer).
type RawMatch struct {
	ChunkID  string
	Source   string
	Ordinal  int
	Kind     string
	ModTime  time.Time
	Text     string
	Distance float64
}
