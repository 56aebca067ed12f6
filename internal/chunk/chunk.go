// Package chunk splits extracted document text into overlapping word
// windows, the unit of embedding and retrieval.
package chunk

import (
	"fmt"
	"strings"

	"docvault-go/internal/model"
)

// Default window geometry, in words. Consecutive windows share Overlap
// words so that matches near a boundary are not lost to either side.
const (
	WindowSize = 200
	Overlap    = 40
)

// Chunk is one word-window slice of a document. It carries the source
// metadata unchanged and its ordinal position for identifier derivation.
type Chunk struct {
	Meta       model.SourceMeta
	Ordinal    int
	WordOffset int
	Text       string
}

// ID returns the chunk identifier the vector index is keyed by.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s:%d", c.Meta.Source, c.Ordinal)
}

// Splitter produces overlapping fixed-size word windows.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter builds a Splitter, falling back to the default geometry when
// the arguments are out of range (overlap must be smaller than the window).
func NewSplitter(size, overlap int) Splitter {
	if size <= 0 {
		size = WindowSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return Splitter{size: size, overlap: overlap}
}

// DefaultSplitter returns a Splitter with the standard 200/40 geometry.
func DefaultSplitter() Splitter {
	return NewSplitter(WindowSize, Overlap)
}

// Split cuts text into ordered chunks. Any text containing at least one
// word yields at least one chunk; text shorter than the window yields
// exactly one chunk with all words. The final chunk may be shorter than the
// window and carries no overlap requirement.
func (s Splitter) Split(text string, meta model.SourceMeta) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := s.size - s.overlap
	chunks := make([]Chunk, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := i + s.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Meta:       meta,
			Ordinal:    len(chunks),
			WordOffset: i,
			Text:       strings.Join(words[i:end], " "),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}
