// Package errs defines the error taxonomy shared by the ingest and search
// paths. Callers classify with errors.As / errors.Is; no error is retried
// inside the core.
package errs

import "fmt"

// ExtractionError reports that text could not be produced from a source
// file. The source is skipped; other files in the same batch proceed.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError reports that the embedding provider failed to produce a
// vector. It aborts the current source's reindex only.
type EmbeddingError struct {
	Source string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("embedding: %v", e.Err)
	}
	return fmt.Sprintf("embedding %s: %v", e.Source, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexUnavailableError reports that the vector index could not be reached
// or rejected the operation. Surfaced to the caller as retryable.
type IndexUnavailableError struct {
	Op  string
	Err error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("vector index %s: %v", e.Op, e.Err)
}

func (e *IndexUnavailableError) Unwrap() error { return e.Err }

// ValidationError rejects a malformed request before any index access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
