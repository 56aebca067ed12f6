// Package rank turns raw vector-index matches into the final ranked,
// deduplicated result list. Scoring and curation are pure functions of the
// match set and the request; nothing here keeps cross-request state.
package rank

import (
	"fmt"
	"time"

	"docvault-go/internal/config"
	"docvault-go/internal/errs"
)

// Tuning collects every ranking and curation knob in one validated value.
type Tuning struct {
	// KeywordWeight is the fraction of the composite score contributed by
	// keyword overlap.
	KeywordWeight float64
	// RecencyHalfLife is the age at which the recency component decays to
	// one half. The recency weight itself comes from the request.
	RecencyHalfLife time.Duration
	// MaxPerSource caps how many surviving results may share a source.
	MaxPerSource int
	// FinalCap is the maximum length of the curated result list.
	FinalCap int
	// DedupePrefixLen is the number of leading characters of lowercased
	// chunk text used in the near-duplicate key.
	DedupePrefixLen int
	// MaxSnippets caps the highlight excerpts extracted per result.
	MaxSnippets int
}

// DefaultTuning returns the standard knob values.
func DefaultTuning() Tuning {
	return Tuning{
		KeywordWeight:   0.3,
		RecencyHalfLife: 30 * 24 * time.Hour,
		MaxPerSource:    3,
		FinalCap:        8,
		DedupePrefixLen: 80,
		MaxSnippets:     3,
	}
}

// TuningFromConfig builds a Tuning from the search config section, filling
// zero values with defaults.
func TuningFromConfig(cfg config.SearchConfig) Tuning {
	t := DefaultTuning()
	if cfg.KeywordWeight > 0 {
		t.KeywordWeight = cfg.KeywordWeight
	}
	if cfg.RecencyHalfLifeDays > 0 {
		t.RecencyHalfLife = time.Duration(cfg.RecencyHalfLifeDays * 24 * float64(time.Hour))
	}
	if cfg.MaxPerSource > 0 {
		t.MaxPerSource = cfg.MaxPerSource
	}
	if cfg.FinalCap > 0 {
		t.FinalCap = cfg.FinalCap
	}
	if cfg.DedupePrefixLen > 0 {
		t.DedupePrefixLen = cfg.DedupePrefixLen
	}
	return t
}

// Validate rejects tunings that would break the scoring weights or the
// curation caps.
func (t Tuning) Validate() error {
	if t.KeywordWeight < 0 || t.KeywordWeight >= 1 {
		return &errs.ValidationError{Field: "keyword_weight", Reason: fmt.Sprintf("must be in [0,1), got %v", t.KeywordWeight)}
	}
	if t.RecencyHalfLife <= 0 {
		return &errs.ValidationError{Field: "recency_half_life", Reason: "must be positive"}
	}
	if t.MaxPerSource <= 0 {
		return &errs.ValidationError{Field: "max_per_source", Reason: "must be positive"}
	}
	if t.FinalCap <= 0 {
		return &errs.ValidationError{Field: "final_cap", Reason: "must be positive"}
	}
	if t.DedupePrefixLen <= 0 {
		return &errs.ValidationError{Field: "dedupe_prefix_len", Reason: "must be positive"}
	}
	if t.MaxSnippets <= 0 {
		return &errs.ValidationError{Field: "max_snippets", Reason: "must be positive"}
	}
	return nil
}
