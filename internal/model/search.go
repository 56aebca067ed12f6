package model

// QueryRequest is the search request body.
type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
	// Types restricts results to a subset of {pdf, markdown, notes};
	// empty means all kinds.
	Types []string `json:"types"`
	// MaxAgeDays excludes documents older than the given age; 0 disables
	// the age filter.
	MaxAgeDays int `json:"max_age_days"`
	// RecencyBoost is the recency weight in [0,1); 0 means no recency
	// effect.
	RecencyBoost float64 `json:"recency_boost"`
}

// ScoredResult is a RawMatch with its composite relevance score and the
// highlight snippets extracted for it.
type ScoredResult struct {
	ChunkID  string   `json:"id"`
	Source   string   `json:"source"`
	Ordinal  int      `json:"ordinal"`
	Kind     string   `json:"type"`
	Text     string   `json:"text"`
	Snippets []string `json:"snippets,omitempty"`
	Score    float64  `json:"score"`
}
