// Package service provides the business logic for search, ingestion, and
// question answering.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docvault-go/internal/errs"
	"docvault-go/internal/model"
	"docvault-go/internal/rank"
	"docvault-go/internal/vectorindex"
	"docvault-go/pkg/embedding"
	"docvault-go/pkg/log"
)

// SearchService executes hybrid searches over the indexed chunks.
type SearchService interface {
	Search(ctx context.Context, req model.QueryRequest) ([]model.ScoredResult, error)
}

type searchService struct {
	embeddingClient embedding.Client
	index           vectorindex.Index
	scorer          *rank.Scorer
	curator         *rank.Curator
	defaultTopK     int
}

// NewSearchService creates a new SearchService instance.
func NewSearchService(embeddingClient embedding.Client, index vectorindex.Index, scorer *rank.Scorer, curator *rank.Curator, defaultTopK int) SearchService {
	if defaultTopK <= 0 {
		defaultTopK = 10
	}
	return &searchService{
		embeddingClient: embeddingClient,
		index:           index,
		scorer:          scorer,
		curator:         curator,
		defaultTopK:     defaultTopK,
	}
}

// Search validates the request, embeds the query, retrieves candidates from
// the vector index, and runs them through scoring and curation.
func (s *searchService) Search(ctx context.Context, req model.QueryRequest) ([]model.ScoredResult, error) {
	if err := validateQuery(&req, s.defaultTopK, s.scorer.MaxRecencyBoost()); err != nil {
		return nil, err
	}
	log.Infof("[SearchService] Executing hybrid search, query: '%s', topK: %d", req.Query, req.TopK)

	vector, err := s.embeddingClient.CreateEmbedding(ctx, req.Query)
	if err != nil {
		log.Errorf("[SearchService] Failed to embed query: %v", err)
		return nil, &errs.EmbeddingError{Source: "query", Err: err}
	}

	filter := vectorindex.Filter{Kinds: req.Types}
	if req.MaxAgeDays > 0 {
		filter.Oldest = time.Now().Add(-time.Duration(req.MaxAgeDays) * 24 * time.Hour)
	}

	matches, err := s.index.Query(ctx, vector, req.TopK, filter)
	if err != nil {
		log.Errorf("[SearchService] Vector index query failed: %v", err)
		return nil, err
	}
	log.Infof("[SearchService] Vector index returned %d candidates", len(matches))

	scored := s.scorer.Score(req, matches)
	curated := s.curator.Curate(scored, rank.QueryWords(req.Query))
	log.Infof("[SearchService] Search completed, %d results after curation", len(curated))
	return curated, nil
}

func validateQuery(req *model.QueryRequest, defaultTopK int, maxRecencyBoost float64) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return &errs.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}
	for _, t := range req.Types {
		if !model.ValidKind(t) {
			return &errs.ValidationError{Field: "types", Reason: "unknown document kind: " + t}
		}
	}
	if req.MaxAgeDays < 0 {
		return &errs.ValidationError{Field: "max_age_days", Reason: "must not be negative"}
	}
	// The keyword and recency weights must leave the semantic component a
	// positive share of the composite score.
	if req.RecencyBoost < 0 || req.RecencyBoost >= maxRecencyBoost {
		return &errs.ValidationError{
			Field:  "recency_boost",
			Reason: fmt.Sprintf("must be in [0, %g)", maxRecencyBoost),
		}
	}
	return nil
}
