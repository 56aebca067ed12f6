package rank

import (
	"math"
	"sort"
	"strings"
	"time"

	"docvault-go/internal/model"
	"docvault-go/internal/vectorindex"
)

// Scorer computes composite relevance scores for raw matches.
type Scorer struct {
	tuning Tuning
	now    func() time.Time
}

// NewScorer validates the tuning and returns a Scorer.
func NewScorer(tuning Tuning) (*Scorer, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{tuning: tuning, now: time.Now}, nil
}

// MaxRecencyBoost is the largest request recency weight that leaves the
// semantic component a positive share of the composite score.
func (s *Scorer) MaxRecencyBoost() float64 {
	return 1 - s.tuning.KeywordWeight
}

// QueryWords tokenizes a query into lowercased words of length > 1, the
// unit of keyword matching.
func QueryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			words = append(words, f)
		}
	}
	return words
}

// Score filters matches by the request's kind set and maximum age, scores
// the survivors, and returns them sorted by descending composite score.
// Ties keep the vector-index order.
//
// Composite = (1-kw-rw)*semantic + kw*keyword + rw*recency, where kw is
// the tuned keyword weight and rw the request's recency boost.
func (s *Scorer) Score(req model.QueryRequest, matches []model.RawMatch) []model.ScoredResult {
	now := s.now()
	queryWords := QueryWords(req.Query)

	filter := vectorindex.Filter{Kinds: req.Types}
	if req.MaxAgeDays > 0 {
		filter.Oldest = now.Add(-time.Duration(req.MaxAgeDays) * 24 * time.Hour)
	}

	kw := s.tuning.KeywordWeight
	rw := req.RecencyBoost
	if rw < 0 {
		rw = 0
	}
	if kw+rw >= 1 {
		rw = 1 - kw
	}

	results := make([]model.ScoredResult, 0, len(matches))
	for _, m := range matches {
		if !filter.Matches(m.Kind, m.ModTime) {
			continue
		}

		semantic := 1 / (1 + m.Distance)
		keyword := keywordScore(m.Text, queryWords)
		recency := s.recencyScore(now, m.ModTime)
		score := (1-kw-rw)*semantic + kw*keyword + rw*recency

		results = append(results, model.ScoredResult{
			ChunkID: m.ChunkID,
			Source:  m.Source,
			Ordinal: m.Ordinal,
			Kind:    m.Kind,
			Text:    m.Text,
			Score:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// keywordScore is the fraction of query words appearing case-insensitively
// as substrings of the chunk text, clipped to [0,1]. Substring matching is
// deliberately coarse; it mirrors the behavior search results were tuned
// against.
func keywordScore(text string, queryWords []string) float64 {
	if len(queryWords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, w := range queryWords {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	score := float64(hits) / float64(len(queryWords))
	if score > 1 {
		score = 1
	}
	return score
}

// recencyScore decays exponentially with document age: 1 at age zero, one
// half per RecencyHalfLife. Future timestamps clamp to 1.
func (s *Scorer) recencyScore(now, modTime time.Time) float64 {
	age := now.Sub(modTime)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(s.tuning.RecencyHalfLife))
}
