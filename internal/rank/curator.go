package rank

import (
	"regexp"
	"sort"
	"strings"

	"docvault-go/internal/model"
)

// Curator filters a scored result list for diversity: near-duplicate
// suppression, a per-source fan-out cap, snippet extraction, and final
// truncation. Input order (descending score) is preserved.
type Curator struct {
	tuning Tuning
}

// NewCurator validates the tuning and returns a Curator.
func NewCurator(tuning Tuning) (*Curator, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	return &Curator{tuning: tuning}, nil
}

// Curate applies duplicate and fan-out filtering over the full ranked
// list, attaches snippets, and only then truncates to the final cap —
// ranking order must be fully resolved before anything is cut.
func (c *Curator) Curate(results []model.ScoredResult, queryWords []string) []model.ScoredResult {
	seen := make(map[string]struct{}, len(results))
	perSource := make(map[string]int, len(results))

	curated := make([]model.ScoredResult, 0, c.tuning.FinalCap)
	for _, r := range results {
		key := c.dedupeKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		if perSource[r.Source] >= c.tuning.MaxPerSource {
			continue
		}
		seen[key] = struct{}{}
		perSource[r.Source]++

		r.Snippets = c.snippets(r.Text, queryWords)
		curated = append(curated, r)
	}

	if len(curated) > c.tuning.FinalCap {
		curated = curated[:c.tuning.FinalCap]
	}
	return curated
}

// dedupeKey is the near-duplicate normalization key: source id plus the
// lowercased text truncated to the tuned prefix length. Overlapping
// windows of the same passage collapse onto the highest-scored one.
func (c *Curator) dedupeKey(r model.ScoredResult) string {
	text := strings.ToLower(r.Text)
	// Truncate on runes; a byte cut could split a multi-byte character.
	if runes := []rune(text); len(runes) > c.tuning.DedupePrefixLen {
		text = string(runes[:c.tuning.DedupePrefixLen])
	}
	return r.Source + "\x00" + text
}

var sentenceSplitter = regexp.MustCompile(`(?U)[^.!?]+[.!?]`)

// snippets selects the sentences with the highest density of query-word
// occurrences as highlight excerpts, in document order. Sentence
// granularity is used because window splitting normalizes away line
// breaks. If no query word occurs, no snippet is produced and the full
// chunk text stands alone.
func (c *Curator) snippets(text string, queryWords []string) []string {
	if len(queryWords) == 0 {
		return nil
	}

	sentences := sentenceSplitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	type scored struct {
		pos  int
		hits int
		text string
	}
	var candidates []scored
	for i, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) <= 5 {
			continue
		}
		lower := strings.ToLower(s)
		hits := 0
		for _, w := range queryWords {
			hits += strings.Count(lower, w)
		}
		if hits > 0 {
			candidates = append(candidates, scored{pos: i, hits: hits, text: s})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].hits > candidates[j].hits
	})
	if len(candidates) > c.tuning.MaxSnippets {
		candidates = candidates[:c.tuning.MaxSnippets]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].pos < candidates[j].pos
	})

	out := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, cand.text)
	}
	return out
}
