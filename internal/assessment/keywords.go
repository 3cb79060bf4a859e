package assessment

import (
	"strings"

	"github.com/mindsift-ai/mindsift/internal/catalog"
)

// ScoreVector holds per-condition match counts in catalog order.
type ScoreVector struct {
	cat    *catalog.Catalog
	counts []int
}

// Count returns the score for the condition at position i.
func (v *ScoreVector) Count(i int) int { return v.counts[i] }

// Top returns the highest-scoring condition and its score. Ties resolve to
// the first condition in catalog order.
func (v *ScoreVector) Top() (string, int) {
	best := 0
	for i := 1; i < len(v.counts); i++ {
		if v.counts[i] > v.counts[best] {
			best = i
		}
	}
	if len(v.counts) == 0 {
		return catalog.NoDisorder, 0
	}
	return v.cat.Conditions()[best].Name, v.counts[best]
}

// Leaders returns up to n (name, score) pairs in descending score order,
// preserving catalog order among equals. Used for observability only.
func (v *ScoreVector) Leaders(n int) []ConditionScore {
	out := make([]ConditionScore, 0, len(v.counts))
	for i, c := range v.cat.Conditions() {
		out = append(out, ConditionScore{Name: c.Name, Score: v.counts[i]})
	}
	// Insertion sort keeps catalog order stable among equal scores.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ConditionScore is one entry of a score summary.
type ConditionScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// KeywordScorer is the deterministic rule engine. It matches trigger
// keywords against the text of questions that received a "yes" answer.
type KeywordScorer struct {
	cat *catalog.Catalog
}

// NewKeywordScorer builds a scorer over the given catalog.
func NewKeywordScorer(cat *catalog.Catalog) *KeywordScorer {
	return &KeywordScorer{cat: cat}
}

// Score counts keyword matches per condition. A question contributes at
// most one point to a given condition no matter how many of that
// condition's keywords it contains, but it may feed several different
// conditions at once. Questions answered "no" contribute nothing.
func (s *KeywordScorer) Score(questions []string, answers []Answer) *ScoreVector {
	v := &ScoreVector{cat: s.cat, counts: make([]int, s.cat.Len())}

	for i, q := range questions {
		if i >= len(answers) || !answers[i].Affirmative() {
			continue
		}
		text := strings.ToLower(q)
		for ci, cond := range s.cat.Conditions() {
			for _, kw := range cond.Keywords {
				if strings.Contains(text, kw) {
					v.counts[ci]++
					break
				}
			}
		}
	}
	return v
}
