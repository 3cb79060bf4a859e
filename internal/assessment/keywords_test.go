package assessment

import (
	"testing"

	"github.com/mindsift-ai/mindsift/internal/catalog"
)

func score(t *testing.T, v *ScoreVector, name string) int {
	t.Helper()
	for i, c := range catalog.Default().Conditions() {
		if c.Name == name {
			return v.Count(i)
		}
	}
	t.Fatalf("unknown condition %s", name)
	return 0
}

func TestScoreMatchesAffirmativeOnly(t *testing.T) {
	s := NewKeywordScorer(catalog.Default())
	v := s.Score(
		[]string{"I feel hopeless often", "I sleep fine"},
		[]Answer{"yes", "no"},
	)
	if got := score(t, v, "Depression"); got != 1 {
		t.Fatalf("Depression score = %d, expected 1", got)
	}
	if got := score(t, v, "Sleep Disorder"); got != 0 {
		t.Fatalf("Sleep Disorder should ignore a question answered no, got %d", got)
	}
}

func TestScoreOncePerConditionPerQuestion(t *testing.T) {
	s := NewKeywordScorer(catalog.Default())
	// Question carries several Depression keywords; still one point.
	v := s.Score(
		[]string{"I feel sad, hopeless, empty and worthless"},
		[]Answer{"yes"},
	)
	if got := score(t, v, "Depression"); got != 1 {
		t.Fatalf("keyword-dense question should count once, got %d", got)
	}
}

func TestScoreQuestionCanFeedMultipleConditions(t *testing.T) {
	s := NewKeywordScorer(catalog.Default())
	// "sleep" and "tired" sit in both Depression and Sleep Disorder sets.
	v := s.Score(
		[]string{"I am tired and my sleep is poor"},
		[]Answer{"yes"},
	)
	if got := score(t, v, "Depression"); got != 1 {
		t.Fatalf("Depression score = %d, expected 1", got)
	}
	if got := score(t, v, "Sleep Disorder"); got != 1 {
		t.Fatalf("Sleep Disorder score = %d, expected 1", got)
	}
}

func TestScoreNeverExceedsYesCount(t *testing.T) {
	s := NewKeywordScorer(catalog.Default())
	questions := []string{
		"I feel sad and hopeless",
		"I feel empty and worthless",
		"I lost interest and pleasure",
	}
	answers := []Answer{"yes", "yes", "no"}
	v := s.Score(questions, answers)
	for i, c := range catalog.Default().Conditions() {
		if v.Count(i) > 2 {
			t.Fatalf("%s scored %d with only 2 yes answers", c.Name, v.Count(i))
		}
	}
}

func TestScoreEmptyAnswers(t *testing.T) {
	s := NewKeywordScorer(catalog.Default())
	v := s.Score(nil, nil)
	name, top := v.Top()
	if top != 0 {
		t.Fatalf("empty input should score zero, got %s=%d", name, top)
	}
}

func TestLeadersStableOrder(t *testing.T) {
	s := NewKeywordScorer(catalog.Default())
	v := s.Score(
		[]string{"I feel anxious and hopeless"},
		[]Answer{"yes"},
	)
	leaders := v.Leaders(3)
	if len(leaders) != 3 {
		t.Fatalf("expected 3 leaders, got %d", len(leaders))
	}
	// Depression and Anxiety tie at 1; Depression comes first in catalog order.
	if leaders[0].Name != "Depression" || leaders[1].Name != "Anxiety" {
		t.Fatalf("unexpected leader order: %+v", leaders)
	}
}
