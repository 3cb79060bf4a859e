package assessment

import (
	"fmt"

	"github.com/mindsift-ai/mindsift/internal/catalog"
)

// Recommendation wording escalates with confidence. The bands apply
// regardless of whether the confidence came from a strategy or the
// rule-based path.
const (
	recommendEvaluation   = "Consider speaking with a mental health professional for proper evaluation."
	recommendConsultation = "This is a preliminary assessment. Professional consultation is recommended."
	recommendIfConcerned  = "Results are uncertain. If you're concerned, please consult a professional."
)

// Synthesize fills the verdict and recommendation fields of a result.
func Synthesize(r *Result) {
	if r.Condition == catalog.NoDisorder {
		if r.Severity == SeverityUncertain {
			r.Verdict = fmt.Sprintf("No clear condition detected. %s. If you're concerned, please consult a professional.", r.Severity.phrase())
			r.Recommendation = recommendIfConcerned
			return
		}
		r.Verdict = "You seem to be doing well! Only minor concerns detected. Consider self-care practices."
		r.Recommendation = "Consider self-care practices."
		return
	}

	r.Recommendation = recommendationFor(r.Confidence)
	r.Verdict = fmt.Sprintf("%s. Based on your responses, you may be experiencing symptoms related to %s. %s",
		r.Severity.phrase(), r.Condition, r.Recommendation)
}

func recommendationFor(confidence float64) string {
	switch {
	case confidence > 0.7:
		return recommendEvaluation
	case confidence > 0.5:
		return recommendConsultation
	default:
		return recommendIfConcerned
	}
}
