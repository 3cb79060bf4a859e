// Package assessment implements the screening decision engine: the
// rule-based keyword scorer, confidence calibration, reasoning-strategy
// orchestration with deterministic fallback, and verdict synthesis.
package assessment

import (
	"errors"
	"fmt"
	"strings"
)

// Answer is a yes/no response positionally paired with a question.
type Answer string

const (
	AnswerYes Answer = "yes"
	AnswerNo  Answer = "no"
)

// Affirmative reports whether the answer counts as a symptom endorsement.
// Anything other than "yes" (case-insensitive) is treated as "no".
func (a Answer) Affirmative() bool {
	return strings.EqualFold(strings.TrimSpace(string(a)), string(AnswerYes))
}

// Severity is the tier reported alongside a condition label.
type Severity string

const (
	SeverityMinimal     Severity = "Minimal"
	SeverityMild        Severity = "Mild"
	SeverityModerate    Severity = "Moderate"
	SeveritySignificant Severity = "Significant"
	SeverityUncertain   Severity = "Uncertain"
	// SeverityNone is reported only on the no-symptoms direct path.
	SeverityNone Severity = "No symptoms detected"
)

// ParseSeverity maps free text onto a Severity, coercing unknown values to
// SeverityModerate as the default mid-tier.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "minimal":
		return SeverityMinimal
	case "mild":
		return SeverityMild
	case "moderate":
		return SeverityModerate
	case "significant", "severe":
		return SeveritySignificant
	case "uncertain":
		return SeverityUncertain
	default:
		return SeverityModerate
	}
}

// phrase is the human wording used inside verdict sentences.
func (s Severity) phrase() string {
	switch s {
	case SeverityMinimal:
		return "Minimal symptoms"
	case SeverityMild:
		return "Mild signs detected"
	case SeverityModerate:
		return "Moderate symptoms present"
	case SeveritySignificant:
		return "Significant symptoms detected"
	case SeverityUncertain:
		return "Uncertain - general stress possible"
	default:
		return string(s)
	}
}

// Method identifies which path produced a result.
type Method string

const (
	MethodDirect            Method = "direct"
	MethodRuleBased         Method = "rule-based"
	MethodReasoningProvider Method = "reasoning-provider"
	MethodKeywordFallback   Method = "keyword-fallback"
	MethodClassifier        Method = "classifier"
)

// Result is the immutable output of one assessment.
type Result struct {
	Condition      string
	Confidence     float64
	Severity       Severity
	Verdict        string
	Reasoning      string
	Recommendation string
	Method         Method
	Note           string
}

// Request carries one screening submission.
type Request struct {
	Questions  []string
	Answers    []Answer
	NoSymptoms bool
}

// ErrInvalidInput marks malformed submissions. It is the only assessment
// error surfaced to callers; strategy failures are recovered internally.
var ErrInvalidInput = errors.New("invalid input")

// Validate checks the pairing invariant. The no-symptoms shortcut bypasses
// scoring entirely, so it tolerates empty arrays.
func (r *Request) Validate() error {
	if r.NoSymptoms {
		return nil
	}
	if len(r.Questions) == 0 || len(r.Answers) == 0 {
		return fmt.Errorf("%w: questions and answers are required", ErrInvalidInput)
	}
	if len(r.Questions) != len(r.Answers) {
		return fmt.Errorf("%w: got %d questions and %d answers", ErrInvalidInput, len(r.Questions), len(r.Answers))
	}
	return nil
}

// YesCount returns the number of affirmative answers.
func (r *Request) YesCount() int {
	n := 0
	for _, a := range r.Answers {
		if a.Affirmative() {
			n++
		}
	}
	return n
}
