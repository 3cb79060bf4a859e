package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mindsift-ai/mindsift/internal/catalog"
	"github.com/mindsift-ai/mindsift/internal/redact"
)

// Trace records how an assessment was produced, for activation events and
// telemetry. It never reaches the respondent-facing response.
type Trace struct {
	Strategy        string
	Attempted       bool
	FailureReason   string
	Fallback        bool
	YesCount        int
	Total           int
	TopScores       []ConditionScore
	StrategyLatency time.Duration
}

// ReasonError lets strategy failures carry a short machine-readable reason
// (timeout, unreachable, http_502, ...) into traces and events.
type ReasonError interface {
	FailureReason() string
}

// Engine orchestrates one assessment: the optional reasoning strategy is
// attempted first and any failure falls back to the deterministic
// keyword path, which cannot fail. The engine is stateless across
// requests; the catalog is the only shared data and it is immutable.
type Engine struct {
	cat      *catalog.Catalog
	scorer   *KeywordScorer
	strategy Strategy // nil means rule-based only
}

// NewEngine builds an engine. Pass a nil strategy for the pure rule-based
// deployment profile.
func NewEngine(cat *catalog.Catalog, strategy Strategy) *Engine {
	return &Engine{
		cat:      cat,
		scorer:   NewKeywordScorer(cat),
		strategy: strategy,
	}
}

// Catalog exposes the active vocabulary (liveness reporting).
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// StrategyName returns the configured strategy name, or "rule-based".
func (e *Engine) StrategyName() string {
	if e.strategy == nil {
		return string(MethodRuleBased)
	}
	return e.strategy.Name()
}

// Assess runs the full state machine. The only error it returns is
// ErrInvalidInput; strategy failures are recovered internally and the
// chosen path is visible through the trace and the result's Method.
func (e *Engine) Assess(ctx context.Context, req *Request) (*Result, *Trace, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	trace := &Trace{
		YesCount: req.YesCount(),
		Total:    len(req.Answers),
	}

	if req.NoSymptoms {
		res := &Result{
			Condition:  catalog.NoDisorder,
			Confidence: 1.0,
			Severity:   SeverityNone,
			Verdict:    "You seem to be doing well! No significant mental health concerns detected.",
			Method:     MethodDirect,
		}
		return res, trace, nil
	}

	if e.strategy != nil {
		trace.Strategy = e.strategy.Name()
		trace.Attempted = true

		start := time.Now()
		res, err := e.strategy.Assess(ctx, req.Questions, req.Answers)
		trace.StrategyLatency = time.Since(start)

		if err == nil {
			res.Method = e.strategy.Method()
			Synthesize(res)
			return res, trace, nil
		}

		trace.FailureReason = failureReason(err)
		trace.Fallback = true
		redact.Logf("assessment: strategy %s failed (%s), using keyword fallback: %v",
			trace.Strategy, trace.FailureReason, err)
	}

	res := e.ruleBased(req, trace)
	Synthesize(res)
	return res, trace, nil
}

// ruleBased is the guaranteed terminal path: pure arithmetic over finite
// inputs, no way to fail.
func (e *Engine) ruleBased(req *Request, trace *Trace) *Result {
	scores := e.scorer.Score(req.Questions, req.Answers)
	condition, confidence, severity := Calibrate(scores, trace.YesCount, trace.Total)
	trace.TopScores = scores.Leaders(3)

	res := &Result{
		Condition:  condition,
		Confidence: confidence,
		Severity:   severity,
		Method:     MethodRuleBased,
		Note:       "Using rule-based assessment (lightweight mode)",
	}
	if trace.Fallback {
		res.Method = MethodKeywordFallback
		res.Note = "Reasoning provider unavailable; using rule-based assessment"
	}

	if condition == catalog.NoDisorder {
		res.Reasoning = "Keyword screening found no clear condition match."
	} else {
		_, top := scores.Top()
		res.Reasoning = fmt.Sprintf("Keyword screening matched %d of %d affirmative answers to %s.",
			top, trace.YesCount, condition)
	}
	return res
}

func failureReason(err error) string {
	var re ReasonError
	if errors.As(err, &re) {
		return re.FailureReason()
	}
	switch {
	case errors.Is(err, ErrUnparsableResponse):
		return "unparsable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
