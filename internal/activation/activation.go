// Package activation emits one structured event per assessment for
// downstream observation: stdout, JSONL files, or a webhook receiver.
// Events never reach the respondent-facing response.
package activation

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindsift-ai/mindsift/internal/assessment"
	"github.com/mindsift-ai/mindsift/internal/redact"
)

// Decision names the path the engine took for a request.
type Decision string

const (
	DecisionDirect    Decision = "direct"     // no-symptoms short circuit
	DecisionStrategy  Decision = "strategy"   // reasoning strategy succeeded
	DecisionFallback  Decision = "fallback"   // strategy failed, keyword path used
	DecisionRuleBased Decision = "rule_based" // no strategy configured
)

// Logging levels control how much questionnaire text enters the event.
const (
	LevelMetadata = "metadata"
	LevelRedacted = "redacted"
	LevelFull     = "full"
)

// Outcome is the screening result as recorded in the event. Confidence is
// kept at full precision here; rounding is a response-surface concern.
type Outcome struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
	Method     string  `json:"method"`
	Note       string  `json:"note,omitempty"`
}

// Scoring carries the keyword evidence behind rule-based outcomes.
type Scoring struct {
	YesCount  int                         `json:"yes_count"`
	Total     int                         `json:"total"`
	TopScores []assessment.ConditionScore `json:"top_scores,omitempty"`
}

// TimingMs breaks down where a request spent its time.
type TimingMs struct {
	Strategy float64 `json:"strategy"`
	Total    float64 `json:"total"`
}

// Event is the canonical activation payload.
type Event struct {
	Version       string    `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
	Strategy      string    `json:"strategy,omitempty"`
	Model         string    `json:"model,omitempty"`
	Decision      Decision  `json:"decision"`
	FailureReason string    `json:"failure_reason,omitempty"`
	Outcome       Outcome   `json:"outcome"`
	Scoring       Scoring   `json:"scoring"`
	PromptPreview string    `json:"prompt_preview,omitempty"`
	TimingMs      TimingMs  `json:"timing_ms"`
}

// BuildParams collects the inputs needed to assemble an event.
type BuildParams struct {
	Request      *assessment.Request
	Result       *assessment.Result
	Trace        *assessment.Trace
	Model        string
	LoggingLevel string
	RequestID    string
	Total        time.Duration
}

// BuildEvent assembles the canonical event for one completed assessment.
func BuildEvent(params BuildParams) *Event {
	if params.Result == nil || params.Trace == nil {
		return nil
	}
	res, trace := params.Result, params.Trace

	return &Event{
		Version:       "1",
		Timestamp:     time.Now().UTC(),
		RequestID:     ensureRequestID(params.RequestID),
		Strategy:      trace.Strategy,
		Model:         params.Model,
		Decision:      deriveDecision(res, trace),
		FailureReason: trace.FailureReason,
		Outcome: Outcome{
			Condition:  res.Condition,
			Confidence: res.Confidence,
			Severity:   string(res.Severity),
			Method:     string(res.Method),
			Note:       res.Note,
		},
		Scoring: Scoring{
			YesCount:  trace.YesCount,
			Total:     trace.Total,
			TopScores: trace.TopScores,
		},
		PromptPreview: buildPreview(params.LoggingLevel, params.Request),
		TimingMs: TimingMs{
			Strategy: durationMillis(trace.StrategyLatency),
			Total:    durationMillis(params.Total),
		},
	}
}

// LogEvent prints a redacted JSON representation of the event.
func LogEvent(ev *Event) {
	if ev == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		redact.Logf("activation: failed to marshal event: %v", err)
		return
	}
	redact.Logf("activation: %s", string(data))
}

func deriveDecision(res *assessment.Result, trace *assessment.Trace) Decision {
	switch {
	case res.Method == assessment.MethodDirect:
		return DecisionDirect
	case trace.Fallback:
		return DecisionFallback
	case trace.Attempted:
		return DecisionStrategy
	default:
		return DecisionRuleBased
	}
}

func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// buildPreview restates the affirmative questions at the configured logging
// level. Metadata level keeps questionnaire text out of events entirely.
func buildPreview(level string, req *assessment.Request) string {
	if req == nil {
		return ""
	}
	if level == "" {
		level = LevelMetadata
	}
	if level != LevelRedacted && level != LevelFull {
		return ""
	}

	var parts []string
	for i, q := range req.Questions {
		if i >= len(req.Answers) || !req.Answers[i].Affirmative() {
			continue
		}
		parts = append(parts, strings.TrimSpace(q))
	}
	preview := truncate(strings.Join(parts, "; "), 500)
	return redact.String(preview)
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
