package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mindsift-ai/mindsift/internal/catalog"
)

// ErrUnparsableResponse marks provider output that could not be repaired
// into a structured result. The engine treats it like a provider failure.
var ErrUnparsableResponse = errors.New("unparsable provider response")

var codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// providerPayload is the structured record the provider is asked to emit.
type providerPayload struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
	Reasoning  string  `json:"reasoning"`
}

// Validator parses and repairs raw provider text against the catalog
// vocabulary.
type Validator struct {
	cat *catalog.Catalog
}

// NewValidator builds a validator over the given catalog.
func NewValidator(cat *catalog.Catalog) *Validator {
	return &Validator{cat: cat}
}

// Validate turns raw provider text into a Result. Markdown code fences are
// stripped before parsing. A condition outside the vocabulary is repaired by
// case-insensitive substring match; if that fails, the result is coerced to
// NoDisorder with confidence 0.5. An unknown severity becomes Moderate.
// Confidence is clamped into [0,1]; the clamp is reported via the second
// return value as a data-quality finding, not an error.
func (v *Validator) Validate(raw string) (*Result, bool, error) {
	payload, err := parsePayload(raw)
	if err != nil {
		return nil, false, err
	}

	condition, ok := v.cat.Canonical(payload.Condition)
	confidence := payload.Confidence
	if !ok {
		condition = catalog.NoDisorder
		confidence = 0.5
	}

	clamped := false
	if confidence < 0 {
		confidence, clamped = 0, true
	} else if confidence > 1 {
		confidence, clamped = 1, true
	}

	return &Result{
		Condition:  condition,
		Confidence: confidence,
		Severity:   ParseSeverity(payload.Severity),
		Reasoning:  strings.TrimSpace(payload.Reasoning),
	}, clamped, nil
}

func parsePayload(raw string) (*providerPayload, error) {
	content := strings.TrimSpace(raw)

	var payload providerPayload
	if err := json.Unmarshal([]byte(content), &payload); err == nil {
		return &payload, nil
	}

	if matches := codeFenceRegex.FindStringSubmatch(content); len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
			return &payload, nil
		}
	}

	// Last resort: the first {...} block anywhere in the text.
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err == nil {
				return &payload, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %.120s", ErrUnparsableResponse, content)
}
