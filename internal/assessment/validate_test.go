package assessment

import (
	"errors"
	"testing"

	"github.com/mindsift-ai/mindsift/internal/catalog"
)

func TestValidatePassthrough(t *testing.T) {
	v := NewValidator(catalog.Default())
	res, clamped, err := v.Validate(`{"condition":"Depression","confidence":0.8,"severity":"Moderate","reasoning":"low mood endorsed"}`)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if clamped {
		t.Fatalf("in-range confidence should not clamp")
	}
	if res.Condition != "Depression" || res.Confidence != 0.8 || res.Severity != SeverityModerate {
		t.Fatalf("fields should pass through unchanged: %+v", res)
	}
	if res.Reasoning != "low mood endorsed" {
		t.Fatalf("reasoning lost: %q", res.Reasoning)
	}
}

func TestValidateStripsCodeFence(t *testing.T) {
	v := NewValidator(catalog.Default())
	raw := "```json\n{\"condition\":\"Anxiety\",\"confidence\":0.7,\"severity\":\"Mild\"}\n```"
	res, _, err := v.Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Condition != "Anxiety" || res.Severity != SeverityMild {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestValidateExtractsEmbeddedObject(t *testing.T) {
	v := NewValidator(catalog.Default())
	raw := `Sure! Here is the assessment: {"condition":"PTSD","confidence":0.6,"severity":"Moderate"} Hope that helps.`
	res, _, err := v.Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Condition != "PTSD" {
		t.Fatalf("expected PTSD, got %s", res.Condition)
	}
}

func TestValidateRepairsCondition(t *testing.T) {
	v := NewValidator(catalog.Default())
	res, _, err := v.Validate(`{"condition":"major depression","confidence":0.9,"severity":"Significant"}`)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Condition != "Depression" {
		t.Fatalf("substring repair failed: %s", res.Condition)
	}
	if res.Confidence != 0.9 {
		t.Fatalf("repair should keep confidence, got %v", res.Confidence)
	}
}

func TestValidateCoercesUnknownCondition(t *testing.T) {
	v := NewValidator(catalog.Default())
	res, _, err := v.Validate(`{"condition":"Flu","confidence":0.9,"severity":"Mild"}`)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Condition != catalog.NoDisorder {
		t.Fatalf("expected coercion to %q, got %q", catalog.NoDisorder, res.Condition)
	}
	if res.Confidence != 0.5 {
		t.Fatalf("coercion should clamp confidence to 0.5, got %v", res.Confidence)
	}
}

func TestValidateCoercesUnknownSeverity(t *testing.T) {
	v := NewValidator(catalog.Default())
	res, _, err := v.Validate(`{"condition":"OCD","confidence":0.6,"severity":"catastrophic"}`)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Severity != SeverityModerate {
		t.Fatalf("unknown severity should default to Moderate, got %s", res.Severity)
	}
}

func TestValidateClampsConfidence(t *testing.T) {
	v := NewValidator(catalog.Default())
	res, clamped, err := v.Validate(`{"condition":"Bipolar","confidence":1.4,"severity":"Significant"}`)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !clamped || res.Confidence != 1 {
		t.Fatalf("expected clamp to 1, got clamped=%t conf=%v", clamped, res.Confidence)
	}
}

func TestValidateUnparsable(t *testing.T) {
	v := NewValidator(catalog.Default())
	for _, raw := range []string{"", "I think the user may be depressed.", "{broken json"} {
		if _, _, err := v.Validate(raw); !errors.Is(err, ErrUnparsableResponse) {
			t.Fatalf("input %q: expected ErrUnparsableResponse, got %v", raw, err)
		}
	}
}
