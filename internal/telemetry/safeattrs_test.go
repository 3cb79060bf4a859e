package telemetry

import (
	"testing"
)

func TestSafeAttributesFiltersSensitiveKeys(t *testing.T) {
	kvs := map[string]interface{}{
		"question_text": "should drop",
		"prompt":        "drop",
		"api_key":       "sk-123",
		"token":         "abc",
		"method":        "rule-based",
		"long_string":   string(make([]byte, 600)),
		"yes_count":     3,
		"authorization": "secret",
	}

	attrs := SafeAttributes(kvs)
	for _, a := range attrs {
		switch a.Key {
		case "question_text", "prompt", "api_key", "token", "authorization":
			t.Fatalf("unexpected unsafe attribute %s", a.Key)
		case "long_string":
			t.Fatalf("expected long string to be skipped")
		}
	}

	var sawMethod, sawYes bool
	for _, a := range attrs {
		if a.Key == "method" {
			sawMethod = true
		}
		if a.Key == "yes_count" {
			sawYes = true
		}
	}
	if !sawMethod || !sawYes {
		t.Fatalf("safe attributes were dropped: %v", attrs)
	}
}
