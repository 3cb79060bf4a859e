package activation

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mindsift-ai/mindsift/internal/assessment"
)

func sampleEvent(id string) *Event {
	return &Event{
		Version:   "1",
		Timestamp: time.Now(),
		RequestID: id,
		Strategy:  "reasoning-provider",
		Decision:  DecisionStrategy,
		Outcome: Outcome{
			Condition:  "Depression",
			Confidence: 0.8,
			Severity:   "Moderate",
			Method:     "reasoning-provider",
		},
		Scoring: Scoring{YesCount: 3, Total: 5},
	}
}

func TestBuildEventDecisions(t *testing.T) {
	res := &assessment.Result{
		Condition:  "Anxiety",
		Confidence: 0.7,
		Severity:   assessment.SeverityMild,
		Method:     assessment.MethodReasoningProvider,
	}

	cases := []struct {
		name   string
		res    *assessment.Result
		trace  *assessment.Trace
		expect Decision
	}{
		{"strategy success", res, &assessment.Trace{Attempted: true, Strategy: "reasoning-provider"}, DecisionStrategy},
		{"fallback", res, &assessment.Trace{Attempted: true, Fallback: true, FailureReason: "timeout"}, DecisionFallback},
		{"rule based", res, &assessment.Trace{}, DecisionRuleBased},
		{"direct", &assessment.Result{Method: assessment.MethodDirect}, &assessment.Trace{}, DecisionDirect},
	}
	for _, tc := range cases {
		ev := BuildEvent(BuildParams{Result: tc.res, Trace: tc.trace})
		if ev == nil {
			t.Fatalf("%s: nil event", tc.name)
		}
		if ev.Decision != tc.expect {
			t.Fatalf("%s: decision %s, want %s", tc.name, ev.Decision, tc.expect)
		}
		if ev.RequestID == "" {
			t.Fatalf("%s: missing generated request id", tc.name)
		}
	}
}

func TestBuildEventPreviewLevels(t *testing.T) {
	req := &assessment.Request{
		Questions: []string{"Do you feel hopeless?", "Do you sleep well?"},
		Answers:   []assessment.Answer{"yes", "no"},
	}
	res := &assessment.Result{Method: assessment.MethodRuleBased}
	trace := &assessment.Trace{}

	metadata := BuildEvent(BuildParams{Request: req, Result: res, Trace: trace, LoggingLevel: LevelMetadata})
	if metadata.PromptPreview != "" {
		t.Fatalf("metadata level must not carry questionnaire text: %q", metadata.PromptPreview)
	}

	full := BuildEvent(BuildParams{Request: req, Result: res, Trace: trace, LoggingLevel: LevelFull})
	if !strings.Contains(full.PromptPreview, "hopeless") {
		t.Fatalf("full level should restate affirmatives: %q", full.PromptPreview)
	}
	if strings.Contains(full.PromptPreview, "sleep well") {
		t.Fatalf("preview must only carry affirmative questions: %q", full.PromptPreview)
	}
}

func TestBuildEventRedactsPreview(t *testing.T) {
	req := &assessment.Request{
		Questions: []string{"Does mail to jane@example.com still bounce?"},
		Answers:   []assessment.Answer{"yes"},
	}
	ev := BuildEvent(BuildParams{
		Request:      req,
		Result:       &assessment.Result{Method: assessment.MethodRuleBased},
		Trace:        &assessment.Trace{},
		LoggingLevel: LevelRedacted,
	})
	if strings.Contains(ev.PromptPreview, "jane@example.com") {
		t.Fatalf("preview leaked an email address: %q", ev.PromptPreview)
	}
}

func TestFileSinkWritesJSONL(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "events.jsonl")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("file sink: %v", err)
	}

	if err := sink.Deliver(context.Background(), sampleEvent("req-1")); err != nil {
		t.Fatalf("deliver 1: %v", err)
	}
	if err := sink.Deliver(context.Background(), sampleEvent("req-2")); err != nil {
		t.Fatalf("deliver 2: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close sink: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var decoded Event
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("unmarshal jsonl line: %v", err)
	}
	if decoded.RequestID != "req-1" {
		t.Fatalf("expected request_id req-1, got %s", decoded.RequestID)
	}
	if decoded.Outcome.Condition != "Depression" {
		t.Fatalf("outcome lost in round trip: %+v", decoded.Outcome)
	}
}

func TestWebhookSinkHandlesNon2xx(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("fail"))
	}))

	sink, err := NewWebhookSink(srv.URL, map[string]string{"X-Test": "1"}, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("webhook sink: %v", err)
	}
	if err := sink.Deliver(context.Background(), sampleEvent("req-1")); err == nil {
		t.Fatalf("expected non-2xx to return error")
	} else if !strings.Contains(err.Error(), "status") {
		t.Fatalf("error should mention status, got %v", err)
	}
}

func TestEmitterDropsWhenQueueFull(t *testing.T) {
	wait := make(chan struct{})
	sink := &blockingSink{wait: wait}
	em := NewEmitter(EmitterConfig{QueueSize: 1, Workers: 1, ShutdownTimeout: time.Second}, []Sink{sink})

	ev := sampleEvent("r1")
	em.Emit(context.Background(), ev)
	em.Emit(context.Background(), ev)
	em.Emit(context.Background(), ev)

	metrics := em.MetricsSnapshot()
	if metrics.Dropped() == 0 {
		t.Fatalf("expected dropped events when queue is full")
	}

	close(wait)
	em.Close(context.Background())
}

func TestEmitterWebhookIntegration(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Event
	)
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			mu.Lock()
			received = append(received, ev)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusOK)
	}))

	sink, err := NewWebhookSink(srv.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("webhook sink: %v", err)
	}
	em := NewEmitter(EmitterConfig{QueueSize: 8, Workers: 1, ShutdownTimeout: time.Second}, []Sink{sink})
	defer em.Close(context.Background())

	for i := 0; i < 5; i++ {
		em.Emit(context.Background(), sampleEvent("integration"))
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		if len(received) >= 5 {
			mu.Unlock()
			break
		}
		mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for webhook events, got %d", len(received))
		}
		time.Sleep(20 * time.Millisecond)
	}

	metrics := em.MetricsSnapshot()
	if metrics.SinkSuccess(sink.Name()) == 0 {
		t.Fatalf("expected sink success counter to increase")
	}
	if metrics.Dropped() != 0 {
		t.Fatalf("did not expect dropped events, got %d", metrics.Dropped())
	}
}

type blockingSink struct {
	wait chan struct{}
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Deliver(context.Context, *Event) error {
	<-s.wait
	return nil
}

func (s *blockingSink) Close(context.Context) error {
	if s.wait != nil {
		select {
		case <-s.wait:
		default:
			close(s.wait)
		}
	}
	return nil
}

func newTestServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping: cannot open listener: %v", err)
	}
	srv := httptest.NewUnstartedServer(h)
	srv.Listener = ln
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}
