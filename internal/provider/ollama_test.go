package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompleteSendsOllamaRequest(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": `{"condition":"Depression"}`})
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3", time.Second, time.Second, Options{})
	out, err := c.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "Depression") {
		t.Fatalf("unexpected response text: %s", out)
	}
	if got.Model != "llama3" || got.Stream {
		t.Fatalf("bad wire request: %+v", got)
	}
	if got.Options.Temperature != 0.1 || got.Options.NumPredict != 200 {
		t.Fatalf("default options not applied: %+v", got.Options)
	}
}

func TestCompleteClassifiesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3", time.Second, time.Second, Options{})
	_, err := c.Complete(context.Background(), "hello")
	if !errors.Is(err, ErrHTTP) {
		t.Fatalf("expected ErrHTTP, got %v", err)
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Status != http.StatusBadGateway || perr.FailureReason() != "http_502" {
		t.Fatalf("bad classification: %+v", perr)
	}
}

func TestCompleteClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3", 50*time.Millisecond, time.Second, Options{})
	_, err := c.Complete(context.Background(), "hello")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestCompleteClassifiesUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "llama3", time.Second, time.Second, Options{})
	_, err := c.Complete(context.Background(), "hello")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3"}, {"name": "mistral"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3", time.Second, time.Second, Options{})
	names, err := c.Models(context.Background())
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if len(names) != 2 || names[0] != "llama3" {
		t.Fatalf("unexpected model list: %v", names)
	}
}
