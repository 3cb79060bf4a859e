package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Options tunes generation. Zero values fall back to conservative defaults
// suited to structured classification output.
type Options struct {
	Temperature float64
	TopP        float64
	NumPredict  int
}

// Client talks to an Ollama-compatible generation endpoint.
type Client struct {
	baseURL          string
	model            string
	opts             Options
	client           *http.Client
	probeTimeout     time.Duration
	maxResponseBytes int64
}

// New creates a client. timeout bounds the full generation call;
// probeTimeout bounds the liveness probe only.
func New(baseURL, model string, timeout, probeTimeout time.Duration, opts Options) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.1
	}
	if opts.TopP == 0 {
		opts.TopP = 0.9
	}
	if opts.NumPredict == 0 {
		opts.NumPredict = 200
	}

	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		model:            model,
		opts:             opts,
		probeTimeout:     probeTimeout,
		maxResponseBytes: 1 << 20,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Complete issues one blocking generation call. It never retries; a slow
// backend past the timeout is reported as ErrTimeout and abandoned.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.opts.Temperature,
			TopP:        c.opts.TopP,
			NumPredict:  c.opts.NumPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return "", httpError(resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, c.maxResponseBytes+1)
	respBody, err := io.ReadAll(limited)
	if err != nil {
		return "", unreachableError(fmt.Errorf("read generate response: %w", err))
	}
	if int64(len(respBody)) > c.maxResponseBytes {
		return "", unreachableError(fmt.Errorf("generate response exceeded limit (%d bytes)", c.maxResponseBytes))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", unreachableError(fmt.Errorf("decode generate response: %w", err))
	}

	return genResp.Response, nil
}

// Models lists available model identifiers. Liveness reporting only; the
// assessment path never calls this.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create tags request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, httpError(resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxResponseBytes)).Decode(&tags); err != nil {
		return nil, unreachableError(fmt.Errorf("decode tags response: %w", err))
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutError(err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeoutError(err)
	}
	return unreachableError(err)
}
