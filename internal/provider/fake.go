package provider

import (
	"context"
	"time"
)

// Fake is a test double satisfying assessment.Reasoner.
type Fake struct {
	Response string
	Err      error
	Delay    time.Duration
	Prompts  []string
}

// NewFake returns a fake that always answers with response.
func NewFake(response string) *Fake {
	return &Fake{Response: response}
}

func (f *Fake) Complete(ctx context.Context, prompt string) (string, error) {
	f.Prompts = append(f.Prompts, prompt)
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", timeoutError(ctx.Err())
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}
