package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindsift-ai/mindsift/internal/catalog"
)

// Strategy is a swappable reasoning backend. A strategy may fail; the
// engine recovers every strategy failure through the rule-based path.
type Strategy interface {
	Name() string
	Method() Method
	Assess(ctx context.Context, questions []string, answers []Answer) (*Result, error)
}

// Reasoner is the text-completion surface the provider strategy needs.
// *provider.Client satisfies it.
type Reasoner interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderStrategy asks a generative reasoning provider to pick a condition
// and validates its raw text output against the vocabulary.
type ProviderStrategy struct {
	reasoner  Reasoner
	validator *Validator
	cat       *catalog.Catalog
}

// NewProviderStrategy wires a reasoner to the validator.
func NewProviderStrategy(cat *catalog.Catalog, reasoner Reasoner) *ProviderStrategy {
	return &ProviderStrategy{
		reasoner:  reasoner,
		validator: NewValidator(cat),
		cat:       cat,
	}
}

func (s *ProviderStrategy) Name() string   { return "reasoning-provider" }
func (s *ProviderStrategy) Method() Method { return MethodReasoningProvider }

func (s *ProviderStrategy) Assess(ctx context.Context, questions []string, answers []Answer) (*Result, error) {
	prompt := BuildPrompt(s.cat, questions, answers)

	raw, err := s.reasoner.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	res, clamped, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}
	if clamped {
		res.Note = "provider confidence was out of range and has been clamped"
	}
	return res, nil
}

// Labeler is the local-classifier surface the classifier strategy needs.
// *classifier.Model satisfies it.
type Labeler interface {
	Labels() []string
	Classify(text string) ([]float32, error)
}

// ClassifierStrategy runs a pretrained text classifier over the combined
// questionnaire text and picks the highest-probability label. Severity
// comes from the plain yes/no ratio, independent of the probabilities.
type ClassifierStrategy struct {
	labeler Labeler
}

// NewClassifierStrategy wraps a loaded classifier model.
func NewClassifierStrategy(labeler Labeler) *ClassifierStrategy {
	return &ClassifierStrategy{labeler: labeler}
}

func (s *ClassifierStrategy) Name() string   { return "classifier" }
func (s *ClassifierStrategy) Method() Method { return MethodClassifier }

func (s *ClassifierStrategy) Assess(ctx context.Context, questions []string, answers []Answer) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	probs, err := s.labeler.Classify(combineText(questions, answers))
	if err != nil {
		return nil, err
	}
	labels := s.labeler.Labels()
	if len(probs) == 0 || len(probs) > len(labels) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d labels", len(probs), len(labels))
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}

	yes := 0
	for _, a := range answers {
		if a.Affirmative() {
			yes++
		}
	}
	ratio := 0.0
	if len(answers) > 0 {
		ratio = float64(yes) / float64(len(answers))
	}

	return &Result{
		Condition:  labels[best],
		Confidence: float64(probs[best]),
		Severity:   SeverityForRatio(ratio),
		Reasoning:  fmt.Sprintf("Classifier assigned probability %.2f to %s.", probs[best], labels[best]),
	}, nil
}

// combineText flattens the answered questionnaire into the single text
// block the classifier was trained on.
func combineText(questions []string, answers []Answer) string {
	var b strings.Builder
	for i, q := range questions {
		answer := string(AnswerNo)
		if i < len(answers) && answers[i].Affirmative() {
			answer = string(AnswerYes)
		}
		fmt.Fprintf(&b, "Q: %s A: %s\n", strings.TrimSpace(q), answer)
	}
	return b.String()
}
