// Package catalog holds the fixed condition vocabulary and the trigger
// keywords used by the rule-based scorer. The catalog is loaded once at
// startup and never mutated afterwards, so it is safe for concurrent readers.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoDisorder is the label reported when screening finds no clear condition.
const NoDisorder = "No disorder detected"

// Condition pairs a condition name with its lowercase trigger keywords.
type Condition struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Catalog is an ordered, immutable set of conditions. Iteration order is
// significant: scoring ties resolve to the first condition in this order.
type Catalog struct {
	conditions []Condition
	index      map[string]int // lowercase name -> position
}

// Default returns the built-in screening profile.
func Default() *Catalog {
	return build([]Condition{
		{Name: "Depression", Keywords: []string{"sad", "hopeless", "empty", "interest", "pleasure", "tired", "energy", "sleep", "worthless", "guilt"}},
		{Name: "Anxiety", Keywords: []string{"nervous", "anxious", "edge", "worry", "panic", "restless", "tense", "fear", "relax"}},
		{Name: "ADHD", Keywords: []string{"focus", "attention", "distracted", "concentrate", "organize", "forget", "hyperactive", "impulsive"}},
		{Name: "OCD", Keywords: []string{"repetitive", "thoughts", "compelled", "ritual", "intrusive", "control"}},
		{Name: "PTSD", Keywords: []string{"flashback", "trauma", "nightmare", "intrusive", "memories", "trigger", "upset", "avoid"}},
		{Name: "Bipolar", Keywords: []string{"energy", "manic", "high", "mood swings", "elevated"}},
		{Name: "Schizophrenia", Keywords: []string{"hear", "see", "hallucination", "voices", "paranoid"}},
		{Name: "Sleep Disorder", Keywords: []string{"sleep", "insomnia", "tired", "fatigue", "rest"}},
	})
}

// Load reads a deployment profile from a YAML file. The file holds a
// `conditions` list; order in the file becomes the tie-break order.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var profile struct {
		Conditions []Condition `yaml:"conditions"`
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(profile.Conditions) == 0 {
		return nil, fmt.Errorf("catalog %s defines no conditions", path)
	}

	for i, c := range profile.Conditions {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("catalog %s: condition %d has no name", path, i)
		}
		if len(c.Keywords) == 0 {
			return nil, fmt.Errorf("catalog %s: condition %q has no keywords", path, c.Name)
		}
	}

	return build(profile.Conditions), nil
}

func build(conditions []Condition) *Catalog {
	cs := make([]Condition, len(conditions))
	idx := make(map[string]int, len(conditions))
	for i, c := range conditions {
		keywords := make([]string, len(c.Keywords))
		for j, k := range c.Keywords {
			keywords[j] = strings.ToLower(strings.TrimSpace(k))
		}
		cs[i] = Condition{Name: c.Name, Keywords: keywords}
		idx[strings.ToLower(c.Name)] = i
	}
	return &Catalog{conditions: cs, index: idx}
}

// Len returns the number of conditions.
func (c *Catalog) Len() int { return len(c.conditions) }

// Conditions returns the conditions in tie-break order. Callers must not
// modify the returned slice.
func (c *Catalog) Conditions() []Condition { return c.conditions }

// Names returns the condition names in tie-break order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.conditions))
	for i, cond := range c.conditions {
		names[i] = cond.Name
	}
	return names
}

// Contains reports whether name is in the vocabulary (case-insensitive).
// NoDisorder is always a member.
func (c *Catalog) Contains(name string) bool {
	if strings.EqualFold(strings.TrimSpace(name), NoDisorder) {
		return true
	}
	_, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Canonical maps a raw label onto its canonical vocabulary spelling.
// It tries an exact case-insensitive match first, then a case-insensitive
// substring match in either direction. The second return value reports
// whether a vocabulary member was found.
func (c *Catalog) Canonical(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if strings.EqualFold(trimmed, NoDisorder) {
		return NoDisorder, true
	}

	lower := strings.ToLower(trimmed)
	if i, ok := c.index[lower]; ok {
		return c.conditions[i].Name, true
	}

	for _, cond := range c.conditions {
		nameLower := strings.ToLower(cond.Name)
		if strings.Contains(lower, nameLower) || strings.Contains(nameLower, lower) {
			return cond.Name, true
		}
	}
	return "", false
}
