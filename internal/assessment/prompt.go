package assessment

import (
	"fmt"
	"strings"

	"github.com/mindsift-ai/mindsift/internal/catalog"
)

// maxPromptItems bounds how many affirmative answers are restated in the
// prompt so a long questionnaire cannot blow up provider latency.
const maxPromptItems = 10

// BuildPrompt renders the reasoning-provider prompt. It is a pure function
// of (questions, answers): only affirmative pairs are restated, capped to
// the first maxPromptItems, and the provider is instructed to answer with a
// bare JSON object using the fixed vocabulary.
func BuildPrompt(cat *catalog.Catalog, questions []string, answers []Answer) string {
	var b strings.Builder

	b.WriteString("You are screening answers from a mental health questionnaire.\n")
	b.WriteString("The respondent answered \"yes\" to the following questions:\n")

	items := 0
	for i, q := range questions {
		if i >= len(answers) || !answers[i].Affirmative() {
			continue
		}
		items++
		fmt.Fprintf(&b, "%d. %s\n", items, strings.TrimSpace(q))
		if items >= maxPromptItems {
			break
		}
	}
	if items == 0 {
		b.WriteString("(none)\n")
	}

	b.WriteString("\nPick exactly one condition from this list:\n")
	for _, name := range cat.Names() {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	fmt.Fprintf(&b, "- %s\n", catalog.NoDisorder)

	b.WriteString("\nRespond with a single JSON object and nothing else:\n")
	b.WriteString(`{"condition": "<one of the list>", "confidence": <0.0-1.0>, "severity": "Minimal|Mild|Moderate|Significant", "reasoning": "<one sentence>"}`)
	b.WriteString("\nDo not wrap the JSON in markdown or add any prose.")

	return b.String()
}
