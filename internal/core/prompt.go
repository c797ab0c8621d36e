package core

import (
	"fmt"
	"strings"

	"github.com/mikey/inbox-triage/internal/utils"
)

// DefaultSnippetLimit bounds the snippet characters shown per record
const DefaultSnippetLimit = 60

// Prompt is the model input for one categorization call. Ordinals is the
// only way back from the IDs the model sees to the original records.
type Prompt struct {
	Ordinals map[int]EmailRecord
	Count    int
	Text     string
}

// PromptBuilder serializes records into numbered prompt lines
type PromptBuilder struct {
	textProcessor *utils.TextProcessor
	snippetLimit  int
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder(textProcessor *utils.TextProcessor, snippetLimit int) *PromptBuilder {
	if snippetLimit <= 0 {
		snippetLimit = DefaultSnippetLimit
	}
	return &PromptBuilder{
		textProcessor: textProcessor,
		snippetLimit:  snippetLimit,
	}
}

// Build assigns ordinals 1..N in input order and renders one line per record
func (b *PromptBuilder) Build(records []EmailRecord) *Prompt {
	p := &Prompt{
		Ordinals: make(map[int]EmailRecord, len(records)),
		Count:    len(records),
	}

	lines := make([]string, 0, len(records))
	for i, r := range records {
		ordinal := i + 1
		p.Ordinals[ordinal] = r
		lines = append(lines, fmt.Sprintf("ID %d | From: %s | Sub: %s | Body: %s",
			ordinal,
			b.textProcessor.ProcessText(r.Sender, 0),
			b.textProcessor.ProcessText(r.Subject, 0),
			b.textProcessor.ProcessText(r.Snippet, b.snippetLimit),
		))
	}
	p.Text = strings.Join(lines, "\n")

	return p
}
