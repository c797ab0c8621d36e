package core

import (
	"strings"
	"testing"

	"github.com/mikey/inbox-triage/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilder_Build(t *testing.T) {
	b := NewPromptBuilder(utils.NewTextProcessor(nil), 0)

	batch := []EmailRecord{
		{ID: "provider-abc", Sender: "Alice", Subject: "Interview", Snippet: "Can you join\non Friday?"},
		{ID: "provider-def", Sender: "Bob", Subject: "Sale", Snippet: strings.Repeat("x", 100)},
	}

	p := b.Build(batch)

	require.Equal(t, 2, p.Count)
	assert.Equal(t, batch[0], p.Ordinals[1])
	assert.Equal(t, batch[1], p.Ordinals[2])

	lines := strings.Split(p.Text, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID 1 | From: Alice | Sub: Interview | Body: Can you join on Friday?", lines[0])
	assert.Equal(t, "ID 2 | From: Bob | Sub: Sale | Body: "+strings.Repeat("x", 60), lines[1])
	assert.NotContains(t, p.Text, "provider-", "provider ids are never shown to the model")
}

func TestPromptBuilder_MultilineSubjectStaysOnOneLine(t *testing.T) {
	b := NewPromptBuilder(utils.NewTextProcessor(nil), 60)

	p := b.Build([]EmailRecord{{ID: "m1", Sender: "A", Subject: "two\nlines", Snippet: ""}})

	assert.Equal(t, "ID 1 | From: A | Sub: two lines | Body: ", p.Text)
}

func TestPromptBuilder_Empty(t *testing.T) {
	p := NewPromptBuilder(utils.NewTextProcessor(nil), 60).Build(nil)

	assert.Equal(t, 0, p.Count)
	assert.Empty(t, p.Ordinals)
	assert.Empty(t, p.Text)
}
