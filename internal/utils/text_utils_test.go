package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTextProcessor_ProcessText(t *testing.T) {
	tp := NewTextProcessor(nil)

	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short text untouched",
			input:    "hello",
			max:      60,
			expected: "hello",
		},
		{
			name:     "newlines collapsed",
			input:    "line one\nline two\r\nline three\rend",
			max:      60,
			expected: "line one line two line three end",
		},
		{
			name:     "truncated to rune limit",
			input:    strings.Repeat("a", 100),
			max:      60,
			expected: strings.Repeat("a", 60),
		},
		{
			name:     "multibyte runes counted as characters",
			input:    strings.Repeat("é", 70),
			max:      60,
			expected: strings.Repeat("é", 60),
		},
		{
			name:     "decomposed form normalized before counting",
			input:    "e\u0301",
			max:      1,
			expected: "\u00e9",
		},
		{
			name:     "no limit",
			input:    strings.Repeat("b", 100),
			max:      0,
			expected: strings.Repeat("b", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tp.ProcessText(tt.input, tt.max))
		})
	}
}

func TestTextProcessor_SanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(nil)

	out := tp.SanitizeUTF8("ok\xffok")
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "okok", out)
}
