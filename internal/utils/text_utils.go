package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// TextProcessor prepares free text for line-oriented prompts
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxRunes characters. A non-positive
// limit leaves the text untouched.
func (tp *TextProcessor) TruncateText(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:maxRunes])

	tp.logger.Debug("Text truncated",
		zap.Int("original_runes", len(runes)),
		zap.Int("max_runes", maxRunes))

	return truncated
}

// CollapseNewlines replaces every line break with a single space
func (tp *TextProcessor) CollapseNewlines(text string) string {
	return newlineReplacer.Replace(text)
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// Normalize converts text to Unicode NFC so composed and decomposed forms
// count the same when truncating
func (tp *TextProcessor) Normalize(text string) string {
	return norm.NFC.String(text)
}

// ProcessText sanitizes, normalizes and flattens text onto one line, then
// truncates it to maxRunes
func (tp *TextProcessor) ProcessText(text string, maxRunes int) string {
	clean := tp.Normalize(tp.SanitizeUTF8(text))
	return tp.TruncateText(tp.CollapseNewlines(clean), maxRunes)
}
