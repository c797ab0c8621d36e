package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// replyCategory is one key of the model reply with its raw ID entries
type replyCategory struct {
	Label   string
	Entries []json.RawMessage
}

// parseReply decodes the model reply strictly as one JSON object whose values
// are arrays. Key order is preserved; a repeated key keeps its first position
// and takes its last value.
func parseReply(text string) ([]replyCategory, error) {
	dec := json.NewDecoder(strings.NewReader(text))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse model reply as JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: reply is not a JSON object", ErrUnexpectedSchema)
	}

	var categories []replyCategory
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse model reply as JSON: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string key", ErrUnexpectedSchema)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse model reply as JSON: %w", err)
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: category %q is not an array", ErrUnexpectedSchema, label)
		}

		if i, seen := index[label]; seen {
			categories[i].Entries = entries
			continue
		}
		index[label] = len(categories)
		categories = append(categories, replyCategory{Label: label, Entries: entries})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse model reply as JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse model reply as JSON: trailing data after object")
	}

	return categories, nil
}

// extractJSONObject returns the outermost {...} span of text
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseOrdinal converts one reply entry to an ordinal. Entries may be JSON
// numbers or numeric strings; integral floats such as 2.0 are accepted.
func parseOrdinal(raw json.RawMessage) (int, bool) {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}

	switch t := v.(type) {
	case json.Number:
		return numberToOrdinal(string(t))
	case string:
		return numberToOrdinal(strings.TrimSpace(t))
	}
	return 0, false
}

func numberToOrdinal(s string) (int, bool) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
