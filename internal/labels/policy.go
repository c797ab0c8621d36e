package labels

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Mode selects what happens to labels outside the configured set
type Mode string

const (
	// ModePassthrough keeps unknown labels as the model wrote them
	ModePassthrough Mode = "passthrough"
	// ModeDrop discards unknown labels and their records
	ModeDrop Mode = "drop"
	// ModeFallback merges unknown labels into the fallback label
	ModeFallback Mode = "fallback"
)

// Policy decides which category a label returned by the model maps to
type Policy struct {
	labels   map[string]string
	mode     Mode
	fallback string
	logger   *zap.Logger
}

// NewPolicy creates a label policy. Known labels match loosely, ignoring case,
// punctuation and emoji, so "action required" resolves to "🚨 Action Required".
func NewPolicy(known []string, mode Mode, fallback string, logger *zap.Logger) (*Policy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch mode {
	case ModePassthrough, ModeDrop, ModeFallback:
	case "":
		mode = ModePassthrough
	default:
		return nil, fmt.Errorf("unsupported unknown label policy: %s", mode)
	}

	index := make(map[string]string, len(known))
	for _, label := range known {
		index[canonical(label)] = label
	}

	if mode == ModeFallback {
		if strings.TrimSpace(fallback) == "" {
			return nil, fmt.Errorf("fallback label is required for policy %q", mode)
		}
		if l, ok := index[canonical(fallback)]; ok {
			fallback = l
		}
	}

	logger.Debug("Initialized label policy",
		zap.Strings("labels", known),
		zap.String("mode", string(mode)))

	return &Policy{
		labels:   index,
		mode:     mode,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Mode returns the configured mode
func (p *Policy) Mode() Mode {
	return p.mode
}

// IsKnown reports whether label matches one of the configured labels
func (p *Policy) IsKnown(label string) bool {
	_, ok := p.labels[canonical(label)]
	return ok
}

// Resolve returns the label records should be filed under. ok is false when
// the label and its records must be discarded.
func (p *Policy) Resolve(label string) (string, bool) {
	if p.mode == ModePassthrough {
		return label, true
	}

	if known, ok := p.labels[canonical(label)]; ok {
		return known, true
	}

	p.logger.Debug("Model returned unknown label",
		zap.String("label", label),
		zap.String("mode", string(p.mode)))

	if p.mode == ModeFallback {
		return p.fallback, true
	}
	return "", false
}

// canonical lowercases a label and keeps only letters and digits separated
// by single spaces
func canonical(label string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}
