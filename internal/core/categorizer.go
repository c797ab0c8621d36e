package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mikey/inbox-triage/internal/metrics"
	"go.uber.org/zap"
)

// LabelSpec is one category offered to the model
type LabelSpec struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// LabelResolver maps a label returned by the model to the label records are
// filed under. ok is false when the label is discarded.
type LabelResolver interface {
	Resolve(label string) (string, bool)
}

type passthroughResolver struct{}

func (passthroughResolver) Resolve(label string) (string, bool) { return label, true }

// CategorizerOptions tunes the categorization engine
type CategorizerOptions struct {
	Labels []LabelSpec
	// ExtractEmbeddedJSON retries parsing on the outermost {...} span when the
	// reply is not a bare JSON object
	ExtractEmbeddedJSON bool
}

// Categorizer asks a language model to sort a batch of records into labels
// and maps the ordinals in its reply back to the records
type Categorizer struct {
	llmClient       LLMClient
	resolver        LabelResolver
	promptBuilder   *PromptBuilder
	logger          *zap.Logger
	systemPrompt    string
	extractEmbedded bool
}

// NewCategorizer creates a new categorization engine
func NewCategorizer(
	llmClient LLMClient,
	resolver LabelResolver,
	promptBuilder *PromptBuilder,
	logger *zap.Logger,
	opts CategorizerOptions,
) *Categorizer {
	if resolver == nil {
		resolver = passthroughResolver{}
	}
	labels := opts.Labels
	if len(labels) == 0 {
		labels = DefaultLabels()
	}
	return &Categorizer{
		llmClient:       llmClient,
		resolver:        resolver,
		promptBuilder:   promptBuilder,
		logger:          logger,
		systemPrompt:    BuildSystemPrompt(labels),
		extractEmbedded: opts.ExtractEmbeddedJSON,
	}
}

// SystemPrompt returns the fixed instruction sent with every request
func (c *Categorizer) SystemPrompt() string {
	return c.systemPrompt
}

// Preview builds the request for records without calling the model
func (c *Categorizer) Preview(records []EmailRecord) CompletionRequest {
	return c.request(c.promptBuilder.Build(records))
}

func (c *Categorizer) request(prompt *Prompt) CompletionRequest {
	return CompletionRequest{
		SystemPrompt: c.systemPrompt,
		UserPrompt:   prompt.Text,
		Temperature:  0,
		JSONMode:     true,
	}
}

// Categorize sorts records into categories. It never returns an error: a
// failed model call or unparsable reply yields an empty assignment with
// Failure set.
func (c *Categorizer) Categorize(ctx context.Context, records []EmailRecord) (outcome *CategorizationOutcome) {
	if len(records) == 0 {
		metrics.RecordCategorization("empty")
		return &CategorizationOutcome{}
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = c.fail(fmt.Errorf("categorization panicked: %v", r), records)
		}
	}()

	// Build the numbered prompt
	prompt := c.promptBuilder.Build(records)

	// Ask the model
	start := time.Now()
	completion, err := c.llmClient.Complete(ctx, c.request(prompt))
	if err != nil {
		metrics.RecordLLMRequest("error", time.Since(start))
		return c.fail(fmt.Errorf("model request failed: %w", err), records)
	}
	metrics.RecordLLMRequest("ok", time.Since(start))

	// Parse the reply
	categories, err := c.parse(completion.Text)
	if err != nil {
		c.logger.Debug("Unparsable model reply", zap.String("reply", completion.Text))
		return c.fail(err, records)
	}

	// Map ordinals back to records
	outcome = c.resolve(prompt, categories)
	outcome.ModelUsed = completion.ModelUsed

	metrics.RecordCategorization("ok")
	c.logger.Info("Categorized emails",
		zap.Int("records", len(records)),
		zap.Int("categorized", outcome.Assignment.Total()),
		zap.Int("categories", outcome.Assignment.Len()),
		zap.Int("dropped", len(outcome.Dropped)),
		zap.Int("unassigned", len(outcome.Unassigned)),
		zap.String("model", completion.ModelUsed))

	return outcome
}

func (c *Categorizer) parse(text string) ([]replyCategory, error) {
	categories, err := parseReply(text)
	if err == nil || !c.extractEmbedded {
		return categories, err
	}
	embedded, ok := extractJSONObject(text)
	if !ok {
		return nil, err
	}
	return parseReply(embedded)
}

// resolve looks up every reply entry in the ordinal mapping. Entries that do
// not resolve, or that name a record already placed, are dropped.
func (c *Categorizer) resolve(prompt *Prompt, categories []replyCategory) *CategorizationOutcome {
	outcome := &CategorizationOutcome{}
	claimed := make(map[int]bool, prompt.Count)

	drop := func(label, raw, reason string) {
		outcome.Dropped = append(outcome.Dropped, DroppedOrdinal{Label: label, Raw: raw, Reason: reason})
		metrics.RecordOrdinalDropped(reason)
	}

	for _, category := range categories {
		target, ok := c.resolver.Resolve(category.Label)
		if !ok {
			for _, entry := range category.Entries {
				drop(category.Label, string(entry), DropReasonUnknownLabel)
			}
			continue
		}

		resolved := make([]EmailRecord, 0, len(category.Entries))
		// Lookup or drop
		for _, entry := range category.Entries {
			ordinal, ok := parseOrdinal(entry)
			if !ok {
				drop(category.Label, string(entry), DropReasonNotNumeric)
				continue
			}
			record, ok := prompt.Ordinals[ordinal]
			if !ok {
				drop(category.Label, string(entry), DropReasonOutOfRange)
				continue
			}
			if claimed[ordinal] {
				drop(category.Label, string(entry), DropReasonDuplicate)
				continue
			}
			claimed[ordinal] = true
			resolved = append(resolved, record)
		}
		outcome.Assignment.add(target, resolved...)
	}

	// Anything never claimed is unassigned, in prompt order
	ordinals := make([]int, 0, len(prompt.Ordinals))
	for ordinal := range prompt.Ordinals {
		if !claimed[ordinal] {
			ordinals = append(ordinals, ordinal)
		}
	}
	sort.Ints(ordinals)
	for _, ordinal := range ordinals {
		outcome.Unassigned = append(outcome.Unassigned, prompt.Ordinals[ordinal])
	}

	return outcome
}

func (c *Categorizer) fail(err error, records []EmailRecord) *CategorizationOutcome {
	metrics.RecordCategorization("failed")
	c.logger.Error("AI processing failed", zap.Error(err))
	return &CategorizationOutcome{
		Failure:    err,
		Unassigned: append([]EmailRecord{}, records...),
	}
}

// DefaultLabels returns the four standard categories
func DefaultLabels() []LabelSpec {
	return []LabelSpec{
		{Name: "🚨 Action Required", Description: "Interviews, coding tests, deadlines, offers."},
		{Name: "⏳ Applications & Updates", Description: `"Application Received", "Status Update", rejections.`},
		{Name: "🎓 University & Learning", Description: "College/University emails, newsletters, courses."},
		{Name: "🗑️ Promotions & Noise", Description: "Marketing, LinkedIn notifications, social media."},
	}
}

// BuildSystemPrompt renders the instruction listing every label
func BuildSystemPrompt(labels []LabelSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a career-focused email assistant. Sort emails into exactly these %d categories:\n\n", len(labels))
	for i, l := range labels {
		fmt.Fprintf(&b, "%d. \"%s\"\n", i+1, l.Name)
		if l.Description != "" {
			fmt.Fprintf(&b, "   - %s\n", l.Description)
		}
	}
	b.WriteString("\nRULES:\n")
	b.WriteString(`- Return ONLY a JSON object: { "Category Name": [ID1, ID2] }` + "\n")
	b.WriteString("- Use the numeric IDs from the list; never invent IDs.\n")
	b.WriteString("- Put each ID in at most one category.\n")
	if len(labels) > 0 {
		fmt.Fprintf(&b, "- Be aggressive with \"%s\" for any dates/meetings.\n", labels[0].Name)
	}
	return b.String()
}
