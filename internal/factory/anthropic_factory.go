package factory

import (
	"fmt"

	"github.com/mikey/inbox-triage/internal/adapters/anthropic"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// AnthropicFactory creates Anthropic LLM clients
type AnthropicFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAnthropicFactory creates a new Anthropic factory
func NewAnthropicFactory(cfg *config.Config, logger *zap.Logger) *AnthropicFactory {
	return &AnthropicFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates an Anthropic LLM client
func (f *AnthropicFactory) CreateLLMClient() (core.LLMClient, error) {
	c := f.cfg.GetAnthropic()
	if c.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	return anthropic.NewAnthropicClient(c.APIKey, "", c.ModelName, c.MaxTokens, f.logger), nil
}
