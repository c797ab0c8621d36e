package factory

import (
	"fmt"

	"github.com/mikey/inbox-triage/internal/adapters/openai"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// OpenAIFactory creates clients for OpenAI-compatible endpoints
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates an OpenAI LLM client
func (f *OpenAIFactory) CreateLLMClient() (core.LLMClient, error) {
	return f.create("openai", f.cfg.GetOpenAI())
}

// CreateGroqClient creates a client for Groq's OpenAI-compatible API
func (f *OpenAIFactory) CreateGroqClient() (core.LLMClient, error) {
	return f.create("groq", f.cfg.GetGroq())
}

func (f *OpenAIFactory) create(provider string, c config.OpenAIConfig) (core.LLMClient, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", provider)
	}
	return openai.NewOpenAIClient(
		c.APIKey,
		c.BaseURL,
		c.ModelName,
		c.MaxTokens,
		f.logger.With(zap.String("provider", provider)),
	), nil
}
