package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/adapters/store"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider  string
	Model     string
	APIKey    string
	MaxTokens int

	// Categorization flags
	UnknownLabelPolicy  string
	FallbackLabel       string
	ExtractEmbeddedJSON bool
	SnippetLimit        int

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTriageFactory); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register categorization engine
	if err := container.Provide(func(f *factory.TriageFactory, llmClient core.LLMClient) (*core.Categorizer, error) {
		return f.CreateCategorizer(llmClient)
	}); err != nil {
		return nil, err
	}

	// Register triage service with an in-process store
	if err := container.Provide(func(
		f *factory.TriageFactory,
		c *core.Categorizer,
		logger *zap.Logger,
	) (*core.TriageService, error) {
		return f.CreateTriageService(c, store.NewMemoryStore(logger, 0))
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) (*config.Config, error) {
	v, err := config.NewEnvViper()
	if err != nil {
		return nil, err
	}

	// Set LLM provider
	if flags.Provider != "" {
		v.Set("llm.provider", flags.Provider)
	}
	provider := v.GetString("llm.provider")

	// Set provider-specific configuration
	switch provider {
	case "bedrock":
		if flags.Model != "" {
			v.Set("bedrock.model_id", flags.Model)
		}
	default:
		if flags.Model != "" {
			v.Set(provider+".model_name", flags.Model)
		}
		if flags.APIKey != "" {
			v.Set(provider+".api_key", flags.APIKey)
		}
	}
	if flags.MaxTokens > 0 {
		v.Set(fmt.Sprintf("%s.max_tokens", provider), flags.MaxTokens)
	}

	// Set categorization options
	if flags.UnknownLabelPolicy != "" {
		v.Set("categories.unknown_label_policy", flags.UnknownLabelPolicy)
	}
	if flags.FallbackLabel != "" {
		v.Set("categories.fallback_label", flags.FallbackLabel)
	}
	v.Set("categories.extract_embedded_json", flags.ExtractEmbeddedJSON)
	if flags.SnippetLimit > 0 {
		v.Set("pipeline.snippet_limit", flags.SnippetLimit)
	}

	return config.NewFromViper(v), nil
}
