package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for an OpenAI-compatible endpoint
type OpenAIConfig struct {
	APIKey    string
	ModelName string
	BaseURL   string
	MaxTokens int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string
	MaxTokens int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region    string
	ModelID   string
	MaxTokens int
}

// AnthropicConfig represents the configuration for the Anthropic API
type AnthropicConfig struct {
	APIKey    string
	ModelName string
	MaxTokens int
}

// GmailConfig represents the OAuth client and fetch settings for Gmail
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	MaxMessages  int
	FetchWorkers int
	// Endpoint overrides the Gmail API base URL
	Endpoint string
}

// PipelineConfig bounds one fetch and categorize run
type PipelineConfig struct {
	Timeout      time.Duration
	SnippetLimit int
}

// CategoriesConfig controls the labels offered to the model
type CategoriesConfig struct {
	Labels              []LabelConfig
	UnknownLabelPolicy  string
	FallbackLabel       string
	ExtractEmbeddedJSON bool
}

// LabelConfig is one configured category
type LabelConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress string
	FrontendURL   string
	CookieSecure  bool
}

// StoreConfig represents the result store configuration
type StoreConfig struct {
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return c.openAICompatible("openai")
}

// GetGroq returns the Groq configuration. Groq serves the OpenAI wire format.
func (c *Config) GetGroq() OpenAIConfig {
	return c.openAICompatible("groq")
}

func (c *Config) openAICompatible(section string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:    c.GetString(section + ".api_key"),
		ModelName: c.GetString(section + ".model_name"),
		BaseURL:   c.GetString(section + ".base_url"),
		MaxTokens: c.GetInt(section + ".max_tokens"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
		MaxTokens: c.GetInt("gemini.max_tokens"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:    c.GetString("bedrock.region"),
		ModelID:   c.GetString("bedrock.model_id"),
		MaxTokens: c.GetInt("bedrock.max_tokens"),
	}
}

// GetAnthropic returns the Anthropic configuration
func (c *Config) GetAnthropic() AnthropicConfig {
	return AnthropicConfig{
		APIKey:    c.GetString("anthropic.api_key"),
		ModelName: c.GetString("anthropic.model_name"),
		MaxTokens: c.GetInt("anthropic.max_tokens"),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		ClientID:     c.GetString("gmail.client_id"),
		ClientSecret: c.GetString("gmail.client_secret"),
		RedirectURL:  c.GetString("gmail.redirect_url"),
		MaxMessages:  c.GetInt("gmail.max_messages"),
		FetchWorkers: c.GetInt("gmail.fetch_workers"),
		Endpoint:     c.GetString("gmail.endpoint"),
	}
}

// GetPipeline returns the pipeline configuration
func (c *Config) GetPipeline() (PipelineConfig, error) {
	timeout, err := c.GetDuration("pipeline.timeout")
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("invalid pipeline.timeout: %w", err)
	}
	return PipelineConfig{
		Timeout:      timeout,
		SnippetLimit: c.GetInt("pipeline.snippet_limit"),
	}, nil
}

// GetCategories returns the category configuration. Labels is empty when
// none are configured, leaving the built-in set in effect.
func (c *Config) GetCategories() (CategoriesConfig, error) {
	var labels []LabelConfig
	if c.v.IsSet("categories.labels") {
		if err := c.v.UnmarshalKey("categories.labels", &labels); err != nil {
			return CategoriesConfig{}, fmt.Errorf("invalid categories.labels: %w", err)
		}
	}
	return CategoriesConfig{
		Labels:              labels,
		UnknownLabelPolicy:  c.GetString("categories.unknown_label_policy"),
		FallbackLabel:       c.GetString("categories.fallback_label"),
		ExtractEmbeddedJSON: c.GetBool("categories.extract_embedded_json"),
	}, nil
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		FrontendURL:   c.GetString("server.frontend_url"),
		CookieSecure:  c.GetBool("server.cookie_secure"),
	}
}

// GetStore returns the result store configuration
func (c *Config) GetStore() (StoreConfig, error) {
	ttl, err := c.GetDuration("store.ttl")
	if err != nil {
		return StoreConfig{}, fmt.Errorf("invalid store.ttl: %w", err)
	}
	cleanup, err := c.GetDuration("store.cleanup_frequency")
	if err != nil {
		return StoreConfig{}, fmt.Errorf("invalid store.cleanup_frequency: %w", err)
	}
	return StoreConfig{
		Type:             c.GetString("store.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("store.sqlite_path"),
		MySQLDSN:         c.GetString("store.mysql_dsn"),
		RedisAddr:        c.GetString("store.redis_addr"),
		RedisPassword:    c.GetString("store.redis_password"),
		RedisDB:          c.GetInt("store.redis_db"),
	}, nil
}
