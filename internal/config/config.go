package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v, err := NewEnvViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/inbox-triage/")
	v.AddConfigPath("$HOME/.inbox-triage")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration from an explicit file path
func NewFromFile(path string) (*Config, error) {
	v, err := NewEnvViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// NewEnvViper creates a Viper instance with defaults and environment overrides
func NewEnvViper() (*viper.Viper, error) {
	v := NewEmptyViper()
	v.AutomaticEnv()
	v.SetEnvPrefix("INBOX_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}
	return v, nil
}

// bindLegacyEnv accepts the unprefixed variable names used by existing
// deployments alongside the INBOX_TRIAGE_ ones
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"gmail.client_id":     {"INBOX_TRIAGE_GMAIL_CLIENT_ID", "GOOGLE_CLIENT_ID"},
		"gmail.client_secret": {"INBOX_TRIAGE_GMAIL_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"},
		"groq.api_key":        {"INBOX_TRIAGE_GROQ_API_KEY", "GROQ_API_KEY"},
		"openai.api_key":      {"INBOX_TRIAGE_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"gemini.api_key":      {"INBOX_TRIAGE_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic.api_key":   {"INBOX_TRIAGE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "groq")

	// Groq defaults
	v.SetDefault("groq.api_key", "")
	v.SetDefault("groq.model_name", "llama-3.1-8b-instant")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.max_tokens", 0)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.max_tokens", 0)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 2048)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 2048)

	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model_name", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.max_tokens", 2048)

	// Gmail defaults
	v.SetDefault("gmail.client_id", "")
	v.SetDefault("gmail.client_secret", "")
	v.SetDefault("gmail.redirect_url", "http://localhost:8000/auth/callback")
	v.SetDefault("gmail.max_messages", 60)
	v.SetDefault("gmail.fetch_workers", 1)
	v.SetDefault("gmail.endpoint", "")

	// Pipeline defaults
	v.SetDefault("pipeline.timeout", "2m")
	v.SetDefault("pipeline.snippet_limit", 60)

	// Category defaults
	v.SetDefault("categories.unknown_label_policy", "passthrough")
	v.SetDefault("categories.fallback_label", "🗑️ Promotions & Noise")
	v.SetDefault("categories.extract_embedded_json", false)

	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8000")
	v.SetDefault("server.frontend_url", "http://localhost:8501")
	v.SetDefault("server.cookie_secure", false)

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.ttl", "0s")
	v.SetDefault("store.cleanup_frequency", "1h")
	v.SetDefault("store.sqlite_path", ":memory:")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/inbox_triage?parseTime=true")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// Set overrides a configuration value
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
