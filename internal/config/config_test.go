package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "groq", cfg.GetLLM().Provider)

	groq := cfg.GetGroq()
	assert.Equal(t, "llama-3.1-8b-instant", groq.ModelName)
	assert.Equal(t, "https://api.groq.com/openai/v1", groq.BaseURL)

	gmail := cfg.GetGmail()
	assert.Equal(t, 60, gmail.MaxMessages)
	assert.Equal(t, 1, gmail.FetchWorkers)
	assert.Equal(t, "http://localhost:8000/auth/callback", gmail.RedirectURL)

	server := cfg.GetServer()
	assert.Equal(t, "http://localhost:8501", server.FrontendURL)

	store, err := cfg.GetStore()
	require.NoError(t, err)
	assert.Equal(t, "memory", store.Type)
	assert.Equal(t, time.Duration(0), store.TTL)
	assert.Equal(t, time.Hour, store.CleanupFrequency)

	pipeline, err := cfg.GetPipeline()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, pipeline.Timeout)

	cats, err := cfg.GetCategories()
	require.NoError(t, err)
	assert.Empty(t, cats.Labels)
	assert.Equal(t, "passthrough", cats.UnknownLabelPolicy)
	assert.False(t, cats.ExtractEmbeddedJSON)
}

func TestGetCategories_Labels(t *testing.T) {
	v := NewEmptyViper()
	v.Set("categories.labels", []map[string]any{
		{"name": "Work", "description": "Anything from the office"},
		{"name": "Other"},
	})

	cats, err := NewFromViper(v).GetCategories()
	require.NoError(t, err)
	assert.Equal(t, []LabelConfig{
		{Name: "Work", Description: "Anything from the office"},
		{Name: "Other"},
	}, cats.Labels)
}

func TestGetStore_InvalidDuration(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("store.ttl", "soon")

	_, err := cfg.GetStore()
	assert.Error(t, err)
}

func TestLegacyEnvNames(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")

	v := NewEmptyViper()
	require.NoError(t, bindLegacyEnv(v))
	cfg := NewFromViper(v)

	assert.Equal(t, "gsk-test", cfg.GetGroq().APIKey)
	assert.Equal(t, "client-id", cfg.GetGmail().ClientID)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.yaml")
	content := "llm:\n  provider: anthropic\nstore:\n  type: sqlite\n  ttl: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.GetLLM().Provider)

	storeCfg, err := cfg.GetStore()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", storeCfg.Type)
	assert.Equal(t, 30*time.Minute, storeCfg.TTL)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.GetAnthropic().ModelName)
}

func TestNewFromFile_Missing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
