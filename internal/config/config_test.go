package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("LLM_RETRY_MAX_ATTEMPTS", "")

	cfg := Load()

	assert.Equal(t, 1, cfg.LLM.RetryMaxAttempts)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")

	cfg := Load()

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Storage: StorageConfig{Driver: DriverFile},
			LLM:     LLMConfig{Provider: ProviderGemini, GeminiAPIKey: "key", RetryMaxAttempts: 1},
			Worker:  WorkerConfig{Concurrency: 1},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Storage.Driver = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.LLM.GeminiAPIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.LLM.Provider = ProviderOpenAI
	assert.Error(t, cfg.Validate())
	cfg.LLM.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestQuestionBankEnabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.QuestionBankEnabled())

	cfg.Qdrant.URL = "http://localhost:6334"
	assert.False(t, cfg.QuestionBankEnabled())

	cfg.LLM.GeminiAPIKey = "key"
	assert.True(t, cfg.QuestionBankEnabled())
}
