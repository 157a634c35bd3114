package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks variables a developer shell might export; viper ignores empty values
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"PORT", "secret", "STUDENT_SECRET", "GITHUB_TOKEN", "OPENAI_API_KEY", "OPENAI_BASE_URL", "STUDENT_LLM_TEMPERATURE"} {
		t.Setenv(name, "")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultOpenAIBaseURL, cfg.OpenAIBaseURL)
	assert.Equal(t, DefaultLLMModel, cfg.LLMModel)
	assert.Equal(t, 3, cfg.NotifyMaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, time.Second, cfg.NotifyBackoff)
	assert.Equal(t, "main", cfg.PagesBranch)
	assert.Equal(t, DefaultLLMTemperature, cfg.LLMTemperature)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("secret", "from-bare-env")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("OPENAI_BASE_URL", "https://llm.example.com/v1/")
	t.Setenv("STUDENT_NOTIFY_MAX_ATTEMPTS", "5")
	t.Setenv("STUDENT_ROUND_TIMEOUT", "90s")
	t.Setenv("STUDENT_LLM_TEMPERATURE", "0.7")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "from-bare-env", cfg.Secret)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, "https://llm.example.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, 5, cfg.NotifyMaxAttempts)
	assert.Equal(t, 90*time.Second, cfg.RoundTimeout)
	assert.Equal(t, 0.7, cfg.LLMTemperature)
}

func TestPrefixedSecretWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("secret", "bare")
	t.Setenv("STUDENT_SECRET", "prefixed")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Secret)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	v := newViper()
	v.Set("notify-max-attempts", 0)
	v.Set("notify-timeout", "0s")
	v.Set("llm-temperature", 3.5)

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify-max-attempts")
	assert.Contains(t, err.Error(), "notify-timeout")
	assert.Contains(t, err.Error(), "llm-temperature")
}

func TestWarnings(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Len(t, cfg.Warnings(), 3)

	cfg.Secret = "s"
	cfg.GitHubToken = "t"
	cfg.OpenAIAPIKey = "k"
	assert.Empty(t, cfg.Warnings())
}
