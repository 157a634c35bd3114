package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied by SetDefaults and relied on by Load
const (
	DefaultPort              = "8000"
	DefaultOpenAIBaseURL     = "https://aipipe.org/openai/v1"
	DefaultLLMModel          = "gpt-4.1-mini"
	DefaultPagesBranch       = "main"
	DefaultLLMTimeout        = 120 * time.Second
	DefaultLLMTemperature    = 0.2
	DefaultNotifyMaxAttempts = 3
	DefaultNotifyTimeout     = 15 * time.Second
	DefaultNotifyBackoff     = 1 * time.Second
	DefaultRoundTimeout      = 10 * time.Minute
	DefaultShutdownTimeout   = 30 * time.Second
)

// Config is the process configuration. It is built once at startup and passed
// by value into each component; nothing reads viper after Load returns.
type Config struct {
	Port  string
	Debug bool

	// Secret is the shared value every webhook must present
	Secret string

	GitHubToken  string
	GitHubOwner  string
	GitHubAPIURL string
	PagesBranch  string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMModel       string
	LLMTimeout     time.Duration
	// LLMTemperature of zero leaves the provider default
	LLMTemperature float64

	NotifyMaxAttempts int
	NotifyTimeout     time.Duration
	NotifyBackoff     time.Duration

	RoundTimeout    time.Duration
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("openai-base-url", DefaultOpenAIBaseURL)
	v.SetDefault("llm-model", DefaultLLMModel)
	v.SetDefault("llm-timeout", DefaultLLMTimeout)
	v.SetDefault("llm-temperature", DefaultLLMTemperature)
	v.SetDefault("pages-branch", DefaultPagesBranch)
	v.SetDefault("notify-max-attempts", DefaultNotifyMaxAttempts)
	v.SetDefault("notify-timeout", DefaultNotifyTimeout)
	v.SetDefault("notify-backoff", DefaultNotifyBackoff)
	v.SetDefault("round-timeout", DefaultRoundTimeout)
	v.SetDefault("shutdown-timeout", DefaultShutdownTimeout)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
}

// BindEnv binds each key to its environment variables. The first variable
// found wins, so STUDENT_SECRET overrides the bare "secret" variable.
func BindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.BindEnv("port", "PORT")
	v.BindEnv("debug", "STUDENT_DEBUG")
	v.BindEnv("secret", "STUDENT_SECRET", "secret")
	v.BindEnv("github-token", "GITHUB_TOKEN")
	v.BindEnv("github-owner", "GITHUB_OWNER")
	v.BindEnv("github-api-url", "GITHUB_API_URL")
	v.BindEnv("pages-branch", "STUDENT_PAGES_BRANCH")
	v.BindEnv("openai-api-key", "OPENAI_API_KEY")
	v.BindEnv("openai-base-url", "OPENAI_BASE_URL")
	v.BindEnv("llm-model", "STUDENT_LLM_MODEL")
	v.BindEnv("llm-timeout", "STUDENT_LLM_TIMEOUT")
	v.BindEnv("llm-temperature", "STUDENT_LLM_TEMPERATURE")
	v.BindEnv("notify-max-attempts", "STUDENT_NOTIFY_MAX_ATTEMPTS")
	v.BindEnv("notify-timeout", "STUDENT_NOTIFY_TIMEOUT")
	v.BindEnv("notify-backoff", "STUDENT_NOTIFY_BACKOFF")
	v.BindEnv("round-timeout", "STUDENT_ROUND_TIMEOUT")
	v.BindEnv("shutdown-timeout", "STUDENT_SHUTDOWN_TIMEOUT")
	v.BindEnv("log-level", "STUDENT_LOG_LEVEL")
	v.BindEnv("log-format", "STUDENT_LOG_FORMAT")
	v.BindEnv("log-file", "STUDENT_LOG_FILE")
}

// Load snapshots v into a Config and validates it
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:              v.GetString("port"),
		Debug:             v.GetBool("debug"),
		Secret:            v.GetString("secret"),
		GitHubToken:       v.GetString("github-token"),
		GitHubOwner:       v.GetString("github-owner"),
		GitHubAPIURL:      v.GetString("github-api-url"),
		PagesBranch:       v.GetString("pages-branch"),
		OpenAIAPIKey:      v.GetString("openai-api-key"),
		OpenAIBaseURL:     strings.TrimRight(v.GetString("openai-base-url"), "/"),
		LLMModel:          v.GetString("llm-model"),
		LLMTimeout:        v.GetDuration("llm-timeout"),
		LLMTemperature:    v.GetFloat64("llm-temperature"),
		NotifyMaxAttempts: v.GetInt("notify-max-attempts"),
		NotifyTimeout:     v.GetDuration("notify-timeout"),
		NotifyBackoff:     v.GetDuration("notify-backoff"),
		RoundTimeout:      v.GetDuration("round-timeout"),
		ShutdownTimeout:   v.GetDuration("shutdown-timeout"),
		LogLevel:          v.GetString("log-level"),
		LogFormat:         v.GetString("log-format"),
		LogFile:           v.GetString("log-file"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural constraints. Missing credentials are not errors
// here; see Warnings.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.NotifyMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("notify-max-attempts must be at least 1, got %d", c.NotifyMaxAttempts))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("notify-timeout must be positive, got %s", c.NotifyTimeout))
	}
	if c.NotifyBackoff < 0 {
		errs = append(errs, fmt.Errorf("notify-backoff must not be negative, got %s", c.NotifyBackoff))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("llm-timeout must be positive, got %s", c.LLMTimeout))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		errs = append(errs, fmt.Errorf("llm-temperature must be between 0 and 2, got %g", c.LLMTemperature))
	}
	if c.RoundTimeout <= 0 {
		errs = append(errs, fmt.Errorf("round-timeout must be positive, got %s", c.RoundTimeout))
	}
	if c.PagesBranch == "" {
		errs = append(errs, errors.New("pages-branch must not be empty"))
	}
	return errors.Join(errs...)
}

// Warnings lists settings that leave part of the pipeline inert
func (c Config) Warnings() []string {
	var warnings []string
	if c.Secret == "" {
		warnings = append(warnings, "no shared secret configured: every task request will be rejected")
	}
	if c.GitHubToken == "" {
		warnings = append(warnings, "GITHUB_TOKEN not set: repository publishing will fail")
	}
	if c.OpenAIAPIKey == "" {
		warnings = append(warnings, "OPENAI_API_KEY not set: generation will use fallback content")
	}
	return warnings
}
