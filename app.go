package main

import (
	"fmt"

	"student/config"
	"student/llm"
	"student/logger"
	"student/services"

	"github.com/spf13/viper"
)

// app holds the collaborators shared by the server and run commands
type app struct {
	cfg          config.Config
	log          logger.Logger
	tracker      *services.RunTracker
	orchestrator *services.Orchestrator
}

// newApp loads configuration and wires the round pipeline
func newApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.CreateLogger(cfg.LogFile, cfg.LogLevel, cfg.LogFormat, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	hosting, err := services.NewGitHubClient(services.GitHubConfig{
		Token:  cfg.GitHubToken,
		Owner:  cfg.GitHubOwner,
		APIURL: cfg.GitHubAPIURL,
		Branch: cfg.PagesBranch,
	}, nil)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	model := llm.NewOpenAIAdapter(llm.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		ModelID: cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, log.WithField("component", "llm"))

	notifier := services.NewNotifier(services.NotifierConfig{
		MaxAttempts: cfg.NotifyMaxAttempts,
		BaseTimeout: cfg.NotifyTimeout,
		BaseBackoff: cfg.NotifyBackoff,
	}, nil, log.WithField("component", "notifier"))

	tracker := services.NewRunTracker(services.DefaultRunHistory)
	orchestrator := services.NewOrchestrator(
		services.NewGenerator(model, services.GeneratorConfig{
			Timeout:     cfg.LLMTimeout,
			Temperature: cfg.LLMTemperature,
		}, log.WithField("component", "generator")),
		services.NewPublisher(hosting, log.WithField("component", "publisher")),
		notifier,
		tracker,
		log.WithField("component", "orchestrator"),
	)

	return &app{
		cfg:          cfg,
		log:          log,
		tracker:      tracker,
		orchestrator: orchestrator,
	}, nil
}
