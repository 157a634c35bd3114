package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"student/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// CompletionNotifier delivers the completion payload to the evaluation callback
type CompletionNotifier interface {
	Notify(ctx context.Context, url string, payload models.CompletionPayload) error
}

// NotifierConfig controls callback retries
type NotifierConfig struct {
	MaxAttempts int
	// BaseTimeout bounds the first attempt and doubles on each retry
	BaseTimeout time.Duration
	// BaseBackoff is the wait before the second attempt and doubles after that
	BaseBackoff time.Duration
}

// DefaultNotifierConfig is 3 attempts, 15s/30s/60s timeouts, 1s/2s backoff
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		MaxAttempts: 3,
		BaseTimeout: 15 * time.Second,
		BaseBackoff: time.Second,
	}
}

// Notifier posts CompletionPayloads with bounded exponential retry.
// 2xx succeeds; 5xx, connection errors and timeouts are retried; any other
// status stops immediately.
type Notifier struct {
	client *http.Client
	cfg    NotifierConfig
	logger logrus.FieldLogger
}

// NewNotifier creates a notifier. A nil client uses a fresh http.Client.
func NewNotifier(cfg NotifierConfig, client *http.Client, logger logrus.FieldLogger) *Notifier {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Notifier{client: client, cfg: cfg, logger: logger}
}

// Notify implements CompletionNotifier
func (n *Notifier) Notify(ctx context.Context, url string, payload models.CompletionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode completion payload: %w", err)
	}

	log := n.logger.WithFields(logrus.Fields{"url": url, "repo": payload.Repo, "round": payload.Round})

	attempt := 0
	operation := func() error {
		timeout := n.cfg.BaseTimeout << attempt
		attempt++

		status, err := n.post(ctx, url, body, timeout)
		attemptLog := log.WithField("attempt", attempt)
		switch {
		case err != nil:
			attemptLog.WithError(err).Warn("Callback attempt failed")
			return err
		case status >= 200 && status < 300:
			attemptLog.WithField("status", status).Info("Callback delivered")
			return nil
		case status >= 500:
			attemptLog.WithField("status", status).Warn("Callback returned server error")
			return fmt.Errorf("callback returned status %d", status)
		default:
			attemptLog.WithField("status", status).Error("Callback rejected")
			return backoff.Permanent(fmt.Errorf("callback returned status %d", status))
		}
	}

	if err := backoff.Retry(operation, n.policy(ctx)); err != nil {
		log.WithFields(logrus.Fields{
			"attempts": attempt,
			"payload":  string(body),
		}).Error("Completion notification not delivered, manual follow-up required")
		return fmt.Errorf("%w after %d attempt(s): %v", ErrNotificationFailed, attempt, err)
	}
	return nil
}

// policy doubles the wait from BaseBackoff with no jitter and stops at MaxAttempts
func (n *Notifier) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = n.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = n.cfg.BaseBackoff << n.cfg.MaxAttempts
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(n.cfg.MaxAttempts-1)), ctx)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("build callback request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
