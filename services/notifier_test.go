package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"student/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastNotifierConfig() NotifierConfig {
	return NotifierConfig{MaxAttempts: 3, BaseTimeout: time.Second, BaseBackoff: time.Millisecond}
}

// scriptedCallback answers with statuses in order, repeating the last one
func scriptedCallback(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32, chan models.CompletionPayload) {
	t.Helper()
	var calls atomic.Int32
	received := make(chan models.CompletionPayload, 10)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		var payload models.CompletionPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			received <- payload
		}
		status := statuses[len(statuses)-1]
		if n <= len(statuses) {
			status = statuses[n-1]
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, received
}

func TestNotifier_RetriesServiceUnavailable(t *testing.T) {
	srv, calls, received := scriptedCallback(t, http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK)
	n := NewNotifier(fastNotifierConfig(), srv.Client(), testLogger())

	err := n.Notify(context.Background(), srv.URL, models.NewCompletionPayload(1, "demo-site-043a7187", "n1"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())

	payload := <-received
	assert.Equal(t, "completed", payload.Status)
	assert.Equal(t, 1, payload.Round)
	assert.Equal(t, "demo-site-043a7187", payload.Repo)
	assert.Equal(t, "n1", payload.Nonce)
}

func TestNotifier_ClientErrorStopsImmediately(t *testing.T) {
	srv, calls, _ := scriptedCallback(t, http.StatusNotFound)
	n := NewNotifier(fastNotifierConfig(), srv.Client(), testLogger())

	err := n.Notify(context.Background(), srv.URL, models.NewCompletionPayload(1, "demo", nil))
	assert.ErrorIs(t, err, ErrNotificationFailed)
	assert.EqualValues(t, 1, calls.Load())
}

func TestNotifier_ExhaustsAttemptsOnServerErrors(t *testing.T) {
	srv, calls, _ := scriptedCallback(t, http.StatusInternalServerError)
	n := NewNotifier(fastNotifierConfig(), srv.Client(), testLogger())

	err := n.Notify(context.Background(), srv.URL, models.NewCompletionPayload(2, "demo", 7))
	assert.ErrorIs(t, err, ErrNotificationFailed)
	assert.EqualValues(t, 3, calls.Load())
}

func TestNotifier_ConnectionFailureRetries(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := NewNotifier(NotifierConfig{MaxAttempts: 2, BaseTimeout: 100 * time.Millisecond, BaseBackoff: time.Millisecond}, nil, testLogger())
	err := n.Notify(context.Background(), url, models.NewCompletionPayload(1, "demo", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotificationFailed)
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
}

func TestNotifier_TimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier(NotifierConfig{MaxAttempts: 3, BaseTimeout: 50 * time.Millisecond, BaseBackoff: time.Millisecond}, srv.Client(), testLogger())
	require.NoError(t, n.Notify(context.Background(), srv.URL, models.NewCompletionPayload(1, "demo", "n")))
	assert.EqualValues(t, 2, calls.Load())
}

func TestNotifier_InvalidURLIsPermanent(t *testing.T) {
	n := NewNotifier(fastNotifierConfig(), nil, testLogger())
	err := n.Notify(context.Background(), "://bad", models.NewCompletionPayload(1, "demo", "n"))
	require.ErrorIs(t, err, ErrNotificationFailed)
	assert.Contains(t, err.Error(), "after 1 attempt(s)")
}

func TestDefaultNotifierConfig(t *testing.T) {
	cfg := DefaultNotifierConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.BaseTimeout)
	assert.Equal(t, time.Second, cfg.BaseBackoff)
}
