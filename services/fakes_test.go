package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"student/llm"
	"student/logger"
	"student/models"

	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	return logger.Discard()
}

// fakeModel returns a canned response and records prompts
type fakeModel struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
	options llm.CallOptions
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llm.MessageContent, options ...llm.CallOption) (*llm.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, opt := range options {
		opt(&m.options)
	}
	for _, msg := range messages {
		m.prompts = append(m.prompts, msg.Text)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llm.ContentResponse{Choices: []*llm.ContentChoice{{Content: m.text}}}, nil
}

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// putCall records one content write
type putCall struct {
	Repo    string
	Path    string
	Content string
	Message string
	SHA     string
}

// fakeHosting is an in-memory HostingClient with compare-and-swap writes
type fakeHosting struct {
	mu          sync.Mutex
	repos       map[string]bool
	pages       map[string]bool
	files       map[string]map[string]string // repo -> path -> sha
	version     int
	puts        []putCall
	createCalls int
	pagesCalls  int
	createErr   error
	failPaths   map[string]error
	staleOnce   map[string]bool // path -> return a stale token once
}

func newFakeHosting() *fakeHosting {
	return &fakeHosting{
		repos:     map[string]bool{},
		pages:     map[string]bool{},
		files:     map[string]map[string]string{},
		failPaths: map[string]error{},
		staleOnce: map[string]bool{},
	}
}

func (f *fakeHosting) CreateRepository(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if f.repos[name] {
		return ErrAlreadyExists
	}
	f.repos[name] = true
	f.files[name] = map[string]string{}
	return nil
}

func (f *fakeHosting) EnablePages(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pagesCalls++
	if f.pages[name] {
		return ErrAlreadyEnabled
	}
	f.pages[name] = true
	return nil
}

func (f *fakeHosting) GetContentSHA(_ context.Context, repo, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleOnce[path] {
		delete(f.staleOnce, path)
		return "stale", nil
	}
	return f.files[repo][path], nil
}

func (f *fakeHosting) PutContent(_ context.Context, repo, path string, content []byte, message, sha string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failPaths[path]; ok {
		return err
	}
	if f.files[repo] == nil {
		f.files[repo] = map[string]string{}
	}
	if current := f.files[repo][path]; current != sha {
		return fmt.Errorf("put %s: %w", path, ErrVersionConflict)
	}
	f.version++
	f.files[repo][path] = fmt.Sprintf("sha-%d", f.version)
	f.puts = append(f.puts, putCall{Repo: repo, Path: path, Content: string(content), Message: message, SHA: sha})
	return nil
}

func (f *fakeHosting) putsSnapshot() []putCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]putCall(nil), f.puts...)
}

// fakeNotifier records notifications instead of sending them
type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.CompletionPayload
	urls []string
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, url string, payload models.CompletionPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
	n.sent = append(n.sent, payload)
	return n.err
}

var errBoom = errors.New("boom")
