package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/go-github/v66/github"
)

// HostingClient is the slice of the source-control API the publisher needs
type HostingClient interface {
	// CreateRepository creates a public, auto-initialised repository.
	// It returns ErrAlreadyExists when the name is taken.
	CreateRepository(ctx context.Context, name string) error
	// EnablePages turns on static hosting from the root of the pages branch.
	// It returns ErrAlreadyEnabled when hosting is already on.
	EnablePages(ctx context.Context, name string) error
	// GetContentSHA returns the version token of path, or "" when it does not exist
	GetContentSHA(ctx context.Context, repo, path string) (string, error)
	// PutContent creates (sha == "") or overwrites (sha != "") a file.
	// It returns ErrVersionConflict when sha does not match the stored version.
	PutContent(ctx context.Context, repo, path string, content []byte, message, sha string) error
}

// GitHubConfig configures GitHubClient
type GitHubConfig struct {
	Token string
	// Owner of created repositories; resolved from the token when empty.
	// An owner other than the token's user is treated as an organization.
	Owner string
	// APIURL overrides https://api.github.com/
	APIURL string
	Branch string
}

// GitHubClient implements HostingClient against the GitHub REST API
type GitHubClient struct {
	client *github.Client
	branch string

	// owner is the configured account, "" for the token's user
	owner string

	loginMu sync.Mutex
	login   string
}

// NewGitHubClient creates a client authenticated with cfg.Token
func NewGitHubClient(cfg GitHubConfig, httpClient *http.Client) (*GitHubClient, error) {
	client := github.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.APIURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = base
	}

	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}

	return &GitHubClient{client: client, branch: branch, owner: cfg.Owner}, nil
}

// CreateRepository implements HostingClient
func (g *GitHubClient) CreateRepository(ctx context.Context, name string) error {
	repo := &github.Repository{
		Name:            github.String(name),
		Private:         github.Bool(false),
		AutoInit:        github.Bool(true),
		LicenseTemplate: github.String("mit"),
	}

	org, err := g.createOrg(ctx)
	if err != nil {
		return err
	}

	_, resp, err := g.client.Repositories.Create(ctx, org, repo)
	if err != nil {
		if statusOf(resp, err) == http.StatusUnprocessableEntity {
			return fmt.Errorf("create repository %s: %w", name, ErrAlreadyExists)
		}
		return fmt.Errorf("create repository %s: %w", name, err)
	}
	return nil
}

// EnablePages implements HostingClient
func (g *GitHubClient) EnablePages(ctx context.Context, name string) error {
	owner, err := g.resolveOwner(ctx)
	if err != nil {
		return err
	}

	pages := &github.Pages{
		BuildType: github.String("legacy"),
		Source: &github.PagesSource{
			Branch: github.String(g.branch),
			Path:   github.String("/"),
		},
	}

	_, resp, err := g.client.Repositories.EnablePages(ctx, owner, name, pages)
	if err != nil {
		if statusOf(resp, err) == http.StatusConflict {
			return fmt.Errorf("enable pages for %s: %w", name, ErrAlreadyEnabled)
		}
		return fmt.Errorf("enable pages for %s: %w", name, err)
	}
	return nil
}

// GetContentSHA implements HostingClient
func (g *GitHubClient) GetContentSHA(ctx context.Context, repo, path string) (string, error) {
	owner, err := g.resolveOwner(ctx)
	if err != nil {
		return "", err
	}

	opts := &github.RepositoryContentGetOptions{Ref: g.branch}
	file, _, resp, err := g.client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("get contents %s/%s: %w", repo, path, err)
	}
	if file == nil {
		// path is a directory
		return "", nil
	}
	return file.GetSHA(), nil
}

// PutContent implements HostingClient
func (g *GitHubClient) PutContent(ctx context.Context, repo, path string, content []byte, message, sha string) error {
	owner, err := g.resolveOwner(ctx)
	if err != nil {
		return err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(g.branch),
	}

	var resp *github.Response
	if sha == "" {
		_, resp, err = g.client.Repositories.CreateFile(ctx, owner, repo, path, opts)
	} else {
		opts.SHA = github.String(sha)
		_, resp, err = g.client.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	}
	if err != nil {
		switch statusOf(resp, err) {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			// 409 is a stale sha, 422 a missing sha for an existing file
			return fmt.Errorf("put %s/%s: %w", repo, path, ErrVersionConflict)
		}
		return fmt.Errorf("put %s/%s: %w", repo, path, err)
	}
	return nil
}

// resolveOwner returns the account repositories live under
func (g *GitHubClient) resolveOwner(ctx context.Context) (string, error) {
	if g.owner != "" {
		return g.owner, nil
	}
	return g.authenticatedLogin(ctx)
}

// createOrg returns the organization to create repositories in, "" for the token's user
func (g *GitHubClient) createOrg(ctx context.Context) (string, error) {
	if g.owner == "" {
		return "", nil
	}
	login, err := g.authenticatedLogin(ctx)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(login, g.owner) {
		return "", nil
	}
	return g.owner, nil
}

// authenticatedLogin looks up the token's login once
func (g *GitHubClient) authenticatedLogin(ctx context.Context) (string, error) {
	g.loginMu.Lock()
	defer g.loginMu.Unlock()

	if g.login != "" {
		return g.login, nil
	}

	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("resolve repository owner: %w", err)
	}
	if user.GetLogin() == "" {
		return "", errors.New("resolve repository owner: authenticated user has no login")
	}
	g.login = user.GetLogin()
	return g.login, nil
}

// statusOf extracts the HTTP status from a go-github response or error
func statusOf(resp *github.Response, err error) int {
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}
