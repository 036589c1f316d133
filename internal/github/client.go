// Package github wraps the GitHub REST API calls the pipeline needs.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v28/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/Kenz1481/web-deployment-website/internal/metrics"
)

const apiName = "github"

var (
	// ErrUnauthorized means the token was rejected.
	ErrUnauthorized = errors.New("github: unauthorized, check the token")
	// ErrNotFound means the owner or repository does not exist or is not visible.
	ErrNotFound = errors.New("github: owner or repository not found")
)

// Repository is the subset of repository metadata the pipeline records.
type Repository struct {
	ID       int64
	FullName string
	Owner    string
	Name     string
	CloneURL string
	HTMLURL  string
	Private  bool
}

// Config configures a Client.
type Config struct {
	Token string
	// BaseURL overrides the API endpoint (GitHub Enterprise or tests).
	BaseURL string
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
}

// Client is a thin, rate-limited go-github client.
type Client struct {
	client  *gh.Client
	limiter *rate.Limiter
}

// NewClient instantiates a GitHub client from a provided OAuth token.
func NewClient(cfg Config) (*Client, error) {
	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	c := gh.NewClient(hc)

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		c.BaseURL = u
		c.UploadURL = u
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}
	return &Client{client: c, limiter: limiter}, nil
}

// CreateRepository creates a repository under the authenticated user.
func (c *Client) CreateRepository(ctx context.Context, name, description string, private bool) (*Repository, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	repo, resp, err := c.client.Repositories.Create(ctx, "", &gh.Repository{
		Name:        gh.String(name),
		Description: gh.String(description),
		Private:     gh.Bool(private),
		AutoInit:    gh.Bool(false),
	})
	metrics.ObserveExternal(apiName, err)
	if err != nil {
		return nil, parseError(resp, err)
	}
	return toRepository(repo), nil
}

// GetRepository fetches owner/repo.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	r, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	metrics.ObserveExternal(apiName, err)
	if err != nil {
		return nil, parseError(resp, err)
	}
	return toRepository(r), nil
}

// DeleteRepository deletes owner/repo.
func (c *Client) DeleteRepository(ctx context.Context, owner, repo string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	resp, err := c.client.Repositories.Delete(ctx, owner, repo)
	metrics.ObserveExternal(apiName, err)
	if err != nil {
		return parseError(resp, err)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func toRepository(r *gh.Repository) *Repository {
	out := &Repository{
		ID:       r.GetID(),
		FullName: r.GetFullName(),
		Name:     r.GetName(),
		CloneURL: r.GetCloneURL(),
		HTMLURL:  r.GetHTMLURL(),
		Private:  r.GetPrivate(),
	}
	if r.Owner != nil {
		out.Owner = r.Owner.GetLogin()
	}
	return out
}

func parseError(resp *gh.Response, err error) error {
	if resp == nil {
		return fmt.Errorf("github: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Message != "" {
			return fmt.Errorf("github: %s (status %d)", ghErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("github: status %d: %w", resp.StatusCode, err)
	}
}
