// Package vercel is a minimal client for the Vercel deployments API.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Kenz1481/web-deployment-website/internal/metrics"
)

const (
	apiName = "vercel"

	DefaultBaseURL = "https://api.vercel.com"
	DefaultTimeout = 30 * time.Second
)

// Config configures a Client.
type Config struct {
	Token     string
	TeamID    string
	BaseURL   string
	RateLimit float64
	Timeout   time.Duration
}

// Client talks to the Vercel REST API with a bearer token and optional team scope.
type Client struct {
	baseURL    string
	token      string
	teamID     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Vercel client
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}
	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		teamID:     cfg.TeamID,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// GitSource references the repository a deployment builds from.
type GitSource struct {
	Type   string `json:"type"`
	RepoID int64  `json:"repoId"`
	Repo   string `json:"repo"`
	Ref    string `json:"ref"`
}

// ProjectSettings overrides the build configuration. Nil fields keep platform defaults.
type ProjectSettings struct {
	Framework       *string `json:"framework"`
	BuildCommand    *string `json:"buildCommand"`
	InstallCommand  *string `json:"installCommand"`
	OutputDirectory *string `json:"outputDirectory"`
	RootDirectory   *string `json:"rootDirectory"`
	DevCommand      *string `json:"devCommand"`
}

// DeploymentRequest is the body of POST /v13/deployments.
type DeploymentRequest struct {
	Name            string          `json:"name"`
	GitSource       GitSource       `json:"gitSource"`
	ProjectSettings ProjectSettings `json:"projectSettings"`
}

// Deployment is what the pipeline keeps from a deployment response.
type Deployment struct {
	ID        string
	URL       string
	Alias     []string
	ProjectID string
}

type deploymentResponse struct {
	ID        string   `json:"id"`
	URL       string   `json:"url"`
	Alias     []string `json:"alias"`
	ProjectID string   `json:"projectId"`
	Project   *struct {
		ID string `json:"id"`
	} `json:"project"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is returned for non-success responses or error payloads.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// CreateDeployment submits a git-sourced deployment for the given repository.
func (c *Client) CreateDeployment(ctx context.Context, req DeploymentRequest) (*Deployment, error) {
	if req.GitSource.Type == "" {
		req.GitSource.Type = "github"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal deployment request: %w", err)
	}

	var out deploymentResponse
	status, err := c.do(ctx, http.MethodPost, "/v13/deployments", body, &out)
	if err == nil && (status >= 300 || out.Error != nil) {
		err = newAPIError(status, out.Error)
	}
	metrics.ObserveExternal(apiName, err)
	if err != nil {
		return nil, err
	}

	d := &Deployment{ID: out.ID, URL: out.URL, Alias: out.Alias, ProjectID: out.ProjectID}
	if d.ProjectID == "" && out.Project != nil {
		d.ProjectID = out.Project.ID
	}
	return d, nil
}

// DeleteProject removes a Vercel project and all of its deployments.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return fmt.Errorf("vercel: project id is required")
	}
	var out struct {
		Error *apiError `json:"error"`
	}
	status, err := c.do(ctx, http.MethodDelete, "/v9/projects/"+url.PathEscape(projectID), nil, &out)
	if err == nil && status >= 300 {
		err = newAPIError(status, out.Error)
	}
	metrics.ObserveExternal(apiName, err)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return 0, fmt.Errorf("parse url: %w", err)
	}
	if c.teamID != "" {
		q := u.Query()
		q.Set("teamId", c.teamID)
		u.RawQuery = q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.teamID != "" {
		req.Header.Set("X-Vercel-Team-Id", c.teamID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("vercel request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) > 0 && out != nil {
		// Error bodies are not always JSON; the status code still decides.
		_ = json.Unmarshal(data, out)
	}
	return resp.StatusCode, nil
}

func newAPIError(status int, payload *apiError) error {
	e := &APIError{StatusCode: status}
	if payload != nil {
		e.Code = payload.Code
		e.Message = payload.Message
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("Vercel API responded with status %d", status)
	}
	return e
}
