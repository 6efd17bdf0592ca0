package tracker

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
)

const defaultUserAgent = "pr-cybr-p0d"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Issue is the subset of tracker issue fields the synchronizer uses.
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	State   string `json:"state"`
}

// IssueRequest carries the writable fields of an issue.
type IssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// Client talks to a GitHub-compatible issue tracker API.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient HTTPDoer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// NewClient constructs a tracker client.
func NewClient(baseURL, token, userAgent string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = "https://api.github.com"
	}
	if client.userAgent == "" {
		client.userAgent = defaultUserAgent
	}
	return client
}

// SearchIssueByTaskID looks for an open or closed issue whose title carries
// the task identifier. The identifier is globally unique, so the first match
// is the record. A failed search is returned as an error, never as absence:
// treating a rate-limited lookup as "not found" would duplicate issues on
// the next write.
func (c *Client) SearchIssueByTaskID(ctx context.Context, org, repo, taskID string) (*Issue, error) {
	query := fmt.Sprintf("repo:%s/%s %s in:title", org, repo, taskID)
	path := "/search/issues?q=" + url.QueryEscape(query)

	var result struct {
		TotalCount int     `json:"total_count"`
		Items      []Issue `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("search issues for %s: %w", taskID, err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	issue := result.Items[0]
	return &issue, nil
}

// CreateIssue opens a new issue in org/repo.
func (c *Client) CreateIssue(ctx context.Context, org, repo string, req IssueRequest) (*Issue, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues", org, repo)
	var issue Issue
	if err := c.doJSON(ctx, http.MethodPost, path, req, &issue); err != nil {
		return nil, fmt.Errorf("create issue in %s/%s: %w", org, repo, err)
	}
	return &issue, nil
}

// UpdateIssue overwrites the title and body of an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, org, repo string, number int, req IssueRequest) (*Issue, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", org, repo, number)
	var issue Issue
	if err := c.doJSON(ctx, http.MethodPatch, path, req, &issue); err != nil {
		return nil, fmt.Errorf("update issue %s/%s#%d: %w", org, repo, number, err)
	}
	return &issue, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tracker %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
