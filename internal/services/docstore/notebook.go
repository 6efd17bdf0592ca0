package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NotebookClient drives the audio-overview service that turns a source
// document into a generated podcast episode.
type NotebookClient struct {
	baseURL    string
	token      string
	httpClient HTTPDoer
}

// NewNotebookClient constructs a notebook client.
func NewNotebookClient(baseURL, token string, opts ...Option) *NotebookClient {
	proxy := &Client{httpClient: &http.Client{Timeout: 120 * time.Second}}
	for _, opt := range opts {
		opt(proxy)
	}
	return &NotebookClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		httpClient: proxy.httpClient,
	}
}

// Configured reports whether the client can make requests.
func (n *NotebookClient) Configured() bool {
	return n != nil && n.baseURL != "" && n.token != ""
}

// AddSource registers a document as a notebook source and returns the
// source identifier.
func (n *NotebookClient) AddSource(ctx context.Context, documentID string) (string, error) {
	var resp struct {
		SourceID string `json:"source_id"`
	}
	body := map[string]string{"document_id": documentID}
	if err := n.doJSON(ctx, "/sources", body, &resp); err != nil {
		return "", fmt.Errorf("add source %s: %w", documentID, err)
	}
	if resp.SourceID == "" {
		return "", fmt.Errorf("add source %s: missing source_id in response", documentID)
	}
	return resp.SourceID, nil
}

// GenerateOverview requests an audio overview for a source and returns the
// URL of the produced audio.
func (n *NotebookClient) GenerateOverview(ctx context.Context, sourceID string) (string, error) {
	var resp struct {
		AudioURL string `json:"audio_url"`
		Status   string `json:"status"`
	}
	body := map[string]string{"source_id": sourceID}
	if err := n.doJSON(ctx, "/audio-overviews", body, &resp); err != nil {
		return "", fmt.Errorf("generate overview for %s: %w", sourceID, err)
	}
	if resp.AudioURL == "" {
		return "", fmt.Errorf("generate overview for %s: no audio url (status=%q)", sourceID, resp.Status)
	}
	return resp.AudioURL, nil
}

func (n *NotebookClient) doJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notebook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notebook %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
