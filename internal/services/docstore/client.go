package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// FileMetadata describes an uploaded or created file.
type FileMetadata struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	WebLink string `json:"webViewLink"`
}

// Client talks to a Drive-compatible file store.
type Client struct {
	baseURL    string
	token      string
	folderID   string
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

// NewClient constructs a docstore client. folderID scopes every write to one
// folder.
func NewClient(baseURL, token, folderID string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		folderID:   strings.TrimSpace(folderID),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = "https://www.googleapis.com/drive/v3"
	}
	return client
}

// CreateDocument uploads plain text as a document in the configured folder
// and returns its metadata.
func (c *Client) CreateDocument(ctx context.Context, title, content string) (*FileMetadata, error) {
	meta := map[string]any{
		"name":     title,
		"mimeType": "application/vnd.google-apps.document",
	}
	if c.folderID != "" {
		meta["parents"] = []string{c.folderID}
	}
	return c.multipartUpload(ctx, meta, "text/plain", strings.NewReader(content))
}

// UploadFile stores a binary file (episode audio, show notes) in the
// configured folder.
func (c *Client) UploadFile(ctx context.Context, name, mimeType string, body io.Reader) (*FileMetadata, error) {
	meta := map[string]any{"name": name}
	if c.folderID != "" {
		meta["parents"] = []string{c.folderID}
	}
	return c.multipartUpload(ctx, meta, mimeType, body)
}

func (c *Client) multipartUpload(ctx context.Context, meta map[string]any, mimeType string, body io.Reader) (*FileMetadata, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("create metadata part: %w", err)
	}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	bodyHeader := textproto.MIMEHeader{}
	bodyHeader.Set("Content-Type", mimeType)
	bodyPart, err := writer.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("create content part: %w", err)
	}
	if _, err := io.Copy(bodyPart, body); err != nil {
		return nil, fmt.Errorf("write content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	url := c.baseURL + "/files?uploadType=multipart&fields=id,name,webViewLink"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docstore upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("docstore upload returned %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var file FileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &file, nil
}
