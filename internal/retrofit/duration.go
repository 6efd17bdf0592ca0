package retrofit

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DurationProber estimates the playing time of remote audio.
type DurationProber interface {
	Probe(ctx context.Context, audioURL string) (string, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ContentLengthProber estimates duration from a HEAD request's
// Content-Length and a configured audio bitrate. Good enough for episode
// listings; exact values would need the file downloaded and decoded.
type ContentLengthProber struct {
	Client      HTTPDoer
	BitrateKbps int
}

// NewContentLengthProber builds a prober for the given bitrate.
func NewContentLengthProber(client HTTPDoer, bitrateKbps int) *ContentLengthProber {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if bitrateKbps <= 0 {
		bitrateKbps = 128
	}
	return &ContentLengthProber{Client: client, BitrateKbps: bitrateKbps}
}

// Probe issues a HEAD request and converts the byte size to a duration
// string, MM:SS under an hour and H:MM:SS beyond.
func (p *ContentLengthProber) Probe(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("build probe request: %w", err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", audioURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("probe %s: http %d", audioURL, resp.StatusCode)
	}
	if resp.ContentLength <= 0 {
		return "", fmt.Errorf("probe %s: no content length", audioURL)
	}

	seconds := resp.ContentLength * 8 / (int64(p.BitrateKbps) * 1000)
	return FormatDuration(seconds), nil
}

// FormatDuration renders seconds as MM:SS, or H:MM:SS past an hour.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
