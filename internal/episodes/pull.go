package episodes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/catalog"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/docstore"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 5 * time.Second
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// WorkspaceAPI is the workspace surface the puller needs.
type WorkspaceAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, filter any) ([]workspace.Page, error)
}

// Uploader mirrors downloaded audio into the document store.
type Uploader interface {
	UploadFile(ctx context.Context, name, mimeType string, body io.Reader) (*docstore.FileMetadata, error)
}

// Puller downloads live episodes into the local episodes directory and
// records them in the catalog.
type Puller struct {
	workspace    WorkspaceAPI
	httpClient   HTTPDoer
	store        *catalog.Store
	episodesDir  string
	liveProperty string
	logger       *slog.Logger

	uploader Uploader

	retryAttempts int
	retryDelay    time.Duration
	sleeper       func(time.Duration)
}

// PullOption customizes the puller.
type PullOption func(*Puller)

// WithHTTPClient overrides the download HTTP backend.
func WithHTTPClient(doer HTTPDoer) PullOption {
	return func(p *Puller) {
		if doer != nil {
			p.httpClient = doer
		}
	}
}

// WithRetry overrides download retry behavior.
func WithRetry(attempts int, delay time.Duration) PullOption {
	return func(p *Puller) {
		if attempts > 0 {
			p.retryAttempts = attempts
		}
		if delay >= 0 {
			p.retryDelay = delay
		}
	}
}

// WithUploader enables archiving each downloaded file in the document
// store. Upload failures are logged, not fatal.
func WithUploader(uploader Uploader) PullOption {
	return func(p *Puller) { p.uploader = uploader }
}

// WithDownloadTimeout caps how long a single episode download may take.
func WithDownloadTimeout(timeout time.Duration) PullOption {
	return func(p *Puller) {
		if timeout > 0 {
			p.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) PullOption {
	return func(p *Puller) {
		if sleeper != nil {
			p.sleeper = sleeper
		}
	}
}

// NewPuller builds an episode puller. store may be nil to skip cataloging.
func NewPuller(ws WorkspaceAPI, store *catalog.Store, episodesDir, liveProperty string, logger *slog.Logger, opts ...PullOption) *Puller {
	if liveProperty == "" {
		liveProperty = "Episode Live"
	}
	p := &Puller{
		workspace:     ws,
		httpClient:    &http.Client{Timeout: 5 * time.Minute},
		store:         store,
		episodesDir:   episodesDir,
		liveProperty:  liveProperty,
		logger:        logger,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		sleeper:       time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LiveEpisodes queries the database for rows flagged live and parses them,
// skipping rows missing a title or file URL.
func (p *Puller) LiveEpisodes(ctx context.Context, databaseID string) ([]Episode, error) {
	pages, err := p.workspace.QueryDatabase(ctx, databaseID,
		workspace.FilterCheckboxEquals(p.liveProperty, true))
	if err != nil {
		return nil, fmt.Errorf("query live episodes: %w", err)
	}

	var parsed []Episode
	for _, page := range pages {
		episode := ParseEpisode(page)
		if episode == nil {
			p.logger.Warn("skipping episode with missing title or file url",
				slog.String("page", page.ID))
			continue
		}
		parsed = append(parsed, *episode)
	}
	return parsed, nil
}

// Sync downloads every live episode not already on disk. Per-episode
// failures are counted and the walk continues.
func (p *Puller) Sync(ctx context.Context, databaseID string) (downloaded, failed int, err error) {
	live, err := p.LiveEpisodes(ctx, databaseID)
	if err != nil {
		return 0, 0, err
	}

	for _, episode := range live {
		fetched, err := p.Download(ctx, episode)
		if err != nil {
			failed++
			p.logger.Error("episode download failed",
				slog.String("title", episode.Title),
				logging.Error(err))
			continue
		}
		if fetched {
			downloaded++
		}
	}
	return downloaded, failed, nil
}

// Download fetches one episode's audio plus a metadata sidecar, skipping
// files already present. It reports whether a new download happened.
func (p *Puller) Download(ctx context.Context, episode Episode) (bool, error) {
	if err := os.MkdirAll(p.episodesDir, 0o755); err != nil {
		return false, fmt.Errorf("create episodes directory: %w", err)
	}

	base := episode.Filename()
	audioPath := filepath.Join(p.episodesDir, base+".mp3")
	metadataPath := filepath.Join(p.episodesDir, base+"-metadata.json")

	if _, err := os.Stat(audioPath); err == nil {
		p.logger.Info("episode already exists", slog.String("file", base))
		return false, nil
	}

	body, size, err := p.fetchWithRetry(ctx, episode.FileURL)
	if err != nil {
		return false, err
	}

	if err := os.WriteFile(audioPath, body, 0o644); err != nil {
		return false, fmt.Errorf("write audio file: %w", err)
	}

	metadata := map[string]any{
		"title":          episode.Title,
		"release_date":   episode.ReleaseDate,
		"episode_number": episode.Number,
		"description":    episode.Description,
		"notion_id":      episode.NotionID,
		"file_url":       episode.FileURL,
		"downloaded_at":  time.Now().UTC().Format(time.RFC3339),
		"file_size":      size,
	}
	encoded, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(metadataPath, append(encoded, '\n'), 0o644); err != nil {
		return false, fmt.Errorf("write metadata file: %w", err)
	}

	if p.store != nil {
		season := seasonFromNumber(episode.Number)
		if _, err := p.store.Record(ctx, catalog.Entry{
			NotionID:  episode.NotionID,
			Season:    season,
			Episode:   episode.Number,
			Title:     episode.Title,
			Filename:  base,
			AudioPath: audioPath,
		}); err != nil {
			return false, fmt.Errorf("catalog episode: %w", err)
		}
	}

	if p.uploader != nil {
		if err := p.archive(ctx, base+".mp3", body); err != nil {
			p.logger.Warn("episode archive upload failed",
				slog.String("file", base+".mp3"),
				logging.Error(err))
		}
	}

	p.logger.Info("episode downloaded",
		slog.String("file", base+".mp3"),
		slog.Int("bytes", size))
	return true, nil
}

func (p *Puller) archive(ctx context.Context, name string, body []byte) error {
	meta, err := p.uploader.UploadFile(ctx, name, "audio/mpeg", bytes.NewReader(body))
	if err != nil {
		return err
	}
	p.logger.Info("episode archived",
		slog.String("file", name),
		slog.String("link", meta.WebLink))
	return nil
}

func (p *Puller) fetchWithRetry(ctx context.Context, url string) ([]byte, int, error) {
	var lastErr error
	for attempt := 1; attempt <= p.retryAttempts; attempt++ {
		if attempt > 1 {
			p.sleeper(p.retryDelay)
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}

		body, err := p.fetchOnce(ctx, url)
		if err == nil {
			return body, len(body), nil
		}
		lastErr = err
		p.logger.Warn("download attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.retryAttempts),
			logging.Error(err))
	}
	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	return nil, 0, fmt.Errorf("download failed after %d attempts: %w", p.retryAttempts, lastErr)
}

func (p *Puller) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "audio") && !strings.Contains(contentType, "octet-stream") {
		p.logger.Warn("unexpected content type", slog.String("content_type", contentType))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// seasonFromNumber places a flat episode number inside the 52-episode
// season layout. Unnumbered episodes land in season 0.
func seasonFromNumber(number int) int {
	if number <= 0 {
		return 0
	}
	return (number-1)/52 + 1
}
