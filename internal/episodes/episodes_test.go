package episodes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/docstore"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cyber Defense Basics", "cyber-defense-basics"},
		{"  Threat   Intel!!  ", "threat-intel"},
		{"Señal Débil", "senal-debil"},
		{"EP: 42 / Intro", "ep-42-intro"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFilenameNumbered(t *testing.T) {
	e := Episode{Title: "Zero Trust Deep Dive", Number: 7}
	if got := e.Filename(); got != "episode-007-zero-trust-deep-dive" {
		t.Fatalf("Filename() = %q", got)
	}
}

func TestFilenameUnnumberedUsesTitleHash(t *testing.T) {
	a := Episode{Title: "Bonus Interview"}
	b := Episode{Title: "Bonus Interview"}
	c := Episode{Title: "Other Bonus"}

	if a.Filename() != b.Filename() {
		t.Fatalf("same title produced different names: %q vs %q", a.Filename(), b.Filename())
	}
	if a.Filename() == c.Filename() {
		t.Fatalf("different titles collided on %q", a.Filename())
	}
	const prefix = "episode-"
	name := a.Filename()
	if len(name) < len(prefix)+8 || name[:len(prefix)] != prefix {
		t.Fatalf("unexpected name %q", name)
	}
	if name[len(prefix)+8] != '-' {
		t.Fatalf("expected 8-char hash segment in %q", name)
	}
}

func TestParseEpisodeRequiresTitleAndURL(t *testing.T) {
	full := workspace.Page{
		ID: "page-1",
		Properties: map[string]workspace.Property{
			"Title":          workspace.TitleProp("Episode One"),
			"File URL":       workspace.URLProp("https://cdn.example.com/ep1.mp3"),
			"Release Date":   workspace.DateProp("2026-02-03"),
			"Episode Number": workspace.NumberProp(1),
			"Description":    workspace.RichTextProp("pilot"),
		},
	}
	episode := ParseEpisode(full)
	if episode == nil {
		t.Fatal("expected episode")
	}
	if episode.NotionID != "page-1" || episode.Number != 1 || episode.ReleaseDate != "2026-02-03" {
		t.Fatalf("unexpected parse: %+v", episode)
	}

	noURL := full
	noURL.Properties = map[string]workspace.Property{
		"Title": workspace.TitleProp("Episode One"),
	}
	if ParseEpisode(noURL) != nil {
		t.Fatal("expected nil for missing file url")
	}

	noTitle := full
	noTitle.Properties = map[string]workspace.Property{
		"File URL": workspace.URLProp("https://cdn.example.com/ep1.mp3"),
	}
	if ParseEpisode(noTitle) != nil {
		t.Fatal("expected nil for missing title")
	}
}

type fakeWorkspace struct {
	pages []workspace.Page
	err   error
}

func (f *fakeWorkspace) QueryDatabase(ctx context.Context, databaseID string, filter any) ([]workspace.Page, error) {
	return f.pages, f.err
}

func livePage(id, title, url string, number float64) workspace.Page {
	return workspace.Page{
		ID: id,
		Properties: map[string]workspace.Property{
			"Title":          workspace.TitleProp(title),
			"File URL":       workspace.URLProp(url),
			"Episode Number": workspace.NumberProp(number),
		},
	}
}

func TestLiveEpisodesSkipsUnusableRows(t *testing.T) {
	ws := &fakeWorkspace{pages: []workspace.Page{
		livePage("p1", "Good Episode", "https://cdn.example.com/a.mp3", 1),
		{ID: "p2", Properties: map[string]workspace.Property{
			"Title": workspace.TitleProp("No Audio Yet"),
		}},
	}}
	puller := NewPuller(ws, nil, t.TempDir(), "", logging.NewNop())

	live, err := puller.LiveEpisodes(context.Background(), "db-1")
	if err != nil {
		t.Fatalf("LiveEpisodes: %v", err)
	}
	if len(live) != 1 || live[0].Title != "Good Episode" {
		t.Fatalf("unexpected episodes: %+v", live)
	}
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	var slept []time.Duration
	puller := NewPuller(&fakeWorkspace{}, nil, dir, "", logging.NewNop(),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	episode := Episode{NotionID: "p1", Title: "Retry Episode", FileURL: server.URL, Number: 3}
	downloaded, err := puller.Download(context.Background(), episode)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !downloaded {
		t.Fatal("expected a download")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(slept) != 2 || slept[0] != 5*time.Second {
		t.Fatalf("unexpected sleeps: %v", slept)
	}

	audio, err := os.ReadFile(filepath.Join(dir, "episode-003-retry-episode.mp3"))
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(audio) != "ID3-audio-bytes" {
		t.Fatalf("unexpected audio body %q", audio)
	}
}

func TestDownloadGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	puller := NewPuller(&fakeWorkspace{}, nil, t.TempDir(), "", logging.NewNop(),
		WithSleeper(func(time.Duration) {}))

	episode := Episode{NotionID: "p1", Title: "Gone Episode", FileURL: server.URL, Number: 4}
	if _, err := puller.Download(context.Background(), episode); err == nil {
		t.Fatal("expected failure after retries")
	}
}

func TestDownloadSkipsExistingFile(t *testing.T) {
	dir := t.TempDir()
	episode := Episode{NotionID: "p1", Title: "Already Here", FileURL: "https://cdn.example.com/a.mp3", Number: 9}
	existing := filepath.Join(dir, episode.Filename()+".mp3")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	failingClient := doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("network should not be touched")
	})
	puller := NewPuller(&fakeWorkspace{}, nil, dir, "", logging.NewNop(),
		WithHTTPClient(failingClient))

	downloaded, err := puller.Download(context.Background(), episode)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if downloaded {
		t.Fatal("expected skip for existing file")
	}
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func TestDownloadWritesMetadataSidecar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("audio"))
	}))
	defer server.Close()

	dir := t.TempDir()
	puller := NewPuller(&fakeWorkspace{}, nil, dir, "", logging.NewNop())
	episode := Episode{
		NotionID:    "page-55",
		Title:       "Metadata Episode",
		FileURL:     server.URL,
		ReleaseDate: "2026-03-01",
		Number:      55,
		Description: "sidecar test",
	}
	if _, err := puller.Download(context.Background(), episode); err != nil {
		t.Fatalf("Download: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, episode.Filename()+"-metadata.json"))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta["title"] != "Metadata Episode" || meta["notion_id"] != "page-55" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
	if meta["file_size"].(float64) != float64(len("audio")) {
		t.Fatalf("unexpected file_size: %v", meta["file_size"])
	}
	for _, key := range []string{"release_date", "episode_number", "description", "file_url", "downloaded_at"} {
		if _, ok := meta[key]; !ok {
			t.Errorf("metadata missing %q", key)
		}
	}
}

func TestSyncCountsDownloadsAndFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("audio"))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	ws := &fakeWorkspace{pages: []workspace.Page{
		livePage("p1", "First", good.URL, 1),
		livePage("p2", "Second", bad.URL, 2),
	}}
	puller := NewPuller(ws, nil, t.TempDir(), "", logging.NewNop(),
		WithSleeper(func(time.Duration) {}))

	downloaded, failed, err := puller.Sync(context.Background(), "db-1")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if downloaded != 1 || failed != 1 {
		t.Fatalf("downloaded=%d failed=%d", downloaded, failed)
	}
}

type fakeUploader struct {
	names []string
	mimes []string
	sizes []int
	err   error
}

func (f *fakeUploader) UploadFile(_ context.Context, name, mimeType string, body io.Reader) (*docstore.FileMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.names = append(f.names, name)
	f.mimes = append(f.mimes, mimeType)
	f.sizes = append(f.sizes, len(data))
	return &docstore.FileMetadata{ID: "file-1", Name: name, WebLink: "https://drive.example.com/file-1"}, nil
}

func TestDownloadArchivesThroughUploader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio"))
	}))
	defer server.Close()

	uploader := &fakeUploader{}
	puller := NewPuller(&fakeWorkspace{}, nil, t.TempDir(), "", logging.NewNop(),
		WithUploader(uploader))

	episode := Episode{NotionID: "p1", Title: "Archived Episode", FileURL: server.URL, Number: 6}
	if _, err := puller.Download(context.Background(), episode); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(uploader.names) != 1 || uploader.names[0] != "episode-006-archived-episode.mp3" {
		t.Fatalf("uploads = %v", uploader.names)
	}
	if uploader.mimes[0] != "audio/mpeg" || uploader.sizes[0] != len("ID3-audio") {
		t.Fatalf("mime=%q size=%d", uploader.mimes[0], uploader.sizes[0])
	}
}

func TestDownloadSurvivesUploadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio"))
	}))
	defer server.Close()

	dir := t.TempDir()
	uploader := &fakeUploader{err: errors.New("store unavailable")}
	puller := NewPuller(&fakeWorkspace{}, nil, dir, "", logging.NewNop(),
		WithUploader(uploader))

	episode := Episode{NotionID: "p1", Title: "Local Only", FileURL: server.URL, Number: 7}
	downloaded, err := puller.Download(context.Background(), episode)
	if err != nil || !downloaded {
		t.Fatalf("downloaded=%v err=%v", downloaded, err)
	}
	if _, err := os.Stat(filepath.Join(dir, episode.Filename()+".mp3")); err != nil {
		t.Fatalf("audio file missing: %v", err)
	}
}

func TestWithDownloadTimeoutReplacesClient(t *testing.T) {
	p := NewPuller(&fakeWorkspace{}, nil, t.TempDir(), "", logging.NewNop(),
		WithDownloadTimeout(30*time.Second))
	client, ok := p.httpClient.(*http.Client)
	if !ok {
		t.Fatalf("httpClient = %T, want *http.Client", p.httpClient)
	}
	if client.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v", client.Timeout)
	}

	p = NewPuller(&fakeWorkspace{}, nil, t.TempDir(), "", logging.NewNop(), WithDownloadTimeout(0))
	if client, ok := p.httpClient.(*http.Client); !ok || client.Timeout != 5*time.Minute {
		t.Fatalf("zero timeout must keep the default client, got %+v", p.httpClient)
	}
}

func TestSeasonFromNumber(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 52: 1, 53: 2, 884: 17}
	for number, want := range cases {
		if got := seasonFromNumber(number); got != want {
			t.Errorf("seasonFromNumber(%d) = %d, want %d", number, got, want)
		}
	}
}
