package retrofit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/docstore"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
)

// WorkspaceAPI is the workspace surface the retrofitter needs.
type WorkspaceAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, filter any) ([]workspace.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]workspace.Property) (*workspace.Page, error)
}

// DocumentStore creates script and show-notes documents.
type DocumentStore interface {
	CreateDocument(ctx context.Context, title, content string) (*docstore.FileMetadata, error)
}

// NotebookAPI generates episode audio from a source document.
type NotebookAPI interface {
	Configured() bool
	AddSource(ctx context.Context, documentID string) (string, error)
	GenerateOverview(ctx context.Context, sourceID string) (string, error)
}

// NotesWriter drafts show-notes prose from episode material.
type NotesWriter interface {
	Configured() bool
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Summary counts what one retrofit run did.
type Summary struct {
	Episodes int
	Enriched int
	Skipped  int
	Failed   int
}

// Retrofitter walks episode rows and fills in the artifacts each row is
// missing. Every step is conditional on its output field being empty, so
// partial failures are recoverable: the next run only performs the missing
// steps.
type Retrofitter struct {
	workspace  WorkspaceAPI
	docs       DocumentStore
	notebook   NotebookAPI
	prober     DurationProber
	notes      NotesWriter
	promptsDir string
	logger     *slog.Logger
}

// Option adjusts optional retrofitter behavior.
type Option func(*Retrofitter)

// WithNotesWriter supplies a model client for drafting show notes. Without
// one the static template is used.
func WithNotesWriter(writer NotesWriter) Option {
	return func(r *Retrofitter) { r.notes = writer }
}

// New builds a retrofitter. docs, notebook, and prober may be nil; their
// steps are then skipped.
func New(ws WorkspaceAPI, docs DocumentStore, notebook NotebookAPI, prober DurationProber, promptsDir string, logger *slog.Logger, opts ...Option) *Retrofitter {
	r := &Retrofitter{
		workspace:  ws,
		docs:       docs,
		notebook:   notebook,
		prober:     prober,
		promptsDir: promptsDir,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run retrofits every matching episode across the configured season
// databases. Per-episode failures are counted and the walk continues.
func (r *Retrofitter) Run(ctx context.Context, seasons []config.SeasonDatabase, status string) (Summary, error) {
	var summary Summary
	for _, season := range seasons {
		pages, err := r.workspace.QueryDatabase(ctx, season.DatabaseID, workspace.FilterSelectEquals("Status", status))
		if err != nil {
			return summary, fmt.Errorf("season %d: %w", season.Season, err)
		}
		for _, page := range pages {
			episode := ParseEpisode(page)
			if episode.Season == 0 && season.Season > 0 {
				episode.Season = season.Season
			}
			summary.Episodes++

			changed, err := r.RetrofitEpisode(ctx, episode)
			switch {
			case err != nil:
				summary.Failed++
				r.logger.Error("retrofit failed",
					slog.Int(logging.FieldSeason, episode.Season),
					slog.Int(logging.FieldEpisode, episode.Number),
					logging.Error(err))
			case changed:
				summary.Enriched++
			default:
				summary.Skipped++
			}
		}
	}
	return summary, nil
}

// RetrofitEpisode runs the enrichment steps for one episode and reports
// whether anything was written.
func (r *Retrofitter) RetrofitEpisode(ctx context.Context, episode Episode) (bool, error) {
	changed := false

	if episode.ScriptDocLink == "" {
		link, err := r.createScriptDoc(ctx, &episode)
		if err != nil {
			return changed, fmt.Errorf("script doc: %w", err)
		}
		if link != "" {
			episode.ScriptDocLink = link
			changed = true
		}
	}

	if episode.ScriptDocLink != "" && episode.TrackCloud == "" {
		audioURL, err := r.generateAudio(ctx, episode)
		if err != nil {
			return changed, fmt.Errorf("audio generation: %w", err)
		}
		if audioURL != "" {
			episode.TrackCloud = audioURL
			changed = true
		}
	}

	if episode.TrackCloud != "" && episode.Duration == "" && r.prober != nil {
		duration, err := r.prober.Probe(ctx, episode.TrackCloud)
		if err != nil {
			return changed, fmt.Errorf("duration probe: %w", err)
		}
		if err := r.updateText(ctx, episode.PageID, "Duration", duration); err != nil {
			return changed, err
		}
		episode.Duration = duration
		changed = true
	}

	if episode.TrackCloud != "" && episode.ShowNotesLink == "" && r.docs != nil {
		notes := r.renderShowNotes(ctx, episode)
		doc, err := r.docs.CreateDocument(ctx, docTitle(episode, "Show Notes"), notes)
		if err != nil {
			return changed, fmt.Errorf("show notes doc: %w", err)
		}
		if err := r.updateURL(ctx, episode.PageID, "Show-Notes-Link", doc.WebLink); err != nil {
			return changed, err
		}
		changed = true
	}

	return changed, nil
}

func (r *Retrofitter) createScriptDoc(ctx context.Context, episode *Episode) (string, error) {
	if r.docs == nil {
		return "", nil
	}
	prompt := episode.PromptInput
	if prompt == "" {
		prompt = r.loadPromptFile(episode.Season, episode.Number)
	}
	if prompt == "" {
		return "", nil
	}

	doc, err := r.docs.CreateDocument(ctx, docTitle(*episode, "Script"), prompt)
	if err != nil {
		return "", err
	}
	if err := r.updateURL(ctx, episode.PageID, "Script-Doc-Link", doc.WebLink); err != nil {
		return "", err
	}
	return doc.WebLink, nil
}

func (r *Retrofitter) generateAudio(ctx context.Context, episode Episode) (string, error) {
	if r.notebook == nil || !r.notebook.Configured() {
		return "", nil
	}
	docID := documentIDFromLink(episode.ScriptDocLink)
	sourceID, err := r.notebook.AddSource(ctx, docID)
	if err != nil {
		return "", err
	}
	audioURL, err := r.notebook.GenerateOverview(ctx, sourceID)
	if err != nil {
		return "", err
	}
	if err := r.updateURL(ctx, episode.PageID, "Track-Cloud", audioURL); err != nil {
		return "", err
	}
	return audioURL, nil
}

func (r *Retrofitter) loadPromptFile(season, number int) string {
	if r.promptsDir == "" {
		return ""
	}
	path := filepath.Join(r.promptsDir, fmt.Sprintf("prompt_S%02dE%03d.txt", season, number))
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func (r *Retrofitter) updateURL(ctx context.Context, pageID, property, value string) error {
	_, err := r.workspace.UpdatePage(ctx, pageID, map[string]workspace.Property{
		property: workspace.URLProp(value),
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", property, err)
	}
	return nil
}

func (r *Retrofitter) updateText(ctx context.Context, pageID, property, value string) error {
	_, err := r.workspace.UpdatePage(ctx, pageID, map[string]workspace.Property{
		property: workspace.RichTextProp(value),
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", property, err)
	}
	return nil
}

func docTitle(episode Episode, suffix string) string {
	name := episode.CodeName
	if name == "" {
		name = "Episode"
	}
	return name + " - " + suffix
}

// documentIDFromLink pulls the document identifier out of a docs URL by
// locating the /d/<id> segment; a bare identifier passes through.
func documentIDFromLink(link string) string {
	trimmed := strings.TrimRight(link, "/")
	parts := strings.Split(trimmed, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "d" {
			return parts[i+1]
		}
	}
	return parts[len(parts)-1]
}

const showNotesSystemPrompt = `You write podcast show notes in Markdown.
Produce a title heading, an episode description, the topics covered, and
timestamped segments. Keep it factual and under 400 words.`

// renderShowNotes drafts notes with the model when one is configured,
// falling back to the static template when the model is absent or fails.
func (r *Retrofitter) renderShowNotes(ctx context.Context, episode Episode) string {
	if r.notes == nil || !r.notes.Configured() {
		return ShowNotes(episode)
	}
	material := episode.PromptInput
	if material == "" {
		material = episode.Description
	}
	if material == "" {
		return ShowNotes(episode)
	}
	input := fmt.Sprintf("Episode: %s\n\n%s", docTitle(episode, "Show Notes"), material)
	drafted, err := r.notes.CompleteText(ctx, showNotesSystemPrompt, input)
	if err != nil || strings.TrimSpace(drafted) == "" {
		r.logger.Warn("model show notes failed, using template",
			slog.Int(logging.FieldSeason, episode.Season),
			slog.Int(logging.FieldEpisode, episode.Number),
			logging.Error(err))
		return ShowNotes(episode)
	}
	return drafted
}

// ShowNotes renders the show-notes template for an episode.
func ShowNotes(episode Episode) string {
	title := episode.Title
	if title == "" {
		title = "Unknown Episode"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("## Episode Description\n")
	b.WriteString(episode.Description)
	b.WriteString("\n\n## Topics Covered\n- [Topic to be added]\n")
	b.WriteString("\n## Resources\n- [Resource links to be added]\n")
	b.WriteString("\n## Timestamps\n- 00:00 - Introduction\n- [Additional timestamps to be added]\n")
	b.WriteString("\n---\nGenerated automatically by PR-CYBR-P0D\n")
	return b.String()
}
