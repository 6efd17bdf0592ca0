package notionsync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/upsert"
)

const (
	titleLimit   = 100
	summaryLimit = 2000

	taskIDProperty = "Task ID"
	statusComplete = "Complete"
)

// Completion describes one finished task to record in the workspace
// database.
type Completion struct {
	Agent       string
	Repo        string
	Issue       int
	PR          int
	MeetingDate string
	Summary     string
}

// DeterministicID derives the completion's stable workspace identifier from
// the fields that never change across re-runs. PR number and summary are
// deliberately excluded: they arrive later or get edited.
func (c Completion) DeterministicID() string {
	key := upsert.NewKey(c.Agent, c.Repo, strconv.Itoa(c.Issue), c.MeetingDate)
	return key.UUID().String()
}

// WorkspaceAPI is the workspace surface the syncer needs.
type WorkspaceAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, filter any) ([]workspace.Page, error)
	CreatePage(ctx context.Context, databaseID string, properties map[string]workspace.Property) (*workspace.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]workspace.Property) (*workspace.Page, error)
}

// Syncer records task completions in a workspace database, one row per
// completion across repeated runs.
type Syncer struct {
	client     WorkspaceAPI
	databaseID string
	org        string
	logger     *slog.Logger
	clock      func() time.Time
}

// NewSyncer builds a completion syncer. org names the tracker organization
// used to build issue and PR links.
func NewSyncer(client WorkspaceAPI, databaseID, org string, logger *slog.Logger) *Syncer {
	if org == "" {
		org = "PR-CYBR"
	}
	return &Syncer{client: client, databaseID: databaseID, org: org, logger: logger, clock: time.Now}
}

// Record upserts one completion and reports whether it was created or
// updated along with the deterministic identifier used.
func (s *Syncer) Record(ctx context.Context, completion Completion) (upsert.Result, string, error) {
	id := completion.DeterministicID()
	target := &pageTarget{sync: s, completion: completion}
	result, err := upsert.Do(ctx, target, id)
	if err != nil {
		return upsert.Result{}, id, err
	}
	s.logger.Info("completion recorded",
		slog.String(logging.FieldTaskID, id),
		slog.String(logging.FieldOutcome, string(result.Outcome)),
		slog.String("page", result.Ref))
	return result, id, nil
}

type pageTarget struct {
	sync       *Syncer
	completion Completion
}

func (t *pageTarget) Find(ctx context.Context, id string) (string, error) {
	pages, err := t.sync.client.QueryDatabase(ctx, t.sync.databaseID,
		workspace.FilterRichTextEquals(taskIDProperty, id))
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", nil
	}
	return pages[0].ID, nil
}

func (t *pageTarget) Create(ctx context.Context, id string) (string, error) {
	page, err := t.sync.client.CreatePage(ctx, t.sync.databaseID, t.properties(id))
	if err != nil {
		return "", err
	}
	return page.ID, nil
}

func (t *pageTarget) Update(ctx context.Context, ref string) error {
	id := t.completion.DeterministicID()
	_, err := t.sync.client.UpdatePage(ctx, ref, t.properties(id))
	return err
}

func (t *pageTarget) properties(id string) map[string]workspace.Property {
	c := t.completion
	meetingDate := c.MeetingDate
	if _, err := time.Parse("2006-01-02", meetingDate); err != nil {
		meetingDate = t.sync.clock().UTC().Format("2006-01-02")
	}

	props := map[string]workspace.Property{
		taskIDProperty: workspace.RichTextProp(id),
		"Title":        workspace.TitleProp(truncate(c.Summary, titleLimit)),
		"Agent":        workspace.SelectProp(c.Agent),
		"Repository":   workspace.RichTextProp(c.Repo),
		"Issue":        workspace.NumberProp(float64(c.Issue)),
		"Meeting Date": workspace.DateProp(meetingDate),
		"Summary":      workspace.RichTextProp(truncate(c.Summary, summaryLimit)),
		"Issue URL":    workspace.URLProp(fmt.Sprintf("https://github.com/%s/%s/issues/%d", t.sync.org, c.Repo, c.Issue)),
		"Status":       workspace.SelectProp(statusComplete),
	}
	if c.PR > 0 {
		props["PR"] = workspace.NumberProp(float64(c.PR))
		props["PR URL"] = workspace.URLProp(fmt.Sprintf("https://github.com/%s/%s/pull/%d", t.sync.org, c.Repo, c.PR))
	}
	return props
}

// truncate trims and shortens s to at most limit runes, keeping multibyte
// characters intact.
func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
