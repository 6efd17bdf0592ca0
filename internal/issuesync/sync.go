package issuesync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/tracker"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/tasks"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/upsert"
)

// defaultCallPacing spaces tracker writes to stay under search rate limits.
const defaultCallPacing = 500 * time.Millisecond

// TrackerAPI is the tracker surface the synchronizer needs.
type TrackerAPI interface {
	SearchIssueByTaskID(ctx context.Context, org, repo, taskID string) (*tracker.Issue, error)
	CreateIssue(ctx context.Context, org, repo string, req tracker.IssueRequest) (*tracker.Issue, error)
	UpdateIssue(ctx context.Context, org, repo string, number int, req tracker.IssueRequest) (*tracker.Issue, error)
}

// Result records the outcome for one task.
type Result struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	IssueNumber int    `json:"issue_number,omitempty"`
	Repo        string `json:"repo,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.Status == "error" }

// Synchronizer publishes task documents to the issue tracker, one issue per
// task, converging on re-runs instead of duplicating.
type Synchronizer struct {
	client  TrackerAPI
	mapping *Mapping
	logger  *slog.Logger
	dryRun  bool
	clock   func() time.Time
	sleeper func(time.Duration)
	pacing  time.Duration
}

// SyncOption customizes the synchronizer.
type SyncOption func(*Synchronizer)

// WithDryRun plans the sync without making any remote writes.
func WithDryRun(dryRun bool) SyncOption {
	return func(s *Synchronizer) { s.dryRun = dryRun }
}

// WithClock overrides the timestamp source (useful for tests).
func WithClock(clock func() time.Time) SyncOption {
	return func(s *Synchronizer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPacing overrides the delay between tracker writes. Zero disables
// pacing.
func WithPacing(pacing time.Duration) SyncOption {
	return func(s *Synchronizer) {
		if pacing >= 0 {
			s.pacing = pacing
		}
	}
}

// WithSleeper overrides how pacing sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) SyncOption {
	return func(s *Synchronizer) {
		if sleeper != nil {
			s.sleeper = sleeper
		}
	}
}

// NewSynchronizer builds a synchronizer over a tracker client and an agent
// mapping.
func NewSynchronizer(client TrackerAPI, mapping *Mapping, logger *slog.Logger, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		client:  client,
		mapping: mapping,
		logger:  logger,
		clock:   time.Now,
		sleeper: time.Sleep,
		pacing:  defaultCallPacing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync processes every task in the document. Per-task failures are recorded
// and processing continues; the caller inspects the results to decide the
// exit status.
func (s *Synchronizer) Sync(ctx context.Context, doc *tasks.Document) []Result {
	results := make([]Result, 0, len(doc.Tasks))
	for i, task := range doc.Tasks {
		if i > 0 && !s.dryRun && s.pacing > 0 {
			s.sleeper(s.pacing)
		}
		results = append(results, s.syncTask(ctx, task))
	}
	return results
}

func (s *Synchronizer) syncTask(ctx context.Context, task tasks.Task) Result {
	repo, err := s.mapping.RepoFor(task.Agent, task.Repo)
	if err != nil {
		s.logger.Error("cannot route task", slog.String(logging.FieldTaskID, task.TaskID), logging.Error(err))
		return Result{TaskID: task.TaskID, Status: "error", Error: err.Error()}
	}

	if s.dryRun {
		s.logger.Info("dry run, would sync issue",
			slog.String(logging.FieldTaskID, task.TaskID),
			slog.String("repo", s.mapping.Organization+"/"+repo))
		return Result{TaskID: task.TaskID, Status: "planned", Repo: repo}
	}

	target := &issueTarget{sync: s, repo: repo, task: task}
	outcome, err := upsert.Do(ctx, target, task.TaskID)
	if err != nil {
		s.logger.Error("issue sync failed",
			slog.String(logging.FieldTaskID, task.TaskID),
			slog.String("repo", repo),
			logging.Error(err))
		return Result{TaskID: task.TaskID, Status: "error", Repo: repo, Error: err.Error()}
	}

	number, _ := strconv.Atoi(outcome.Ref)
	s.logger.Info("issue synced",
		slog.String(logging.FieldTaskID, task.TaskID),
		slog.String("repo", repo),
		slog.String(logging.FieldOutcome, string(outcome.Outcome)),
		slog.Int("issue", number))
	return Result{TaskID: task.TaskID, Status: string(outcome.Outcome), IssueNumber: number, Repo: repo}
}

// issueTarget adapts the tracker client to the upsert protocol for one task.
type issueTarget struct {
	sync *Synchronizer
	repo string
	task tasks.Task
}

func (t *issueTarget) Find(ctx context.Context, id string) (string, error) {
	issue, err := t.sync.client.SearchIssueByTaskID(ctx, t.sync.mapping.Organization, t.repo, id)
	if err != nil {
		return "", err
	}
	if issue == nil {
		return "", nil
	}
	return strconv.Itoa(issue.Number), nil
}

func (t *issueTarget) Create(ctx context.Context, id string) (string, error) {
	req := tracker.IssueRequest{
		Title:  IssueTitle(t.task),
		Body:   issueBody(t.task, time.Time{}),
		Labels: t.task.Labels,
	}
	issue, err := t.sync.client.CreateIssue(ctx, t.sync.mapping.Organization, t.repo, req)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(issue.Number), nil
}

func (t *issueTarget) Update(ctx context.Context, ref string) error {
	number, err := strconv.Atoi(ref)
	if err != nil {
		return fmt.Errorf("bad issue ref %q: %w", ref, err)
	}
	req := tracker.IssueRequest{
		Title:  IssueTitle(t.task),
		Body:   issueBody(t.task, t.sync.clock()),
		Labels: t.task.Labels,
	}
	_, err = t.sync.client.UpdateIssue(ctx, t.sync.mapping.Organization, t.repo, number, req)
	return err
}

// IssueTitle formats the issue title with the task identifier prefix the
// search path keys on.
func IssueTitle(task tasks.Task) string {
	return fmt.Sprintf("[%s] %s", task.TaskID, task.Title)
}

func issueBody(task tasks.Task, updatedAt time.Time) string {
	explicit := "No (Inferred)"
	if task.Explicit {
		explicit = "Yes"
	}
	parts := []string{
		task.Description,
		"",
		"---",
		fmt.Sprintf("**Task ID:** `%s`", task.TaskID),
		fmt.Sprintf("**Priority:** %s", task.Priority),
		fmt.Sprintf("**Type:** %s", task.Type),
		fmt.Sprintf("**Explicit:** %s", explicit),
	}
	if meeting := meetingID(task.Labels); meeting != "" {
		parts = append(parts, fmt.Sprintf("**Meeting:** %s", meeting))
	}
	if !updatedAt.IsZero() {
		parts = append(parts, "", fmt.Sprintf("*Last updated: %s*", updatedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
	}
	return strings.Join(parts, "\n")
}

func meetingID(labels []string) string {
	for _, label := range labels {
		if strings.HasPrefix(label, "meeting/") {
			return strings.TrimPrefix(label, "meeting/")
		}
	}
	return ""
}
