package notionsync

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/upsert"
)

type fakeWorkspace struct {
	pages    map[string]map[string]workspace.Property // pageID -> properties
	queryErr error

	queries, creates, updates int
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{pages: map[string]map[string]workspace.Property{}}
}

func (f *fakeWorkspace) QueryDatabase(_ context.Context, databaseID string, filter any) ([]workspace.Page, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	wanted := filter.(map[string]any)["rich_text"].(map[string]string)["equals"]
	var results []workspace.Page
	for id, props := range f.pages {
		if props["Task ID"].PlainText() == wanted {
			results = append(results, workspace.Page{ID: id, Properties: props})
		}
	}
	return results, nil
}

func (f *fakeWorkspace) CreatePage(_ context.Context, databaseID string, properties map[string]workspace.Property) (*workspace.Page, error) {
	f.creates++
	id := "page-" + properties["Task ID"].PlainText()[:8]
	f.pages[id] = properties
	return &workspace.Page{ID: id, Properties: properties}, nil
}

func (f *fakeWorkspace) UpdatePage(_ context.Context, pageID string, properties map[string]workspace.Property) (*workspace.Page, error) {
	f.updates++
	f.pages[pageID] = properties
	return &workspace.Page{ID: pageID, Properties: properties}, nil
}

func sampleCompletion() Completion {
	return Completion{
		Agent:       "A-01",
		Repo:        "PR-CYBR-AGENT-01",
		Issue:       42,
		MeetingDate: "2026-01-05",
		Summary:     "Patched the router firmware",
	}
}

func TestDeterministicIDStable(t *testing.T) {
	a := sampleCompletion().DeterministicID()
	b := sampleCompletion().DeterministicID()
	if a != b {
		t.Fatalf("ids differ: %s vs %s", a, b)
	}

	withPR := sampleCompletion()
	withPR.PR = 77
	withPR.Summary = "edited later"
	if withPR.DeterministicID() != a {
		t.Fatal("PR number and summary must not change the identifier")
	}

	otherIssue := sampleCompletion()
	otherIssue.Issue = 43
	if otherIssue.DeterministicID() == a {
		t.Fatal("different issue must produce a different identifier")
	}
}

func TestRecordCreatesThenUpdates(t *testing.T) {
	fake := newFakeWorkspace()
	syncer := NewSyncer(fake, "db-1", "PR-CYBR", logging.NewNop())

	first, id, err := syncer.Record(context.Background(), sampleCompletion())
	if err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if first.Outcome != upsert.OutcomeCreated {
		t.Fatalf("first outcome = %s", first.Outcome)
	}

	second, _, err := syncer.Record(context.Background(), sampleCompletion())
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if second.Outcome != upsert.OutcomeUpdated || second.Ref != first.Ref {
		t.Fatalf("second = %+v, first ref = %s", second, first.Ref)
	}
	if fake.creates != 1 || fake.updates != 1 {
		t.Fatalf("creates=%d updates=%d", fake.creates, fake.updates)
	}

	props := fake.pages[first.Ref]
	if props["Task ID"].PlainText() != id {
		t.Errorf("Task ID = %q, want %q", props["Task ID"].PlainText(), id)
	}
	if props["Status"].SelectName() != "Complete" {
		t.Errorf("Status = %q", props["Status"].SelectName())
	}
	if props["Issue URL"].URL != "https://github.com/PR-CYBR/PR-CYBR-AGENT-01/issues/42" {
		t.Errorf("Issue URL = %q", props["Issue URL"].URL)
	}
	if _, ok := props["PR"]; ok {
		t.Error("PR property should be absent without a PR number")
	}
}

func TestRecordIncludesPRWhenPresent(t *testing.T) {
	fake := newFakeWorkspace()
	syncer := NewSyncer(fake, "db-1", "PR-CYBR", logging.NewNop())

	completion := sampleCompletion()
	completion.PR = 77
	result, _, err := syncer.Record(context.Background(), completion)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	props := fake.pages[result.Ref]
	if props["PR"].NumberValue() != 77 {
		t.Errorf("PR = %v", props["PR"].NumberValue())
	}
	if props["PR URL"].URL != "https://github.com/PR-CYBR/PR-CYBR-AGENT-01/pull/77" {
		t.Errorf("PR URL = %q", props["PR URL"].URL)
	}
}

func TestRecordLookupFailureDoesNotCreate(t *testing.T) {
	fake := newFakeWorkspace()
	fake.queryErr = errors.New("ratelimited")
	syncer := NewSyncer(fake, "db-1", "PR-CYBR", logging.NewNop())

	if _, _, err := syncer.Record(context.Background(), sampleCompletion()); err == nil {
		t.Fatal("expected lookup error to propagate")
	}
	if fake.creates != 0 {
		t.Fatal("failed lookup must not create a page")
	}
}

func TestRecordTruncatesTitleAndSummary(t *testing.T) {
	fake := newFakeWorkspace()
	syncer := NewSyncer(fake, "db-1", "PR-CYBR", logging.NewNop())

	completion := sampleCompletion()
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'x'
	}
	completion.Summary = string(long)

	result, _, err := syncer.Record(context.Background(), completion)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	props := fake.pages[result.Ref]
	if len(props["Title"].PlainText()) != 100 {
		t.Errorf("title length = %d", len(props["Title"].PlainText()))
	}
	if len(props["Summary"].PlainText()) != 2000 {
		t.Errorf("summary length = %d", len(props["Summary"].PlainText()))
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("ñ", 150)
	got := truncate(long, 100)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8: %q", got)
	}
	if count := utf8.RuneCountInString(got); count != 100 {
		t.Fatalf("runes = %d, want 100", count)
	}
	if short := truncate("  short  ", 100); short != "short" {
		t.Fatalf("short input = %q", short)
	}
}
