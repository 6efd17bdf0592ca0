package upsert

import (
	"context"
	"errors"
	"testing"
)

func TestKeyUUIDDeterministic(t *testing.T) {
	a := NewKey("PR-CYBR-AGENT-1", "PR-CYBR/agent-1", "42", "2026-01-05")
	b := NewKey("PR-CYBR-AGENT-1", "PR-CYBR/agent-1", "42", "2026-01-05")
	if a.UUID() != b.UUID() {
		t.Fatalf("equal tuples produced different UUIDs: %s vs %s", a.UUID(), b.UUID())
	}
	if a.String() != "PR-CYBR-AGENT-1:PR-CYBR/agent-1:42:2026-01-05" {
		t.Fatalf("unexpected serialization: %s", a.String())
	}
}

func TestKeyUUIDDistinct(t *testing.T) {
	a := NewKey("agent", "repo", "42", "2026-01-05")
	b := NewKey("agent", "repo", "43", "2026-01-05")
	if a.UUID() == b.UUID() {
		t.Fatal("distinct tuples produced identical UUIDs")
	}
}

func TestKeyFieldOrderMatters(t *testing.T) {
	a := NewKey("x", "y")
	b := NewKey("y", "x")
	if a.UUID() == b.UUID() {
		t.Fatal("field order should change the UUID")
	}
}

type fakeTarget struct {
	existing string
	findErr  error

	finds, creates, updates int
	updatedRef              string
}

func (f *fakeTarget) Find(_ context.Context, id string) (string, error) {
	f.finds++
	return f.existing, f.findErr
}

func (f *fakeTarget) Create(_ context.Context, id string) (string, error) {
	f.creates++
	f.existing = "ref-1"
	return f.existing, nil
}

func (f *fakeTarget) Update(_ context.Context, ref string) error {
	f.updates++
	f.updatedRef = ref
	return nil
}

func TestDoCreatesWhenAbsent(t *testing.T) {
	target := &fakeTarget{}
	res, err := Do(context.Background(), target, "id-1")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if res.Outcome != OutcomeCreated || res.Ref != "ref-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if target.creates != 1 || target.updates != 0 {
		t.Fatalf("creates=%d updates=%d", target.creates, target.updates)
	}
}

func TestDoUpdatesWhenPresent(t *testing.T) {
	target := &fakeTarget{existing: "ref-7"}
	res, err := Do(context.Background(), target, "id-1")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if res.Outcome != OutcomeUpdated || res.Ref != "ref-7" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if target.creates != 0 || target.updatedRef != "ref-7" {
		t.Fatalf("creates=%d updatedRef=%q", target.creates, target.updatedRef)
	}
}

func TestDoConvergesOnSecondRun(t *testing.T) {
	target := &fakeTarget{}
	first, err := Do(context.Background(), target, "id-1")
	if err != nil {
		t.Fatalf("first Do: %v", err)
	}
	second, err := Do(context.Background(), target, "id-1")
	if err != nil {
		t.Fatalf("second Do: %v", err)
	}
	if first.Outcome != OutcomeCreated || second.Outcome != OutcomeUpdated {
		t.Fatalf("outcomes: first=%s second=%s", first.Outcome, second.Outcome)
	}
	if second.Ref != first.Ref {
		t.Fatalf("second run targeted a different record: %s vs %s", second.Ref, first.Ref)
	}
	if target.creates != 1 {
		t.Fatalf("creates=%d, want 1", target.creates)
	}
}

func TestDoPropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("search rate limited")
	target := &fakeTarget{findErr: lookupErr}
	if _, err := Do(context.Background(), target, "id-1"); !errors.Is(err, lookupErr) {
		t.Fatalf("lookup error not propagated: %v", err)
	}
	if target.creates != 0 || target.updates != 0 {
		t.Fatal("failed lookup must not fall through to a write")
	}
}
