package upsert

import (
	"context"
	"fmt"
)

// Outcome reports which branch of an upsert ran.
type Outcome string

const (
	// OutcomeCreated means no existing record matched and a new one was made.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means an existing record matched and was overwritten.
	OutcomeUpdated Outcome = "updated"
)

// Result describes a completed upsert.
type Result struct {
	Outcome Outcome
	// Ref is the backend's handle for the record: an issue number, a page
	// ID, whatever the target uses to address it.
	Ref string
}

// Target is a backend that can be upserted into. Find must distinguish
// "not found" (empty ref, nil error) from a failed lookup (non-nil error);
// a failed lookup must never be treated as absence, or retries would
// duplicate records.
type Target interface {
	Find(ctx context.Context, id string) (ref string, err error)
	Create(ctx context.Context, id string) (ref string, err error)
	Update(ctx context.Context, ref string) error
}

// Do runs the lookup-then-write protocol against a target: find the record
// for id, update it when present, create it when absent. Lookup failures
// abort the operation.
func Do(ctx context.Context, target Target, id string) (Result, error) {
	ref, err := target.Find(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("find %s: %w", id, err)
	}
	if ref != "" {
		if err := target.Update(ctx, ref); err != nil {
			return Result{}, fmt.Errorf("update %s: %w", id, err)
		}
		return Result{Outcome: OutcomeUpdated, Ref: ref}, nil
	}
	created, err := target.Create(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("create %s: %w", id, err)
	}
	return Result{Outcome: OutcomeCreated, Ref: created}, nil
}
