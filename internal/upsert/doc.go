// Package upsert implements the idempotent write protocol shared by every
// external-system synchronizer: derive a stable identifier from fields that
// never change, look the record up by that identifier, then update or create.
// Running a sync twice converges on one record per source item instead of
// producing duplicates.
package upsert
