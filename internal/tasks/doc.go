// Package tasks models meeting transcripts and the task documents extracted
// from them, and implements both the keyword-matching and model-backed
// extraction paths.
package tasks
