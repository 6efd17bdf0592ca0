// Package retrofit backfills episode rows with the artifacts they are
// missing: script documents from prompt text, generated audio from scripts,
// durations from audio files, and show-notes documents. Each step only runs
// when its output field is empty, so interrupted runs resume cleanly.
package retrofit
