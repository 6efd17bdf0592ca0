// Package llm provides a minimal client for OpenAI-compatible chat
// completion APIs, used to extract tasks and draft summaries from meeting
// transcripts. Requests retry with capped exponential backoff on transient
// failures.
package llm
