package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const documentVersion = "1.0"

// Task is one actionable item extracted from a meeting transcript. Records
// are immutable once written; a re-extraction run supersedes the whole
// document rather than editing rows in place.
type Task struct {
	TaskID      string   `json:"task_id"`
	Agent       string   `json:"agent"`
	Repo        string   `json:"repo"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Type        string   `json:"type"`
	Labels      []string `json:"labels"`
	Explicit    bool     `json:"explicit"`
}

// Transcript is the raw meeting input.
type Transcript struct {
	MeetingID  string `json:"meeting_id"`
	Timestamp  string `json:"timestamp"`
	Transcript string `json:"transcript"`
}

// Document is the extraction output consumed by the issue synchronizer.
type Document struct {
	MeetingID   string `json:"meeting_id"`
	Summary     string `json:"summary"`
	Tasks       []Task `json:"tasks"`
	ExtractedAt string `json:"extracted_at"`
	Version     string `json:"version"`
}

// LoadTranscript reads a transcript JSON file.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	if transcript.MeetingID == "" {
		transcript.MeetingID = "unknown"
	}
	return &transcript, nil
}

// LoadDocument reads a task document JSON file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task document %s: %w", path, err)
	}
	if doc.MeetingID == "" {
		return nil, errors.New("task document missing meeting_id")
	}
	return &doc, nil
}

// NewDocument assembles a versioned document, stamping the extraction time.
func NewDocument(meetingID, summary string, items []Task, now time.Time) *Document {
	return &Document{
		MeetingID:   meetingID,
		Summary:     summary,
		Tasks:       items,
		ExtractedAt: now.UTC().Format(time.RFC3339),
		Version:     documentVersion,
	}
}

// Save writes the document as indented JSON, creating parent directories.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task document: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write task document: %w", err)
	}
	return nil
}

// Summarize builds the one-line meeting summary used in documents and
// workspace rows.
func Summarize(transcript *Transcript, items []Task, now time.Time) string {
	timestamp := transcript.Timestamp
	if timestamp == "" {
		timestamp = now.UTC().Format(time.RFC3339)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Meeting %s held on %s. ", transcript.MeetingID, timestamp)
	fmt.Fprintf(&b, "Extracted %d actionable tasks. ", len(items))
	if len(items) > 0 {
		seen := map[string]struct{}{}
		var agents []string
		for _, task := range items {
			if _, ok := seen[task.Agent]; ok {
				continue
			}
			seen[task.Agent] = struct{}{}
			agents = append(agents, task.Agent)
		}
		sort.Strings(agents)
		fmt.Fprintf(&b, "Tasks assigned to agents: %s.", strings.Join(agents, ", "))
	}
	return strings.TrimSpace(b.String())
}
