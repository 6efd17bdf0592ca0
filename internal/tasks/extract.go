package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/llm"
)

const (
	stubTaskLimit   = 10
	stubTitleLength = 100

	defaultAgent = "A-01"
	defaultRepo  = "PR-CYBR-AGENT-01"
)

var actionKeywords = []string{
	"TODO", "ACTION ITEM", "TASK", "NEED TO", "SHOULD",
	"UPDATE", "FIX", "IMPLEMENT", "CREATE", "ADD",
}

// ExtractStub derives tasks from a transcript with keyword matching. One
// task per line containing an action keyword, capped at ten per meeting,
// titled with the first hundred characters of the line. Kept as the fallback
// when no model API key is configured.
func ExtractStub(transcript *Transcript) []Task {
	var items []Task
	counter := 1
	for _, line := range strings.Split(transcript.Transcript, "\n") {
		upper := strings.ToUpper(line)
		matched := false
		for _, keyword := range actionKeywords {
			if strings.Contains(upper, keyword) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		trimmed := strings.TrimSpace(line)
		title := truncateRunes(trimmed, stubTitleLength)
		items = append(items, Task{
			TaskID:      fmt.Sprintf("%s_TASK_%03d", transcript.MeetingID, counter),
			Agent:       defaultAgent,
			Repo:        defaultRepo,
			Title:       title,
			Description: trimmed,
			Priority:    "medium",
			Type:        "enhancement",
			Labels:      []string{"automation/codex", "meeting/" + transcript.MeetingID},
			Explicit:    false,
		})
		counter++
		if counter > stubTaskLimit {
			break
		}
	}
	return items
}

const extractionSystemPrompt = `You extract actionable engineering tasks from meeting transcripts.
Respond with JSON only: {"tasks":[{"agent":"A-01","title":"...","description":"...","priority":"low|medium|high","type":"bug|enhancement|documentation","explicit":true|false}]}.
Set explicit to true only when the transcript states the task outright. Limit to the ten most important tasks.`

// Extractor turns transcripts into task lists, preferring the model-backed
// path and falling back to keyword matching when the model is unavailable.
type Extractor struct {
	client *llm.Client
	logger *slog.Logger
}

// NewExtractor builds an extractor. client may be nil or unconfigured, in
// which case only the stub path runs.
func NewExtractor(client *llm.Client, logger *slog.Logger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

// Extract produces tasks for a transcript. Model failures degrade to the
// stub rather than failing the run: an extraction with weaker tasks beats no
// extraction at all.
func (e *Extractor) Extract(ctx context.Context, transcript *Transcript) []Task {
	if e.client == nil || !e.client.Configured() {
		e.logger.Warn("model api key not set, using stub task extraction",
			slog.String(logging.FieldMeeting, transcript.MeetingID))
		return ExtractStub(transcript)
	}

	content, err := e.client.CompleteJSON(ctx, extractionSystemPrompt, transcript.Transcript)
	if err != nil {
		e.logger.Warn("model extraction failed, falling back to stub",
			slog.String(logging.FieldMeeting, transcript.MeetingID),
			logging.Error(err))
		return ExtractStub(transcript)
	}

	var parsed struct {
		Tasks []struct {
			Agent       string `json:"agent"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
			Type        string `json:"type"`
			Explicit    bool   `json:"explicit"`
		} `json:"tasks"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		e.logger.Warn("model response unparsable, falling back to stub",
			slog.String(logging.FieldMeeting, transcript.MeetingID),
			logging.Error(err))
		return ExtractStub(transcript)
	}

	var items []Task
	for i, raw := range parsed.Tasks {
		if i >= stubTaskLimit {
			break
		}
		title := truncateRunes(strings.TrimSpace(raw.Title), stubTitleLength)
		if title == "" {
			continue
		}
		agent := strings.TrimSpace(raw.Agent)
		if agent == "" {
			agent = defaultAgent
		}
		items = append(items, Task{
			TaskID:      fmt.Sprintf("%s_TASK_%03d", transcript.MeetingID, len(items)+1),
			Agent:       agent,
			Title:       title,
			Description: strings.TrimSpace(raw.Description),
			Priority:    normalizeChoice(raw.Priority, "medium", "low", "medium", "high"),
			Type:        normalizeChoice(raw.Type, "enhancement", "bug", "enhancement", "documentation"),
			Labels:      []string{"automation/codex", "meeting/" + transcript.MeetingID},
			Explicit:    raw.Explicit,
		})
	}
	if len(items) == 0 {
		e.logger.Warn("model returned no usable tasks, falling back to stub",
			slog.String(logging.FieldMeeting, transcript.MeetingID))
		return ExtractStub(transcript)
	}
	return items
}

// truncateRunes shortens s to at most limit runes, never splitting a
// multibyte character.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func normalizeChoice(value, fallback string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, option := range allowed {
		if value == option {
			return value
		}
	}
	return fallback
}
