package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Release days follow the Monday/Wednesday/Friday cadence at 06:00 UTC.
var releaseDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

const releaseHour = 6

// Entry is one scheduled episode release.
type Entry struct {
	Season  int
	Episode int
	Release time.Time
}

// Generator produces the full release schedule.
type Generator struct {
	Start             time.Time
	Seasons           int
	EpisodesPerSeason int
}

// NewGenerator builds a schedule generator seeded at start.
func NewGenerator(start time.Time, seasons, episodesPerSeason int) *Generator {
	if seasons <= 0 {
		seasons = 17
	}
	if episodesPerSeason <= 0 {
		episodesPerSeason = 52
	}
	return &Generator{Start: start, Seasons: seasons, EpisodesPerSeason: episodesPerSeason}
}

// NextReleaseDay returns the first release slot strictly matching a release
// weekday at or after the given date, normalized to 06:00 UTC. A date
// already on a release day maps to that day.
func NextReleaseDay(date time.Time) time.Time {
	date = date.UTC()
	for offset := 0; offset < 7; offset++ {
		candidate := date.AddDate(0, 0, offset)
		for _, day := range releaseDays {
			if candidate.Weekday() == day {
				return time.Date(candidate.Year(), candidate.Month(), candidate.Day(), releaseHour, 0, 0, 0, time.UTC)
			}
		}
	}
	// Unreachable: every 7-day window contains a Monday.
	return date
}

// Generate lays out every episode on the Monday/Wednesday/Friday cadence,
// season after season with no gap beyond the next release slot.
func (g *Generator) Generate() []Entry {
	entries := make([]Entry, 0, g.Seasons*g.EpisodesPerSeason)
	current := NextReleaseDay(g.Start)
	for season := 1; season <= g.Seasons; season++ {
		for episode := 1; episode <= g.EpisodesPerSeason; episode++ {
			entries = append(entries, Entry{Season: season, Episode: episode, Release: current})
			current = NextReleaseDay(current.AddDate(0, 0, 1))
		}
	}
	return entries
}

// FormatEntry renders one schedule line.
func FormatEntry(entry Entry) string {
	return fmt.Sprintf("S%02dE%03d | %s %s UTC | %s",
		entry.Season,
		entry.Episode,
		entry.Release.Format("2006-01-02"),
		entry.Release.Format("15:04"),
		entry.Release.Weekday())
}

type artifactEntry struct {
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Release string `json:"release"`
	Weekday string `json:"weekday"`
}

type artifact struct {
	GeneratedAt   string          `json:"generated_at"`
	Pattern       string          `json:"pattern"`
	TotalEpisodes int             `json:"total_episodes"`
	TotalSeasons  int             `json:"total_seasons"`
	Episodes      []artifactEntry `json:"episodes"`
}

// Save writes the schedule listing to outputDir/release-schedule.txt and a
// JSON artifact alongside it.
func (g *Generator) Save(entries []Entry, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	payload := artifact{
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Pattern:       "Monday/Wednesday/Friday at 06:00 UTC",
		TotalEpisodes: len(entries),
		TotalSeasons:  g.Seasons,
		Episodes:      make([]artifactEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		payload.Episodes = append(payload.Episodes, artifactEntry{
			Season:  entry.Season,
			Episode: entry.Episode,
			Release: entry.Release.Format(time.RFC3339),
			Weekday: entry.Release.Weekday().String(),
		})
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode schedule: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "release-schedule.json"), append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write json artifact: %w", err)
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	b.WriteString("PR-CYBR-P0D Release Schedule\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))
	b.WriteString("Pattern: Monday/Wednesday/Friday at 06:00 UTC\n")
	b.WriteString(rule + "\n\n")

	currentSeason := 0
	for _, entry := range entries {
		if entry.Season != currentSeason {
			if currentSeason != 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Season %d\n", entry.Season)
			b.WriteString(strings.Repeat("-", 60) + "\n")
			currentSeason = entry.Season
		}
		b.WriteString(FormatEntry(entry) + "\n")
	}
	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Total Episodes: %d\n", len(entries))
	fmt.Fprintf(&b, "Total Seasons: %d\n", g.Seasons)
	b.WriteString(rule + "\n")

	path := filepath.Join(outputDir, "release-schedule.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write schedule: %w", err)
	}
	return path, nil
}
