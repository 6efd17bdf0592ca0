package episodes

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
)

// Episode is the workspace view of one live episode.
type Episode struct {
	NotionID    string `json:"notion_id"`
	Title       string `json:"title"`
	FileURL     string `json:"file_url"`
	ReleaseDate string `json:"release_date"`
	Number      int    `json:"episode_number"`
	Description string `json:"description"`
}

// ParseEpisode maps a workspace page onto an Episode. Rows without a title
// or file URL are unusable and return nil.
func ParseEpisode(page workspace.Page) *Episode {
	episode := &Episode{
		NotionID:    page.ID,
		Title:       page.Text("Title"),
		FileURL:     page.Properties["File URL"].URL,
		ReleaseDate: page.Properties["Release Date"].DateStart(),
		Number:      int(page.Properties["Episode Number"].NumberValue()),
		Description: page.Text("Description"),
	}
	if episode.Title == "" || episode.FileURL == "" {
		return nil
	}
	return episode
}

// Filename derives the stable on-disk base name for an episode: numbered
// episodes use the zero-padded number, the rest fall back to a short title
// hash so changing nothing but the workspace row order never renames files.
func (e *Episode) Filename() string {
	slug := Slugify(e.Title)
	if e.Number > 0 {
		return fmt.Sprintf("episode-%03d-%s", e.Number, slug)
	}
	sum := md5.Sum([]byte(e.Title))
	return fmt.Sprintf("episode-%s-%s", hex.EncodeToString(sum[:])[:8], slug)
}
