package retrofit

import (
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
)

// Episode is the workspace view of one episode row, with the enrichment
// fields the retrofit pipeline fills in.
type Episode struct {
	PageID        string
	Title         string
	Season        int
	Number        int
	Description   string
	Status        string
	CodeName      string
	PromptInput   string
	ScriptDocLink string
	TrackCloud    string
	Duration      string
	ShowNotesLink string
}

// ParseEpisode maps a workspace page onto an Episode. Missing properties
// read as zero values; the retrofit steps key on emptiness.
func ParseEpisode(page workspace.Page) Episode {
	return Episode{
		PageID:        page.ID,
		Title:         page.Text("Title"),
		Season:        int(page.Properties["Season"].NumberValue()),
		Number:        int(page.Properties["Episode"].NumberValue()),
		Description:   page.Text("Description"),
		Status:        page.Properties["Status"].SelectName(),
		CodeName:      page.Text("Code-Name"),
		PromptInput:   page.Text("Prompt-Input"),
		ScriptDocLink: page.Properties["Script-Doc-Link"].URL,
		TrackCloud:    page.Properties["Track-Cloud"].URL,
		Duration:      page.Text("Duration"),
		ShowNotesLink: page.Properties["Show-Notes-Link"].URL,
	}
}
