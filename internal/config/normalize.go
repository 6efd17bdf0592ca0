package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTracker()
	c.normalizeWorkspace()
	c.normalizeDocStore()
	c.normalizeLLM()
	c.normalizeSync()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.EpisodesDir, err = expandPath(c.Paths.EpisodesDir); err != nil {
		return fmt.Errorf("paths.episodes_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.PromptsDir, err = expandPath(c.Paths.PromptsDir); err != nil {
		return fmt.Errorf("paths.prompts_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTracker() {
	c.Tracker.BaseURL = strings.TrimRight(strings.TrimSpace(c.Tracker.BaseURL), "/")
	c.Tracker.Token = strings.TrimSpace(c.Tracker.Token)
	if c.Tracker.Token == "" {
		c.Tracker.Token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}
	if c.Tracker.UserAgent == "" {
		c.Tracker.UserAgent = defaultTrackerUserAgent
	}
	if c.Tracker.CallDelayMS < 0 {
		c.Tracker.CallDelayMS = 0
	}
}

func (c *Config) normalizeWorkspace() {
	c.Workspace.BaseURL = strings.TrimRight(strings.TrimSpace(c.Workspace.BaseURL), "/")
	c.Workspace.Token = strings.TrimSpace(c.Workspace.Token)
	if c.Workspace.Token == "" {
		c.Workspace.Token = strings.TrimSpace(os.Getenv("NOTION_TOKEN"))
	}
	c.Workspace.DatabaseID = strings.TrimSpace(c.Workspace.DatabaseID)
	if c.Workspace.DatabaseID == "" {
		c.Workspace.DatabaseID = strings.TrimSpace(os.Getenv("NOTION_DATABASE_ID"))
	}
	if c.Workspace.SeasonCount <= 0 {
		c.Workspace.SeasonCount = defaultSeasonCount
	}
	if c.Workspace.Seasons == nil {
		c.Workspace.Seasons = map[string]string{}
	}
	// Environment entries fill gaps; explicit config wins. The scan covers
	// exactly the declared season count.
	for season := 1; season <= c.Workspace.SeasonCount; season++ {
		key := fmt.Sprintf("%d", season)
		if strings.TrimSpace(c.Workspace.Seasons[key]) != "" {
			continue
		}
		if id := strings.TrimSpace(os.Getenv(fmt.Sprintf("P0D_S%d_DB_ID", season))); id != "" {
			c.Workspace.Seasons[key] = id
		}
	}
}

func (c *Config) normalizeDocStore() {
	c.DocStore.BaseURL = strings.TrimRight(strings.TrimSpace(c.DocStore.BaseURL), "/")
	c.DocStore.NotebookBaseURL = strings.TrimRight(strings.TrimSpace(c.DocStore.NotebookBaseURL), "/")
	c.DocStore.Token = strings.TrimSpace(c.DocStore.Token)
	if c.DocStore.Token == "" {
		c.DocStore.Token = strings.TrimSpace(os.Getenv("P0D_DOCSTORE_TOKEN"))
	}
	c.DocStore.FolderID = strings.TrimSpace(c.DocStore.FolderID)
	if c.DocStore.FolderID == "" {
		c.DocStore.FolderID = strings.TrimSpace(os.Getenv("P0D_DRIVE_FOLDER_ID"))
	}
	c.DocStore.NotebookToken = strings.TrimSpace(c.DocStore.NotebookToken)
	if c.DocStore.NotebookToken == "" {
		c.DocStore.NotebookToken = strings.TrimSpace(os.Getenv("NOTEBOOK_LM_API_KEY"))
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.RetryAttempts <= 0 {
		c.Sync.RetryAttempts = defaultRetryAttempts
	}
	if c.Sync.RetryDelaySeconds < 0 {
		c.Sync.RetryDelaySeconds = defaultRetryDelay
	}
	if c.Sync.DownloadTimeout <= 0 {
		c.Sync.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Sync.AudioBitrateKbps <= 0 {
		c.Sync.AudioBitrateKbps = defaultAudioBitrate
	}
	c.Sync.LiveProperty = strings.TrimSpace(c.Sync.LiveProperty)
	if c.Sync.LiveProperty == "" {
		c.Sync.LiveProperty = defaultLiveProperty
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
