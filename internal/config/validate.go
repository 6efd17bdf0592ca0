package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable. Credential presence is
// deliberately not checked here: commands that perform remote writes verify
// their own tokens so that dry runs and the pure generators work without any.
func (c *Config) Validate() error {
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateWorkspace(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTracker() error {
	if c.Tracker.BaseURL == "" {
		return errors.New("tracker.base_url must be set")
	}
	return nil
}

func (c *Config) validateWorkspace() error {
	if c.Workspace.BaseURL == "" {
		return errors.New("workspace.base_url must be set")
	}
	if c.Workspace.Version == "" {
		return errors.New("workspace.version must be set")
	}
	if c.Workspace.SeasonCount <= 0 {
		return errors.New("workspace.season_count must be positive")
	}
	for key := range c.Workspace.Seasons {
		var season int
		if _, err := fmt.Sscanf(key, "%d", &season); err != nil || season < 1 {
			return fmt.Errorf("workspace.seasons key %q is not a season number", key)
		}
		if season > c.Workspace.SeasonCount {
			return fmt.Errorf("workspace.seasons key %q exceeds season_count %d", key, c.Workspace.SeasonCount)
		}
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.RetryAttempts <= 0 {
		return errors.New("sync.retry_attempts must be positive")
	}
	if c.Sync.DownloadTimeout <= 0 {
		return errors.New("sync.download_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Seasons <= 0 {
		return errors.New("schedule.seasons must be positive")
	}
	if c.Schedule.EpisodesPerSeason <= 0 {
		return errors.New("schedule.episodes_per_season must be positive")
	}
	if _, err := time.Parse("2006-01-02", c.Schedule.StartDate); err != nil {
		return fmt.Errorf("schedule.start_date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

func (c *Config) validateNaming() error {
	if c.Naming.Prefix == "" {
		return errors.New("naming.prefix must be set")
	}
	if c.Naming.Theme == "" {
		return errors.New("naming.theme must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
