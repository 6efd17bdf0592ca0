package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for local artifacts.
type Paths struct {
	EpisodesDir string `toml:"episodes_dir"`
	OutputDir   string `toml:"output_dir"`
	PromptsDir  string `toml:"prompts_dir"`
	LogDir      string `toml:"log_dir"`
}

// Tracker contains configuration for the issue tracker API.
type Tracker struct {
	BaseURL   string `toml:"base_url"`
	Token     string `toml:"token"`
	UserAgent string `toml:"user_agent"`
	// CallDelayMS paces successive write calls against the tracker API.
	CallDelayMS int `toml:"call_delay_ms"`
}

// Workspace contains configuration for the workspace database API.
type Workspace struct {
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token"`
	Version    string `toml:"version"`
	DatabaseID string `toml:"database_id"`
	// Seasons maps season numbers to per-season database IDs. Entries may
	// also come from P0D_S<n>_DB_ID environment variables for seasons
	// 1 through SeasonCount.
	Seasons     map[string]string `toml:"seasons"`
	SeasonCount int               `toml:"season_count"`
}

// DocStore contains configuration for the document store integration.
type DocStore struct {
	Enabled         bool   `toml:"enabled"`
	BaseURL         string `toml:"base_url"`
	Token           string `toml:"token"`
	FolderID        string `toml:"folder_id"`
	NotebookBaseURL string `toml:"notebook_base_url"`
	NotebookToken   string `toml:"notebook_token"`
}

// LLM contains connection settings for AI-assisted task extraction.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Sync contains retry and pacing settings for episode downloads.
type Sync struct {
	RetryAttempts     int    `toml:"retry_attempts"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
	DownloadTimeout   int    `toml:"download_timeout"`
	AudioBitrateKbps  int    `toml:"audio_bitrate_kbps"`
	LiveProperty      string `toml:"live_property"`
}

// Schedule contains defaults for the release schedule generator.
type Schedule struct {
	Seasons           int    `toml:"seasons"`
	EpisodesPerSeason int    `toml:"episodes_per_season"`
	StartDate         string `toml:"start_date"`
}

// Naming contains defaults for the code-name generator.
type Naming struct {
	Prefix string `toml:"prefix"`
	Theme  string `toml:"theme"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the toolkit.
//
// Configuration sections by subsystem:
//   - Paths: local artifact directories (episodes, generated tables, logs)
//   - Tracker: issue tracker API endpoint, token, and write pacing
//   - Workspace: workspace database API, default and per-season database IDs
//   - DocStore: document store and audio-overview integration
//   - LLM: AI-assisted task extraction connection settings
//   - Sync: episode download retry policy
//   - Schedule / Naming: generator defaults
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tracker   Tracker   `toml:"tracker"`
	Workspace Workspace `toml:"workspace"`
	DocStore  DocStore  `toml:"docstore"`
	LLM       LLM       `toml:"llm"`
	Sync      Sync      `toml:"sync"`
	Schedule  Schedule  `toml:"schedule"`
	Naming    Naming    `toml:"naming"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/p0d/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and credential fields resolved from
// the environment where the file leaves them empty.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("p0d.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local artifact directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.EpisodesDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the advisory lock file guarding remote sync runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "p0d.lock")
}

// CatalogPath returns the location of the local download catalog database.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.LogDir, "catalog.db")
}

// SeasonDatabase pairs a season number with its workspace database ID.
// Season 0 indicates the default (fallback) database.
type SeasonDatabase struct {
	Season     int
	DatabaseID string
}

// SeasonDatabases returns (season, database ID) pairs for every configured
// season in ascending season order. When no per-season database is set, the
// default database ID is returned under season 0.
func (c *Config) SeasonDatabases() []SeasonDatabase {
	var out []SeasonDatabase
	for season := 1; season <= c.Workspace.SeasonCount; season++ {
		id := strings.TrimSpace(c.Workspace.Seasons[fmt.Sprintf("%d", season)])
		if id == "" {
			continue
		}
		out = append(out, SeasonDatabase{Season: season, DatabaseID: id})
	}
	if len(out) == 0 && strings.TrimSpace(c.Workspace.DatabaseID) != "" {
		out = append(out, SeasonDatabase{Season: 0, DatabaseID: c.Workspace.DatabaseID})
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
