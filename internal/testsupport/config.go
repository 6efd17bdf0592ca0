package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.EpisodesDir = filepath.Join(base, "episodes")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.PromptsDir = filepath.Join(base, "prompts")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Tracker.Token = "test-token"
	cfgVal.Tracker.CallDelayMS = 0
	cfgVal.Workspace.Token = "test-token"
	cfgVal.Workspace.DatabaseID = "test-database"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithTrackerURL points the tracker client at a test server.
func WithTrackerURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tracker.BaseURL = url
	}
}

// WithWorkspaceURL points the workspace client at a test server.
func WithWorkspaceURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workspace.BaseURL = url
	}
}

// WithSeasonDatabase registers a per-season database ID on the test config.
func WithSeasonDatabase(season string, databaseID string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Workspace.Seasons == nil {
			b.cfg.Workspace.Seasons = map[string]string{}
		}
		b.cfg.Workspace.Seasons[season] = databaseID
	}
}
