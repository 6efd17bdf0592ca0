package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/logging"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/runlock"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/docstore"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/llm"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/tracker"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/services/workspace"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		verbose := c.verboseFlag != nil && *c.verboseFlag
		logger, err := logging.NewFromConfig(cfg, verbose)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) componentLogger(component string) (*slog.Logger, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return logging.NewComponentLogger(logger, component), nil
}

func (c *commandContext) trackerClient() (*tracker.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return tracker.NewClient(cfg.Tracker.BaseURL, cfg.Tracker.Token, cfg.Tracker.UserAgent), nil
}

func (c *commandContext) workspaceClient() (*workspace.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return workspace.NewClient(cfg.Workspace.BaseURL, cfg.Workspace.Token, cfg.Workspace.Version), nil
}

func (c *commandContext) llmClient() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}), nil
}

func (c *commandContext) docStoreClients() (*docstore.Client, *docstore.NotebookClient, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.DocStore.Enabled {
		return nil, nil, nil
	}
	docs := docstore.NewClient(cfg.DocStore.BaseURL, cfg.DocStore.Token, cfg.DocStore.FolderID)
	notebook := docstore.NewNotebookClient(cfg.DocStore.NotebookBaseURL, cfg.DocStore.NotebookToken)
	return docs, notebook, nil
}

// acquireRunLock serializes mutating commands. The remote APIs have no
// conditional insert, so the lookup-then-create window is closed here.
func (c *commandContext) acquireRunLock() (func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	release, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			return nil, errors.New("another p0d run is already in progress")
		}
		return nil, err
	}
	return release, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
