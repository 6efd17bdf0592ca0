package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/runlock"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/testsupport"
)

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func setupCLIConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(filepath.Dir(cfg.Paths.LogDir), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return cfg, configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIExtractCommand(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)

	transcript := testsupport.WriteTranscript(t, t.TempDir(), "weekly-ops",
		"TODO: rotate the edge certificates.\nNEED TO update the incident runbook.")

	stdout, _, err := runCLI(t, configPath, "extract", transcript)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(stdout, "Extracted 2 tasks from meeting weekly-ops") {
		t.Fatalf("unexpected output: %s", stdout)
	}

	docPath := filepath.Join(cfg.Paths.OutputDir, "weekly-ops_tasks.json")
	if _, err := os.Stat(docPath); err != nil {
		t.Fatalf("tasks document missing: %v", err)
	}
}

func TestCLIIssuesSyncDryRun(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)

	transcript := testsupport.WriteTranscript(t, t.TempDir(), "planning",
		"TODO: draft the incident response template.")
	if _, _, err := runCLI(t, configPath, "extract", transcript); err != nil {
		t.Fatalf("extract: %v", err)
	}
	docPath := filepath.Join(cfg.Paths.OutputDir, "planning_tasks.json")

	stdout, _, err := runCLI(t, configPath, "issues", "sync", docPath, "--dry-run")
	if err != nil {
		t.Fatalf("issues sync: %v", err)
	}
	if !strings.Contains(stdout, "planned") {
		t.Fatalf("expected planned status in output: %s", stdout)
	}
	if !strings.Contains(stdout, "0 failed") {
		t.Fatalf("expected clean summary: %s", stdout)
	}
}

func TestCLIConfigInitWritesSampleAndHints(t *testing.T) {
	_, configPath := setupCLIConfig(t)
	target := filepath.Join(t.TempDir(), "fresh", "config.toml")

	stdout, _, err := runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
	if !strings.Contains(stdout, "Next steps:") || !strings.Contains(stdout, "tracker.token") {
		t.Fatalf("unexpected init output: %s", stdout)
	}

	if _, _, err := runCLI(t, configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}

func TestCLICodenamesCommand(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)

	stdout, _, err := runCLI(t, configPath, "codenames", "--seasons", "2", "--episodes", "3", "--preview", "2")
	if err != nil {
		t.Fatalf("codenames: %v", err)
	}
	if !strings.Contains(stdout, "Generated 6 code names") {
		t.Fatalf("unexpected output: %s", stdout)
	}
	if !strings.Contains(stdout, "P0D-S01-E001-AXIS-") {
		t.Fatalf("expected preview rows: %s", stdout)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "episode-code-names.json")); err != nil {
		t.Fatalf("json artifact missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "episode-code-names.txt")); err != nil {
		t.Fatalf("text artifact missing: %v", err)
	}
}

func TestCLIScheduleCommand(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)

	stdout, _, err := runCLI(t, configPath, "schedule", "--start", "2026-01-06", "--seasons", "1", "--episodes", "3", "--preview", "1")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !strings.Contains(stdout, "Scheduled 3 episodes") {
		t.Fatalf("unexpected output: %s", stdout)
	}
	// 2026-01-06 is a Tuesday; the first slot is Wednesday at 06:00 UTC.
	if !strings.Contains(stdout, "S01E001 | 2026-01-07 06:00 UTC | Wednesday") {
		t.Fatalf("expected normalized first entry: %s", stdout)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "release-schedule.txt")); err != nil {
		t.Fatalf("schedule listing missing: %v", err)
	}
}

func TestCLIEpisodesListEmpty(t *testing.T) {
	_, configPath := setupCLIConfig(t)

	stdout, _, err := runCLI(t, configPath, "episodes", "list")
	if err != nil {
		t.Fatalf("episodes list: %v", err)
	}
	if !strings.Contains(stdout, "No episodes cataloged") {
		t.Fatalf("unexpected output: %s", stdout)
	}
}

func TestCLIUnknownCommandFails(t *testing.T) {
	_, configPath := setupCLIConfig(t)
	if _, _, err := runCLI(t, configPath, "does-not-exist"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestCLIMutatingCommandsRequireRunLock(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)

	transcript := testsupport.WriteTranscript(t, t.TempDir(), "standup",
		"TODO: review the open firewall rules.")
	if _, _, err := runCLI(t, configPath, "extract", transcript); err != nil {
		t.Fatalf("extract: %v", err)
	}
	docPath := filepath.Join(cfg.Paths.OutputDir, "standup_tasks.json")

	release, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer release()

	if _, _, err := runCLI(t, configPath, "issues", "sync", docPath); err == nil {
		t.Fatal("expected issues sync to fail while the lock is held")
	} else if !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := runCLI(t, configPath, "results", "sync",
		"--agent", "A-01", "--repo", "PR-CYBR-AGENT-01", "--issue", "7"); err == nil {
		t.Fatal("expected results sync to fail while the lock is held")
	} else if !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("unexpected error: %v", err)
	}

	// Dry-run planning performs no writes and stays available.
	if _, _, err := runCLI(t, configPath, "issues", "sync", docPath, "--dry-run"); err != nil {
		t.Fatalf("dry-run should not need the lock: %v", err)
	}
}
