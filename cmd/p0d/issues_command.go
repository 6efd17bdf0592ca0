package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/issuesync"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/tasks"
)

func newIssuesCommand(ctx *commandContext) *cobra.Command {
	issuesCmd := &cobra.Command{
		Use:   "issues",
		Short: "Issue tracker operations",
	}
	issuesCmd.AddCommand(newIssuesSyncCommand(ctx))
	return issuesCmd
}

func newIssuesSyncCommand(ctx *commandContext) *cobra.Command {
	var agentsPath string
	var dryRun bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync <tasks.json>",
		Short: "Create or update tracker issues for a tasks document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.componentLogger("issuesync")
			if err != nil {
				return err
			}

			docPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve tasks path: %w", err)
			}
			doc, err := tasks.LoadDocument(docPath)
			if err != nil {
				return err
			}

			mapping := issuesync.DefaultMapping()
			if path := strings.TrimSpace(agentsPath); path != "" {
				expanded, err := config.ExpandPath(path)
				if err != nil {
					return fmt.Errorf("resolve agents path: %w", err)
				}
				mapping, err = issuesync.LoadMapping(expanded)
				if err != nil {
					return err
				}
			}

			if !dryRun {
				release, err := ctx.acquireRunLock()
				if err != nil {
					return err
				}
				defer release()
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.trackerClient()
			if err != nil {
				return err
			}
			syncer := issuesync.NewSynchronizer(client, mapping, logger,
				issuesync.WithDryRun(dryRun),
				issuesync.WithPacing(time.Duration(cfg.Tracker.CallDelayMS)*time.Millisecond))
			results := syncer.Sync(cmd.Context(), doc)

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(results))
				failed := 0
				for _, result := range results {
					issue := ""
					if result.IssueNumber > 0 {
						issue = strconv.Itoa(result.IssueNumber)
					}
					detail := result.Repo
					if result.Failed() {
						failed++
						detail = result.Error
					}
					rows = append(rows, []string{result.TaskID, result.Status, issue, detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Task ID", "Status", "Issue", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				summaryLine(out, failed, "Synced %d tasks, %d failed", len(results), failed)
			}

			for _, result := range results {
				if result.Failed() {
					return fmt.Errorf("issue sync completed with failures")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentsPath, "agents", "", "Path to the agents.yaml routing file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the sync without writing to the tracker")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit results as JSON")
	return cmd
}
