package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/notionsync"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Workspace completion records",
	}
	resultsCmd.AddCommand(newResultsSyncCommand(ctx))
	return resultsCmd
}

func newResultsSyncCommand(ctx *commandContext) *cobra.Command {
	var completion notionsync.Completion
	var databaseID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Record a task completion in the workspace database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("notionsync")
			if err != nil {
				return err
			}

			if strings.TrimSpace(completion.Agent) == "" || strings.TrimSpace(completion.Repo) == "" {
				return errors.New("--agent and --repo are required")
			}
			if completion.Issue <= 0 {
				return errors.New("--issue must be a positive issue number")
			}

			target := strings.TrimSpace(databaseID)
			if target == "" {
				target = cfg.Workspace.DatabaseID
			}
			if target == "" {
				return errors.New("no workspace database configured; set workspace.database_id or pass --database")
			}

			release, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer release()

			client, err := ctx.workspaceClient()
			if err != nil {
				return err
			}
			syncer := notionsync.NewSyncer(client, target, "", logger)
			result, id, err := syncer.Record(cmd.Context(), completion)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Completion %s %s (page %s)\n", id, result.Outcome, result.Ref)
			return nil
		},
	}

	cmd.Flags().StringVar(&completion.Agent, "agent", "", "Agent identifier (e.g. A-01)")
	cmd.Flags().StringVar(&completion.Repo, "repo", "", "Repository the work landed in")
	cmd.Flags().IntVar(&completion.Issue, "issue", 0, "Issue number")
	cmd.Flags().IntVar(&completion.PR, "pr", 0, "Pull request number, if any")
	cmd.Flags().StringVar(&completion.MeetingDate, "meeting-date", "", "Meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&completion.Summary, "summary", "", "Short summary of the completed work")
	cmd.Flags().StringVar(&databaseID, "database", "", "Workspace database ID override")
	return cmd
}
