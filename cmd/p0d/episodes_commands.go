package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/catalog"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/episodes"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/retrofit"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	episodesCmd := &cobra.Command{
		Use:   "episodes",
		Short: "Episode download and enrichment",
	}
	episodesCmd.AddCommand(newEpisodesPullCommand(ctx))
	episodesCmd.AddCommand(newEpisodesRetrofitCommand(ctx))
	episodesCmd.AddCommand(newEpisodesListCommand(ctx))
	return episodesCmd
}

func newEpisodesPullCommand(ctx *commandContext) *cobra.Command {
	var databaseID string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download live episode audio into the episodes directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("episodes")
			if err != nil {
				return err
			}

			target := databaseID
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

			store, err := catalog.Open(cfg.CatalogPath())
			if err != nil {
				return err
			}
			defer store.Close()

			ws, err := ctx.workspaceClient()
			if err != nil {
				return err
			}
			opts := []episodes.PullOption{
				episodes.WithRetry(cfg.Sync.RetryAttempts, time.Duration(cfg.Sync.RetryDelaySeconds)*time.Second),
				episodes.WithDownloadTimeout(time.Duration(cfg.Sync.DownloadTimeout) * time.Second),
			}
			docs, _, err := ctx.docStoreClients()
			if err != nil {
				return err
			}
			if docs != nil {
				opts = append(opts, episodes.WithUploader(docs))
			}
			puller := episodes.NewPuller(ws, store, cfg.Paths.EpisodesDir, cfg.Sync.LiveProperty, logger, opts...)

			downloaded, failed, err := puller.Sync(cmd.Context(), target)
			if err != nil {
				return err
			}

			summaryLine(cmd.OutOrStdout(), failed, "Downloaded %d episodes, %d failed", downloaded, failed)
			if failed > 0 {
				return fmt.Errorf("episode sync completed with failures")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseID, "database", "", "Workspace database ID override")
	return cmd
}

func newEpisodesRetrofitCommand(ctx *commandContext) *cobra.Command {
	var status string
	var bitrate int

	cmd := &cobra.Command{
		Use:   "retrofit",
		Short: "Fill in missing artifacts on episode rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("retrofit")
			if err != nil {
				return err
			}

			seasons := cfg.SeasonDatabases()
			if len(seasons) == 0 {
				return errors.New("no season databases configured")
			}

			release, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer release()

			ws, err := ctx.workspaceClient()
			if err != nil {
				return err
			}
			docs, notebook, err := ctx.docStoreClients()
			if err != nil {
				return err
			}

			kbps := bitrate
			if kbps <= 0 {
				kbps = cfg.Sync.AudioBitrateKbps
			}

			var (
				docsAPI     retrofit.DocumentStore
				notebookAPI retrofit.NotebookAPI
			)
			if docs != nil {
				docsAPI = docs
			}
			if notebook != nil {
				notebookAPI = notebook
			}
			if docsAPI == nil {
				warnLine(cmd.OutOrStdout(), "Document store disabled; script and show-notes steps will be skipped")
			}

			notes, err := ctx.llmClient()
			if err != nil {
				return err
			}
			runner := retrofit.New(ws, docsAPI, notebookAPI,
				retrofit.NewContentLengthProber(nil, kbps), cfg.Paths.PromptsDir, logger,
				retrofit.WithNotesWriter(notes))
			summary, err := runner.Run(cmd.Context(), seasons, status)
			if err != nil {
				return err
			}

			summaryLine(cmd.OutOrStdout(), summary.Failed, "Episodes: %d, enriched: %d, skipped: %d, failed: %d",
				summary.Episodes, summary.Enriched, summary.Skipped, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("retrofit completed with failures")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "Not started", "Episode status to retrofit")
	cmd.Flags().IntVar(&bitrate, "bitrate", 0, "Audio bitrate in kbps used to estimate durations")
	return cmd
}

func newEpisodesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List downloaded episodes from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg.CatalogPath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No episodes cataloged")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					strconv.Itoa(entry.Season),
					strconv.Itoa(entry.Episode),
					entry.Title,
					entry.Filename,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Season", "Episode", "Title", "File"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit catalog entries as JSON")
	return cmd
}
