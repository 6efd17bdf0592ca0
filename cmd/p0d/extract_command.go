package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/tasks"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract <transcript.json>",
		Short: "Extract actionable tasks from a meeting transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("extract")
			if err != nil {
				return err
			}

			transcriptPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve transcript path: %w", err)
			}
			transcript, err := tasks.LoadTranscript(transcriptPath)
			if err != nil {
				return err
			}

			client, err := ctx.llmClient()
			if err != nil {
				return err
			}
			extractor := tasks.NewExtractor(client, logger)
			items := extractor.Extract(cmd.Context(), transcript)

			now := time.Now().UTC()
			doc := tasks.NewDocument(transcript.MeetingID, tasks.Summarize(transcript, items, now), items, now)

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = filepath.Join(cfg.Paths.OutputDir, fmt.Sprintf("%s_tasks.json", transcript.MeetingID))
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := doc.Save(target); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, doc)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extracted %d tasks from meeting %s\n", len(items), transcript.MeetingID)
			rows := make([][]string, 0, len(items))
			for _, task := range items {
				rows = append(rows, []string{task.TaskID, task.Agent, task.Priority, task.Title})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Task ID", "Agent", "Priority", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the tasks document")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the tasks document as JSON")
	return cmd
}
