package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/schedule"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var startDate string
	var seasons int
	var episodesPerSeason int
	var outputDir string
	var preview int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate the Monday/Wednesday/Friday release schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if startDate == "" {
				startDate = cfg.Schedule.StartDate
			}
			start, err := time.ParseInLocation("2006-01-02", startDate, time.UTC)
			if err != nil {
				return fmt.Errorf("parse start date %q: %w", startDate, err)
			}
			if seasons <= 0 {
				seasons = cfg.Schedule.Seasons
			}
			if episodesPerSeason <= 0 {
				episodesPerSeason = cfg.Schedule.EpisodesPerSeason
			}

			target := strings.TrimSpace(outputDir)
			if target == "" {
				target = cfg.Paths.OutputDir
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			generator := schedule.NewGenerator(start, seasons, episodesPerSeason)
			entries := generator.Generate()
			path, err := generator.Save(entries, target, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scheduled %d episodes, wrote %s\n", len(entries), path)
			if preview > 0 {
				limit := preview
				if limit > len(entries) {
					limit = len(entries)
				}
				for _, entry := range entries[:limit] {
					fmt.Fprintln(out, schedule.FormatEntry(entry))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "First release date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&seasons, "seasons", 0, "Number of seasons to schedule")
	cmd.Flags().IntVar(&episodesPerSeason, "episodes", 0, "Episodes per season")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the schedule listing")
	cmd.Flags().IntVar(&preview, "preview", 0, "Print the first N schedule entries")
	return cmd
}
