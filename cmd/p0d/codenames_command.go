package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PR-CYBR/PR-CYBR-P0D/internal/config"
	"github.com/PR-CYBR/PR-CYBR-P0D/internal/naming"
)

func newCodenamesCommand(ctx *commandContext) *cobra.Command {
	var seasons int
	var episodesPerSeason int
	var prefix string
	var theme string
	var outputDir string
	var preview int
	var shuffleSeed int64

	cmd := &cobra.Command{
		Use:   "codenames",
		Short: "Generate episode code names for the full season plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if prefix == "" {
				prefix = cfg.Naming.Prefix
			}
			if theme == "" {
				theme = cfg.Naming.Theme
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

			generator := naming.NewGenerator(prefix, theme, seasons, episodesPerSeason)
			var names []naming.CodeName
			if cmd.Flags().Changed("shuffle-seed") {
				names = generator.GenerateShuffled(shuffleSeed)
			} else {
				names = generator.Generate()
			}
			if err := generator.Save(names, target, time.Now()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d code names in %s\n", len(names), target)
			if preview > 0 {
				limit := preview
				if limit > len(names) {
					limit = len(names)
				}
				rows := make([][]string, 0, limit)
				for _, name := range names[:limit] {
					rows = append(rows, []string{
						fmt.Sprintf("S%02dE%03d", name.Season, name.Episode),
						name.CodeName,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Episode", "Code Name"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&seasons, "seasons", 0, "Number of seasons to plan")
	cmd.Flags().IntVar(&episodesPerSeason, "episodes", 0, "Episodes per season")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Code name prefix")
	cmd.Flags().StringVar(&theme, "theme", "", "Code name theme")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the generated artifacts")
	cmd.Flags().IntVar(&preview, "preview", 0, "Print the first N generated names")
	cmd.Flags().Int64Var(&shuffleSeed, "shuffle-seed", 0, "Shuffle symbol assignment with this seed")
	return cmd
}
