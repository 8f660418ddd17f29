package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"oszimport/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var runID string
	var level string
	var component string
	var raw bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the structured log",
		Long: `Show recent entries from the JSON log file.

Use --run to narrow the output to one import (a run ID prefix is enough) and
--follow to keep printing entries as they are written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := logs.Filter{RunID: strings.TrimSpace(runID), Component: strings.TrimSpace(component)}
			if level != "" {
				if err := filter.MinLevel.UnmarshalText([]byte(level)); err != nil {
					return fmt.Errorf("invalid --level %q", level)
				}
			} else {
				filter.MinLevel = slog.LevelDebug
			}

			out := cmd.OutOrStdout()
			emit := func(line string) {
				rec, ok := logs.Parse(line)
				if !ok || !filter.Match(rec) {
					return
				}
				if raw {
					fmt.Fprintln(out, line)
					return
				}
				fmt.Fprintln(out, logs.Format(rec))
			}

			path := cfg.LogPath()
			tail, offset, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}
			_, err = logs.Follow(cmd.Context(), path, offset, 0, emit)
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing log lines to read")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries until interrupted")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries for this run ID or prefix")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&component, "component", "", "Only show entries from this component")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print matching entries as raw JSON")
	return cmd
}
