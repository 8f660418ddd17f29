package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"oszimport/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No import runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						humanize.Time(run.StartedAt),
						filepath.Base(run.Source),
						string(run.Status),
						fmt.Sprintf("%d/%d", run.Completed, run.Total),
						strconv.Itoa(run.LaunchFailures),
					})
				}
				fmt.Fprint(out, renderTable([]tableColumn{
					{Header: "Run"},
					{Header: "Started"},
					{Header: "Source"},
					{Header: "Status"},
					{Header: "Imported", Align: alignRight},
					{Header: "Failed", Align: alignRight},
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show; 0 shows all")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its items",
		Long:  "Show one run and its items. A unique prefix of the run ID is enough.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, items, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					if items == nil {
						items = []history.Item{}
					}
					return writeJSON(cmd, map[string]any{"run": run, "items": items})
				}
				printRun(cmd, run, items)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printRun(cmd *cobra.Command, run history.Run, items []history.Item) {
	out := cmd.OutOrStdout()
	p := newPalette(out)

	kind := statusOK
	switch run.Status {
	case history.StatusFailed:
		kind = statusError
	case history.StatusRunning:
		kind = statusInfo
	}

	fmt.Fprintf(out, "Run:        %s\n", run.ID)
	fmt.Fprintf(out, "Source:     %s\n", run.Source)
	if run.StagingDir != "" {
		fmt.Fprintf(out, "Staging:    %s (temporary: %s)\n", run.StagingDir, yesNo(run.Temporary))
	}
	fmt.Fprintf(out, "Status:     %s\n", p.paint(kind, string(run.Status)))
	fmt.Fprintf(out, "Imported:   %d/%d (batch size %d)\n", run.Completed, run.Total, run.BatchSize)
	fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format(time.DateTime))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(out, "Finished:   %s (%s)\n", run.FinishedAt.Local().Format(time.DateTime), run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	if run.Error != "" {
		fmt.Fprintf(out, "Error:      %s\n", p.paint(statusError, run.Error))
	}
	if run.CleanupError != "" {
		fmt.Fprintf(out, "Cleanup:    %s\n", p.paint(statusWarn, run.CleanupError))
	}

	if len(items) == 0 {
		return
	}
	fmt.Fprintln(out)
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(item.Batch),
			item.Name,
			yesNo(item.Launched),
			item.Error,
		})
	}
	fmt.Fprint(out, renderTable([]tableColumn{
		{Header: "Batch", Align: alignRight},
		{Header: "Item"},
		{Header: "Opened"},
		{Header: "Error"},
	}, rows))
}
