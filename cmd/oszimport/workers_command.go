package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"oszimport/internal/procmon"
)

func newWorkersCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Show target processes and which ones count as import workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			monitor := procmon.New(cfg.Monitor.ProcessName, cfg.WorkerMemoryThreshold(), nil)
			samples, err := monitor.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			workers := 0
			for _, s := range samples {
				if s.Worker {
					workers++
				}
			}

			if jsonOutput {
				if samples == nil {
					samples = []procmon.Sample{}
				}
				return writeJSON(cmd, map[string]any{
					"process_name":    monitor.Name,
					"threshold_bytes": monitor.Threshold,
					"workers":         workers,
					"processes":       samples,
				})
			}

			out := cmd.OutOrStdout()
			if len(samples) == 0 {
				fmt.Fprintf(out, "No %q processes running\n", monitor.Name)
				return nil
			}
			rows := make([][]string, 0, len(samples))
			for _, s := range samples {
				rows = append(rows, []string{
					strconv.FormatInt(int64(s.PID), 10),
					humanize.IBytes(s.RSS),
					yesNo(s.Worker),
				})
			}
			fmt.Fprint(out, renderTable([]tableColumn{
				{Header: "PID", Align: alignRight},
				{Header: "Memory", Align: alignRight},
				{Header: "Worker"},
			}, rows))
			fmt.Fprintf(out, "%d of %d %q process(es) below %s are import workers\n",
				workers, len(samples), monitor.Name, humanize.IBytes(monitor.Threshold))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
