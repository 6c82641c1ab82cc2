package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lightmeterctl/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent launch cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled; enable [history] in the configuration to record cycles.")
				return nil
			}

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list cycle history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cycles recorded yet.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of cycles to show")
	return cmd
}

func renderHistoryTable(records []history.Record) string {
	headers := []string{"Finished", "Trigger", "Running", "Launched", "Exit", "Rotated", "Error"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		exit := ""
		if rec.ExitCode.Valid {
			exit = strconv.FormatInt(rec.ExitCode.Int64, 10)
		}
		rotated := "no"
		if rec.Rotated {
			rotated = fmt.Sprintf("%d B", rec.RotatedBytes)
		}
		rows = append(rows, []string{
			rec.FinishedAt.Local().Format(time.DateTime),
			rec.Trigger,
			yesNo(rec.AlreadyRunning),
			yesNo(rec.Launched),
			exit,
			rotated,
			rec.Error,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}
