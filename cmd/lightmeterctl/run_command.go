package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lightmeterctl/internal/history"
	"lightmeterctl/internal/runlock"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch the daemon if absent, then rotate its error log",
		Long: `Run one launch cycle: check whether the daemon is already running,
launch it in the foreground when it is not (blocking until it exits),
then rotate a non-empty error log aside. With --force the liveness
check is skipped and a launch is always attempted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := newConsoleLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			r, err := buildRunner(cfg, logger, store, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			trigger := history.TriggerManual
			if _, err := r.RunCycle(cmd.Context(), trigger, force); err != nil {
				if errors.Is(err, runlock.ErrBusy) {
					return fmt.Errorf("%w; wait for it to finish or check %s", runlock.ErrBusy, cfg.LockPath())
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the liveness check and always launch")
	return cmd
}
