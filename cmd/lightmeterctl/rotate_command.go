package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lightmeterctl/internal/rotation"
	"lightmeterctl/internal/runlock"
	"lightmeterctl/internal/runner"
)

func newRotateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the daemon's error log without launching",
		Long: `Rotate a non-empty error log to its backup name and recreate it
empty. An empty or missing error log is left alone. The same rotation
runs automatically at the end of every launch cycle.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lock := runlock.New(cfg.LockPath())
			if err := lock.Acquire(); err != nil {
				if errors.Is(err, runlock.ErrBusy) {
					return fmt.Errorf("%w; wait for it to finish or check %s", runlock.ErrBusy, cfg.LockPath())
				}
				return err
			}
			defer lock.Release() //nolint:errcheck

			result, err := rotation.Rotate(cfg.ErrorLogPath(), cfg.BackupLogPath())
			if err != nil {
				return fmt.Errorf("rotate error log: %w", err)
			}

			out := cmd.OutOrStdout()
			if !result.Rotated {
				fmt.Fprintln(out, runner.MsgNoError)
				return nil
			}
			if cfg.Rotation.AnnounceReboot {
				fmt.Fprintln(out, runner.MsgRebootIntended)
			}
			fmt.Fprintf(out, "Rotated %d bytes to %s\n", result.Bytes, result.BackupPath)
			return nil
		},
	}
}
