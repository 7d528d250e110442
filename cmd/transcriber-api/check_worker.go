package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxjob/transcriber/internal/config"
)

var checkTimeout time.Duration

var checkWorkerCmd = &cobra.Command{
	Use:   "check-worker",
	Short: "Resolve the transcription worker and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(envFile)
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		defer initLogger(cfg)()

		locator, err := newLocator(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		target, err := locator.Resolve(ctx, cfg.Worker.Service)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", cfg.Worker.Service, target.Name(), target.ID())
		return nil
	},
}

func init() {
	checkWorkerCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "Time allowed to reach the worker")
}
