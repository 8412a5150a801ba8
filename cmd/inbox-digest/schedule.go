// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/inbox-digest/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Post a digest every day at the configured time",
	Long: `Schedule stays in the foreground and runs the digest for the current day
at schedule.check_time (HH:MM), optionally on weekdays only and in
schedule.timezone. A run still in progress when the next one is due causes
that trigger to be skipped. Stop with Ctrl-C.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().Bool("now", false, "run once immediately before waiting for the schedule")

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	runNow, _ := cmd.Flags().GetBool("now")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := schedule.Location(cfg.Schedule)
	if err != nil {
		return err
	}
	setup, err := buildPipeline(cfg, buildOptions{}, os.Stderr)
	if err != nil {
		return err
	}
	defer setup.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func(ctx context.Context) error {
		err := runOnce(ctx, setup.Pipeline, cfg.DateRange.MaxDays, loc)
		if setup.Usage != nil {
			setup.Usage.Report(os.Stderr)
		}
		return err
	}

	if runNow {
		if err := job(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		}
	}

	s := &schedule.Scheduler{Config: cfg.Schedule, Job: job, Out: os.Stderr}
	return s.Run(ctx)
}
