// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/inbox-digest/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs or export the posting history",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to list")
	historyCmd.Flags().String("export", "", "write all runs and posted papers as YAML to this file")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	export, _ := cmd.Flags().GetString("export")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history is disabled (history.path is empty)")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if export != "" {
		f, err := os.Create(export)
		if err != nil {
			return fmt.Errorf("creating %s: %w", export, err)
		}
		defer f.Close()
		if err := store.ExportYAML(ctx, f); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported history to %s\n", export)
		return nil
	}

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		status := "running"
		if r.Finished() {
			status = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		fmt.Printf("%s  %s  %-24s found=%d posted=%d skipped=%d failed=%d  (%s)\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.ID, r.DateExpr,
			r.Found, r.Posted, r.Skipped, r.Failed, status)
	}
	return nil
}
