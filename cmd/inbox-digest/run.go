// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/inbox-digest/internal/pipeline"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, summarize and post one digest",
	Long: `Run fetches the dashboard for each day of the date range, extracts the
recommended papers, and posts them to Slack with translated abstracts and
summaries. Without --date the range is today.

Date expressions: a single date (2025-10-31, 10/31/2025, 20251031) or a
range joined by "to", "..", ":" or "~".`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("date", "", "date or date range to fetch (default today)")
	runCmd.Flags().Int("max-papers", 0, "maximum papers to post (default from config, 0 = all)")
	runCmd.Flags().Bool("dry-run", false, "print digests instead of posting; no LLM calls")
	runCmd.Flags().String("output", "", "write the posted digests as YAML to this file")
	runCmd.Flags().String("html", "", "read a saved dashboard page instead of rendering it")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	dateExpr, _ := cmd.Flags().GetString("date")
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	output, _ := cmd.Flags().GetString("output")
	htmlFile, _ := cmd.Flags().GetString("html")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r, err := parseDateArg(dateExpr, cfg.DateRange.MaxDays, nil, os.Stderr)
	if err != nil {
		return err
	}

	setup, err := buildPipeline(cfg, buildOptions{DryRun: dryRun, HTMLFile: htmlFile}, os.Stderr)
	if err != nil {
		return err
	}
	defer setup.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Fetching recommendations for %s\n", r)
	sum, runErr := setup.Pipeline.Run(ctx, pipeline.Options{Range: r, DateExpr: dateExpr, MaxPapers: maxPapers})

	if setup.Usage != nil && len(setup.Usage.Calls()) > 0 {
		setup.Usage.Report(os.Stderr)
	}
	if output != "" {
		if err := writeDigests(output, sum.Digests); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d digests to %s\n", len(sum.Digests), output)
	}

	if runErr != nil {
		return runErr
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to post", sum.Failed)
	}
	return nil
}

func writeDigests(path string, digests []types.Digest) error {
	if digests == nil {
		digests = []types.Digest{}
	}
	data, err := yaml.Marshal(digests)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// runOnce is the scheduled job: one run for today in loc, the zone the
// schedule fires in.
func runOnce(ctx context.Context, p *pipeline.Pipeline, maxDays int, loc *time.Location) error {
	r, err := parseDateArg("", maxDays, loc, os.Stderr)
	if err != nil {
		return err
	}
	sum, err := p.Run(ctx, pipeline.Options{Range: r, DateExpr: r.String()})
	if err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d paper(s) and %d day(s) failed", sum.Failed, sum.FailedDays)
	}
	return nil
}
