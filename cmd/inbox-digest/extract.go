// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/inbox-digest/internal/recommend"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract papers from a saved dashboard page",
	Long: `Extract reads a dashboard page saved from the browser, groups its
links by arXiv identifier, and prints the extracted papers as YAML (or JSON
with --json). Nothing is fetched or posted.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("html", "", "saved dashboard HTML file (required)")
	extractCmd.Flags().String("url", "https://www.scholar-inbox.com/", "URL the page was saved from, for resolving relative links")
	extractCmd.Flags().Bool("json", false, "print JSON instead of YAML")
	extractCmd.Flags().Bool("require-abstract", false, "skip papers without an abstract on the page")
	extractCmd.MarkFlagRequired("html")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	htmlFile, _ := cmd.Flags().GetString("html")
	pageURL, _ := cmd.Flags().GetString("url")
	asJSON, _ := cmd.Flags().GetBool("json")
	requireAbstract, _ := cmd.Flags().GetBool("require-abstract")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(htmlFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", htmlFile, err)
	}
	defer f.Close()

	page, err := recommend.ParsePage(pageURL, f)
	if err != nil {
		return err
	}

	grouper := &recommend.Grouper{Out: os.Stderr}
	res := recommend.Extract(grouper.Group(page.Links), page.Context,
		recommend.Options{PreferHTML: cfg.Arxiv.PreferHTML, RequireAbstract: requireAbstract}, os.Stderr)
	fmt.Fprintf(os.Stderr, "Extracted %d papers (%d skipped: %d incomplete, %d without abstract, %d duplicates)\n",
		len(res.Papers), res.Skipped(), res.Incomplete, res.MissingAbstract, res.Duplicates)

	var data []byte
	if asJSON {
		data, err = json.MarshalIndent(res.Papers, "", "  ")
	} else {
		data, err = yaml.Marshal(res.Papers)
	}
	if err != nil {
		return fmt.Errorf("marshaling papers: %w", err)
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}
