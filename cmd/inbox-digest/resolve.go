// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/inbox-digest/internal/daterange"
	"github.com/pdiddy/inbox-digest/internal/inboxurl"
	"github.com/pdiddy/inbox-digest/internal/secrets"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve EXPR",
	Short: "Parse a date expression and print the dashboard URLs",
	Long: `Resolve parses and validates a date or date range and prints the
dashboard URL for each day and for the whole range. The secret in the URL is
masked unless --show-secret is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("base", "", "secret login URL (default from secrets)")
	resolveCmd.Flags().Bool("show-secret", false, "print URLs without masking the secret")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	base, _ := cmd.Flags().GetString("base")
	show, _ := cmd.Flags().GetBool("show-secret")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if base == "" {
		if err := requireSecrets(secrets.ScholarInboxURL); err != nil {
			return err
		}
		base = cfg.Inbox.SecretURL
	}

	r, err := parseDateArg(args[0], cfg.DateRange.MaxDays, nil, os.Stderr)
	if err != nil {
		return err
	}

	res := inboxurl.Resolver{Base: base, Layout: cfg.Inbox.DateLayout}
	display := func(u string) string {
		if show {
			return u
		}
		return inboxurl.Redact(u)
	}

	fmt.Printf("range: %s (%d days)\n", r, r.Days())
	for _, day := range r.Dates() {
		u, err := res.Resolve(daterange.Single(day))
		if err != nil {
			return err
		}
		fmt.Printf("  %s  %s\n", day.Format(inboxurl.ISOLayout), display(u))
	}
	if !r.IsSingle() {
		u, err := res.Resolve(r)
		if err != nil {
			return err
		}
		fmt.Printf("  range       %s\n", display(u))
	}
	return nil
}
