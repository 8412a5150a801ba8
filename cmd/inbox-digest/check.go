// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/inbox-digest/internal/inboxurl"
	"github.com/pdiddy/inbox-digest/internal/notify"
	"github.com/pdiddy/inbox-digest/internal/schedule"
	"github.com/pdiddy/inbox-digest/internal/secrets"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify credentials and show the effective settings",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireSecrets(secrets.ScholarInboxURL, secrets.SlackBotToken, secrets.SlackChannelID, secrets.AnthropicAPIKey); err != nil {
		return err
	}
	if _, err := inboxurl.SecretKey(cfg.Inbox.SecretURL); err != nil {
		return err
	}
	fmt.Printf("dashboard: %s\n", inboxurl.Redact(cfg.Inbox.SecretURL))

	user, err := notify.NewSlack(cfg.Slack, os.Stderr).Check(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("slack:     connected as %s, channel %s\n", user, cfg.Slack.ChannelID)
	fmt.Printf("llm:       %s, language %s, %d summary sections\n", cfg.LLM.Model, cfg.Language, len(cfg.Summary.Sections))

	spec, loc, err := schedule.Spec(cfg.Schedule, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Printf("schedule:  %q in %s\n", spec, loc)
	return nil
}
