// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the inbox-digest CLI, which posts
// Scholar Inbox recommendations to Slack.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/inbox-digest/internal/secrets"
	"github.com/pdiddy/inbox-digest/internal/summarize"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "inbox-digest/0.1"
)

// loadedSecrets holds credentials loaded from .secrets/ and the environment
// at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the inbox-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "inbox-digest",
	Short: "Post Scholar Inbox recommendations to Slack",
	Long: `inbox-digest reads the paper recommendations on your Scholar Inbox
dashboard, enriches them with arXiv metadata, translates and summarizes them
with Claude, and posts them to a Slack channel.

Use run for a one-off digest, schedule to post every day, and resolve or
extract to inspect date ranges and saved dashboard pages offline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.LoadWithEnv(".secrets/", os.Getenv)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", secrets.Names(s))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./inbox-digest.yaml or ~/.config/inbox-digest/inbox-digest.yaml)")
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env not loaded: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("inbox-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "inbox-digest"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("INBOX_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("language", "ja")
	viper.SetDefault("cache_dir", "data/cache")

	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("http.max_retries", 5)

	viper.SetDefault("date_range.max_days", 30)
	viper.SetDefault("inbox.date_layout", "2006-01-02")

	viper.SetDefault("browser.timeout", 90*time.Second)
	viper.SetDefault("browser.settle", 8*time.Second)
	viper.SetDefault("browser.scrolls", 5)
	viper.SetDefault("browser.scroll_delay", 2*time.Second)

	viper.SetDefault("arxiv.prefer_html", true)
	viper.SetDefault("arxiv.fallback_to_pdf", true)
	viper.SetDefault("arxiv.enrich", true)

	viper.SetDefault("llm.model", summarize.DefaultModel)
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("summary.max_length", 300)

	for _, el := range []string{
		"title", "authors", "abstract", "paper_relevance", "conference",
		"submitted_date", "categories", "arxiv_url", "github_url", "teaser_figures",
	} {
		viper.SetDefault("slack.post_elements."+el, true)
	}

	viper.SetDefault("sorting.order", string(types.SortRelevanceDesc))
	viper.SetDefault("schedule.check_time", "12:00")
	viper.SetDefault("schedule.weekdays_only", true)
	viper.SetDefault("history.path", "data/history.db")
	viper.SetDefault("history.skip_posted", true)
}

// loadConfig decodes the viper settings and fills credentials from the
// loaded secrets.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if v := loadedSecrets[secrets.ScholarInboxURL]; v != "" {
		cfg.Inbox.SecretURL = v
	}
	if v := loadedSecrets[secrets.SlackBotToken]; v != "" {
		cfg.Slack.Token = v
	}
	if v := loadedSecrets[secrets.SlackChannelID]; v != "" && cfg.Slack.ChannelID == "" {
		cfg.Slack.ChannelID = v
	}
	if v := loadedSecrets[secrets.AnthropicAPIKey]; v != "" {
		cfg.LLM.APIKey = v
	}
	return cfg, nil
}

// requireSecrets fails when any of keys has no value.
func requireSecrets(keys ...string) error {
	if missing := secrets.Missing(loadedSecrets, keys...); len(missing) > 0 {
		return fmt.Errorf("missing secrets: %s; set the environment variables or add files under .secrets/", strings.Join(missing, ", "))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
