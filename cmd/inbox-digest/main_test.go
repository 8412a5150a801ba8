// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/inbox-digest/internal/daterange"
	"github.com/pdiddy/inbox-digest/internal/inboxurl"
	"github.com/pdiddy/inbox-digest/internal/secrets"
	"github.com/pdiddy/inbox-digest/internal/summarize"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	t.Cleanup(viper.Reset)

	old := loadedSecrets
	t.Cleanup(func() { loadedSecrets = old })
}

func TestLoadConfigDefaults(t *testing.T) {
	resetConfig(t)
	loadedSecrets = map[string]string{}

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ja", cfg.Language)
	assert.Equal(t, 30, cfg.DateRange.MaxDays)
	assert.Equal(t, 90*time.Second, cfg.Browser.Timeout)
	assert.True(t, cfg.Arxiv.PreferHTML)
	assert.True(t, cfg.Arxiv.FallbackToPDF)
	assert.Equal(t, summarize.DefaultModel, cfg.LLM.Model)
	assert.Equal(t, types.SortRelevanceDesc, cfg.Sorting.Order)
	assert.Equal(t, "12:00", cfg.Schedule.CheckTime)
	assert.True(t, cfg.Schedule.WeekdaysOnly)
	assert.True(t, cfg.Slack.PostElements.Relevance)
	assert.True(t, cfg.Slack.PostElements.TeaserFigures)
}

func TestLoadConfigFileAndSecrets(t *testing.T) {
	resetConfig(t)

	path := filepath.Join(t.TempDir(), "inbox-digest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
language: en
browser:
  settle: 3s
slack:
  channel_id: CFILE
  post_elements:
    teaser_figures: false
summary:
  sections:
    - name: Novelty
      prompt: What is new?
sorting:
  order: date_desc
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	loadedSecrets = map[string]string{
		secrets.ScholarInboxURL: "https://www.scholar-inbox.com/login/abc",
		secrets.SlackBotToken:   "xoxb-1",
		secrets.SlackChannelID:  "CSECRET",
		secrets.AnthropicAPIKey: "sk-ant-1",
	}

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 3*time.Second, cfg.Browser.Settle)
	assert.Equal(t, 5, cfg.Browser.Scrolls)
	assert.False(t, cfg.Slack.PostElements.TeaserFigures)
	assert.True(t, cfg.Slack.PostElements.Title)
	assert.Equal(t, []types.SummarySection{{Name: "Novelty", Prompt: "What is new?"}}, cfg.Summary.Sections)
	assert.Equal(t, types.SortDateDesc, cfg.Sorting.Order)

	assert.Equal(t, "https://www.scholar-inbox.com/login/abc", cfg.Inbox.SecretURL)
	assert.Equal(t, "xoxb-1", cfg.Slack.Token)
	assert.Equal(t, "CFILE", cfg.Slack.ChannelID, "config file channel wins over the secret")
	assert.Equal(t, "sk-ant-1", cfg.LLM.APIKey)
}

func TestRequireSecrets(t *testing.T) {
	resetConfig(t)
	loadedSecrets = map[string]string{secrets.SlackBotToken: "xoxb"}

	assert.NoError(t, requireSecrets(secrets.SlackBotToken))
	err := requireSecrets(secrets.SlackBotToken, secrets.AnthropicAPIKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic-api-key (ANTHROPIC_API_KEY)")
}

func useClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func TestExampleConfigDashboardDates(t *testing.T) {
	resetConfig(t)
	loadedSecrets = map[string]string{secrets.ScholarInboxURL: "https://www.scholar-inbox.com/login/abc"}

	viper.SetConfigFile(filepath.Join("..", "..", "inbox-digest.example.yaml"))
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "01-02-2006", cfg.Inbox.DateLayout)

	day := daterange.Single(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	u, err := inboxurl.Resolver{Base: cfg.Inbox.SecretURL, Layout: cfg.Inbox.DateLayout}.Resolve(day)
	require.NoError(t, err)
	assert.Equal(t, "https://www.scholar-inbox.com/login?sha_key=abc&date=06-02-2025", u)
}

func TestParseDateArg(t *testing.T) {
	useClock(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	var w bytes.Buffer

	r, err := parseDateArg("", 30, time.UTC, &w)
	require.NoError(t, err)
	assert.True(t, r.IsSingle())
	assert.Equal(t, "2025-06-02", r.String())

	r, err = parseDateArg("2025-01-01..2025-03-01", 30, nil, &w)
	require.NoError(t, err)
	assert.Equal(t, 60, r.Days())
	assert.Contains(t, w.String(), "warning: date range spans 60 days")

	_, err = parseDateArg("31/31/2025", 30, nil, &w)
	assert.ErrorIs(t, err, daterange.ErrInvalidDateFormat)

	_, err = parseDateArg("2099-01-01", 30, nil, &w)
	assert.ErrorIs(t, err, daterange.ErrInvalidDateRange)
}

func TestParseDateArgScheduleZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 08:00 in Tokyo is still the previous day in UTC.
	useClock(t, time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC))
	var w bytes.Buffer

	r, err := parseDateArg("", 30, tokyo, &w)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", r.String())

	r, err = parseDateArg("", 30, time.UTC, &w)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", r.String())

	_, err = parseDateArg("2025-06-03", 30, tokyo, &w)
	assert.NoError(t, err)
	_, err = parseDateArg("2025-06-03", 30, time.UTC, &w)
	assert.ErrorIs(t, err, daterange.ErrInvalidDateRange)
}

func TestWriteDigests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	digests := []types.Digest{{
		Paper:              types.Paper{ID: "2501.01234", Title: "Scaling Sparse Mixtures", Authors: []string{"A One"}},
		TranslatedAbstract: "要旨",
		Summaries:          []types.SectionSummary{{Name: "Novelty", Text: "新規性"}},
	}}
	require.NoError(t, writeDigests(path, digests))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.Digest
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, digests, got)

	require.NoError(t, writeDigests(path, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestBuildPipelineDryRun(t *testing.T) {
	resetConfig(t)
	loadedSecrets = map[string]string{secrets.ScholarInboxURL: "https://www.scholar-inbox.com/login/abc"}

	cfg, err := loadConfig()
	require.NoError(t, err)

	setup, err := buildPipeline(cfg, buildOptions{DryRun: true}, nil)
	require.NoError(t, err)
	defer setup.Close()

	assert.Nil(t, setup.Usage)
	assert.Nil(t, setup.Pipeline.History)
	assert.Nil(t, setup.Pipeline.Figures)
	assert.IsType(t, summarize.Noop{}, setup.Pipeline.Summarizer)
}

func TestBuildPipelineRequiresCredentials(t *testing.T) {
	resetConfig(t)
	loadedSecrets = map[string]string{secrets.ScholarInboxURL: "https://www.scholar-inbox.com/login/abc"}

	cfg, err := loadConfig()
	require.NoError(t, err)

	_, err = buildPipeline(cfg, buildOptions{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_BOT_TOKEN")
}
