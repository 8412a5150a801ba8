// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pdiddy/inbox-digest/internal/arxiv"
	"github.com/pdiddy/inbox-digest/internal/daterange"
	"github.com/pdiddy/inbox-digest/internal/figures"
	"github.com/pdiddy/inbox-digest/internal/history"
	"github.com/pdiddy/inbox-digest/internal/inboxurl"
	"github.com/pdiddy/inbox-digest/internal/notify"
	"github.com/pdiddy/inbox-digest/internal/pipeline"
	"github.com/pdiddy/inbox-digest/internal/recommend"
	"github.com/pdiddy/inbox-digest/internal/render"
	"github.com/pdiddy/inbox-digest/internal/secrets"
	"github.com/pdiddy/inbox-digest/internal/summarize"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

// runSetup is a wired pipeline plus what the caller must report or close.
type runSetup struct {
	Pipeline *pipeline.Pipeline
	Usage    *summarize.Usage
	History  *history.Store
}

// Close releases the history database.
func (s *runSetup) Close() {
	if s.History != nil {
		s.History.Close()
	}
}

// buildOptions selects how the pipeline is wired.
type buildOptions struct {
	// DryRun prints digests instead of posting and skips the LLM, the
	// figure cache and the history.
	DryRun bool

	// HTMLFile replaces the browser with a saved dashboard page.
	HTMLFile string
}

// buildPipeline wires the pipeline stages from cfg. Progress goes to w.
func buildPipeline(cfg types.Config, opts buildOptions, w io.Writer) (*runSetup, error) {
	required := []string{secrets.ScholarInboxURL}
	if !opts.DryRun {
		required = append(required, secrets.SlackBotToken, secrets.SlackChannelID, secrets.AnthropicAPIKey)
	}
	if opts.HTMLFile != "" && opts.DryRun {
		required = nil
	}
	if err := requireSecrets(required...); err != nil {
		return nil, err
	}

	base := cfg.Inbox.SecretURL
	if base == "" {
		base = offlineBaseURL
	}

	var renderer render.Renderer = render.NewChrome(cfg.Browser, cfg.HTTP.UserAgent, w)
	if opts.HTMLFile != "" {
		renderer = render.File{Path: opts.HTMLFile}
	}

	library := arxiv.NewClient(cfg.HTTP, cfg.Arxiv)
	setup := &runSetup{}
	p := &pipeline.Pipeline{
		Resolver:  inboxurl.Resolver{Base: base, Layout: cfg.Inbox.DateLayout},
		Source:    render.Source{Renderer: renderer},
		Rules:     recommend.DefaultRules(),
		Extract:   recommend.Options{PreferHTML: cfg.Arxiv.PreferHTML},
		Library:   library,
		Enrich:    cfg.Arxiv.Enrich,
		Filter:    cfg.Filter,
		Order:     cfg.Sorting.Order,
		MaxPapers: cfg.Inbox.MaxPapers,
		Out:       w,
	}

	if opts.DryRun {
		p.Summarizer = summarize.Noop{}
		p.Notifier = notify.Writer{W: os.Stdout, Elements: cfg.Slack.PostElements}
		setup.Pipeline = p
		return setup, nil
	}

	client := &http.Client{Timeout: httpTimeout(cfg.HTTP)}
	claude := summarize.NewClaude(cfg.LLM, cfg.Summary, cfg.Language, client)
	setup.Usage = claude.Usage

	p.FullText = len(cfg.Summary.Sections) > 0
	p.Summarizer = claude
	p.Notifier = notify.NewSlack(cfg.Slack, w)
	p.Figures = &figures.Cache{
		Dir:        cfg.CacheDir,
		HTTP:       client,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxRetries: cfg.HTTP.MaxRetries,
		Out:        w,
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		setup.History = store
		p.History = store
		p.SkipPosted = cfg.History.SkipPosted
	}

	setup.Pipeline = p
	return setup, nil
}

// offlineBaseURL stands in for the secret URL when extracting a saved page
// without credentials.
const offlineBaseURL = "https://www.scholar-inbox.com/login/offline"

func httpTimeout(cfg types.HTTPConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return defaultTimeout
	}
	return cfg.Timeout
}

// now is the clock behind "today". Tests replace it.
var now = time.Now

// parseDateArg parses the --date expression, defaulting to today in loc
// (local time when nil), and validates the range against that day.
// Warnings are written to w.
func parseDateArg(expr string, maxDays int, loc *time.Location, w io.Writer) (daterange.Range, error) {
	if loc == nil {
		loc = time.Local
	}
	today := now().In(loc)

	var r daterange.Range
	if expr == "" {
		r = daterange.Single(today)
	} else {
		var err error
		if r, err = daterange.ParseRange(expr); err != nil {
			return r, err
		}
	}

	v := daterange.ValidateAt(r, maxDays, today)
	if err := v.Err(); err != nil {
		return r, err
	}
	if v.Warning != "" {
		fmt.Fprintf(w, "warning: %s\n", v.Warning)
	}
	return r, nil
}
