// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one digest: it collects recommendations for a date
// range, selects the papers to post, and hands each one to the summarizer
// and the notifier.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pdiddy/inbox-digest/internal/arxiv"
	"github.com/pdiddy/inbox-digest/internal/daterange"
	"github.com/pdiddy/inbox-digest/internal/history"
	"github.com/pdiddy/inbox-digest/internal/inboxurl"
	"github.com/pdiddy/inbox-digest/internal/notify"
	"github.com/pdiddy/inbox-digest/internal/recommend"
	"github.com/pdiddy/inbox-digest/internal/summarize"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

// PageSource returns the parsed dashboard page at a URL.
type PageSource interface {
	Fetch(ctx context.Context, url string) (types.Page, error)
}

// Library looks papers up on arXiv.
type Library interface {
	Metadata(ctx context.Context, id string) (*arxiv.Metadata, error)
	Content(ctx context.Context, id string) (string, error)
}

// FigureStore caches teaser figures for upload.
type FigureStore interface {
	Fetch(ctx context.Context, p types.Paper) (types.Paper, error)
	Cleanup(papers []types.Paper) int
}

// History remembers runs and posted papers.
type History interface {
	StartRun(ctx context.Context, dateExpr string) (history.Run, error)
	FinishRun(ctx context.Context, id uuid.UUID, c history.Counts) error
	MarkPosted(ctx context.Context, run uuid.UUID, paperID, title string) error
	IsPosted(ctx context.Context, paperID string) (bool, error)
}

// Pipeline wires the stages of a run. Library, Figures and History are
// optional; a nil stage is skipped.
type Pipeline struct {
	Resolver inboxurl.Resolver
	Source   PageSource
	Rules    []recommend.Rule
	Extract  recommend.Options

	Library    Library
	Enrich     bool
	FullText   bool
	Figures    FigureStore
	Summarizer summarize.Summarizer
	Notifier   notify.Notifier
	History    History
	SkipPosted bool
	Filter     types.FilterConfig
	Order      types.SortOrder
	MaxPapers  int

	Out io.Writer
}

// Options selects what one run covers.
type Options struct {
	Range daterange.Range

	// DateExpr is the user's date expression, recorded in the history.
	DateExpr string

	// MaxPapers overrides Pipeline.MaxPapers when positive.
	MaxPapers int
}

// Summary holds the outcome of a run.
type Summary struct {
	RunID         string
	Days          int
	FailedDays    int
	Found         int
	Filtered      int
	AlreadyPosted int
	Selected      int
	Posted        int
	Failed        int
	Digests       []types.Digest
}

// HasFailures reports whether any day or paper failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0 || s.FailedDays > 0
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}

// Run collects, selects, summarizes and posts the papers for opts.Range.
// Failures of a single paper are reported and counted; they never stop the
// run.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Summary, error) {
	w := p.out()
	var sum Summary

	var run history.Run
	if p.History != nil {
		var err error
		if run, err = p.History.StartRun(ctx, opts.DateExpr); err != nil {
			return sum, err
		}
		sum.RunID = run.ID.String()
	}

	col, err := p.Collect(ctx, opts.Range)
	sum.Days, sum.FailedDays, sum.Found = col.Days, col.FailedDays, len(col.Papers)
	if err != nil {
		p.finish(ctx, run, sum)
		return sum, err
	}

	papers, err := p.selectPapers(ctx, col.Papers, opts, &sum)
	if err != nil {
		p.finish(ctx, run, sum)
		return sum, err
	}
	sum.Selected = len(papers)
	if len(papers) == 0 {
		fmt.Fprintf(w, "no papers to post\n")
	}

	var cached []types.Paper
	for i, paper := range papers {
		if err := ctx.Err(); err != nil {
			p.finish(ctx, run, sum)
			return sum, err
		}
		fmt.Fprintf(w, "processing: %d/%d %s %s\n", i+1, len(papers), paper.ID, paper.Title)

		if p.Figures != nil {
			if withFigures, err := p.Figures.Fetch(ctx, paper); err != nil {
				fmt.Fprintf(w, "  warning: figures: %v\n", err)
			} else {
				paper = withFigures
			}
			cached = append(cached, paper)
		}

		d := p.digest(ctx, paper)
		if err := p.Notifier.Notify(ctx, d); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", paper.ID, err)
			sum.Failed++
			continue
		}
		sum.Posted++
		sum.Digests = append(sum.Digests, d)

		if p.History != nil {
			if err := p.History.MarkPosted(ctx, run.ID, paper.ID, paper.Title); err != nil {
				fmt.Fprintf(w, "  warning: history: %v\n", err)
			}
		}
	}

	if p.Figures != nil {
		if n := p.Figures.Cleanup(cached); n > 0 {
			fmt.Fprintf(w, "removed %d cached figures\n", n)
		}
	}

	fmt.Fprintf(w, "\nRun summary: %d found, %d filtered, %d already posted, %d posted, %d failed\n",
		sum.Found, sum.Filtered, sum.AlreadyPosted, sum.Posted, sum.Failed)
	p.finish(ctx, run, sum)
	return sum, nil
}

// selectPapers enriches, filters, sorts, drops already posted papers and
// applies the cap.
func (p *Pipeline) selectPapers(ctx context.Context, papers []types.Paper, opts Options, sum *Summary) ([]types.Paper, error) {
	w := p.out()

	if p.Enrich && p.Library != nil {
		enriched := make([]types.Paper, 0, len(papers))
		for _, paper := range papers {
			m, err := p.Library.Metadata(ctx, paper.ID)
			if err != nil {
				fmt.Fprintf(w, "  warning: arXiv metadata for %s: %v\n", paper.ID, err)
				enriched = append(enriched, paper)
				continue
			}
			enriched = append(enriched, arxiv.Enrich(paper, m))
		}
		papers = enriched
	}

	papers, sum.Filtered = Filter(papers, p.Filter)
	if sum.Filtered > 0 {
		fmt.Fprintf(w, "filtered: %d papers\n", sum.Filtered)
	}
	papers = Sort(papers, p.Order, w)

	if p.History != nil && p.SkipPosted {
		var fresh []types.Paper
		for _, paper := range papers {
			posted, err := p.History.IsPosted(ctx, paper.ID)
			if err != nil {
				return nil, err
			}
			if posted {
				fmt.Fprintf(w, "skipped: %s (already posted)\n", paper.ID)
				sum.AlreadyPosted++
				continue
			}
			fresh = append(fresh, paper)
		}
		papers = fresh
	}

	limit := p.MaxPapers
	if opts.MaxPapers > 0 {
		limit = opts.MaxPapers
	}
	return Cap(papers, limit), nil
}

// digest summarizes paper. When summarizing fails the paper is posted
// untranslated.
func (p *Pipeline) digest(ctx context.Context, paper types.Paper) types.Digest {
	w := p.out()

	var content string
	if p.FullText && p.Library != nil {
		text, err := p.Library.Content(ctx, paper.ID)
		if err != nil {
			fmt.Fprintf(w, "  warning: full text: %v\n", err)
		}
		content = text
	}

	d, err := p.Summarizer.Summarize(ctx, paper, content)
	if err != nil {
		fmt.Fprintf(w, "  warning: summarizing %s: %v (posting untranslated)\n", paper.ID, err)
		d, _ = summarize.Noop{}.Summarize(ctx, paper, content)
	}
	return d
}

func (p *Pipeline) finish(ctx context.Context, run history.Run, sum Summary) {
	if p.History == nil {
		return
	}
	err := p.History.FinishRun(context.WithoutCancel(ctx), run.ID, history.Counts{
		Found:   sum.Found,
		Posted:  sum.Posted,
		Skipped: sum.Filtered + sum.AlreadyPosted,
		Failed:  sum.Failed,
	})
	if err != nil {
		fmt.Fprintf(p.out(), "warning: history: %v\n", err)
	}
}
