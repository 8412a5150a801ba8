// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/inbox-digest/internal/daterange"
	"github.com/pdiddy/inbox-digest/internal/inboxurl"
	"github.com/pdiddy/inbox-digest/internal/recommend"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

// ErrNoPages is returned by Collect when no day of the range could be
// fetched.
var ErrNoPages = errors.New("no dashboard page could be fetched")

// Collection is the outcome of collecting papers across a date range.
type Collection struct {
	Papers     []types.Paper
	Days       int
	FailedDays int

	// Skipped counts link groups that produced no paper.
	Skipped int

	// Duplicates counts papers already found on an earlier day.
	Duplicates int
}

// Collect fetches the dashboard for each day of r, groups and extracts its
// links, and merges the papers. A day that fails is reported and skipped.
// Papers seen on several days appear once, at their first position; a
// header occurrence replaces a recommended one.
func (p *Pipeline) Collect(ctx context.Context, r daterange.Range) (Collection, error) {
	w := p.out()
	grouper := &recommend.Grouper{Rules: p.Rules, Out: w}

	var col Collection
	index := make(map[string]int)
	for _, day := range r.Dates() {
		if err := ctx.Err(); err != nil {
			return col, err
		}
		col.Days++
		label := day.Format(inboxurl.ISOLayout)

		url, err := p.Resolver.Resolve(daterange.Single(day))
		if err != nil {
			return col, fmt.Errorf("resolving URL for %s: %w", label, err)
		}
		fmt.Fprintf(w, "fetching: %s (%s)\n", label, inboxurl.Redact(url))

		page, err := p.Source.Fetch(ctx, url)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", label, err)
			col.FailedDays++
			continue
		}

		res := recommend.Extract(grouper.Group(page.Links), page.Context, p.Extract, w)
		col.Skipped += res.Skipped()
		fmt.Fprintf(w, "found:   %d papers on %s\n", len(res.Papers), label)

		for _, paper := range res.Papers {
			i, seen := index[paper.ID]
			switch {
			case !seen:
				index[paper.ID] = len(col.Papers)
				col.Papers = append(col.Papers, paper)
			case paper.Kind == types.PaperHeader && col.Papers[i].Kind != types.PaperHeader:
				col.Papers[i] = paper
				col.Duplicates++
			default:
				col.Duplicates++
			}
		}
	}

	if col.Days > 0 && col.FailedDays == col.Days {
		return col, ErrNoPages
	}
	return col, nil
}
