// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

// dateLayouts are the submitted-date formats understood when sorting by
// date. Undated papers sort as the oldest.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006"}

// Filter returns the papers that pass cfg and the number dropped. With a
// threshold set, papers without a relevance score are dropped.
func Filter(papers []types.Paper, cfg types.FilterConfig) ([]types.Paper, int) {
	var kept []types.Paper
	for _, p := range papers {
		if cfg.SetThreshold && (p.Relevance == nil || p.Relevance.Score < cfg.RelevanceThreshold) {
			continue
		}
		if cfg.RequireGitHub && p.GitHubURL == "" {
			continue
		}
		kept = append(kept, p)
	}
	return kept, len(papers) - len(kept)
}

// Sort returns the papers in the given order. The sort is stable so ties
// keep dashboard order. An unknown order falls back to relevance_desc with
// a warning on w.
func Sort(papers []types.Paper, order types.SortOrder, w io.Writer) []types.Paper {
	out := slices.Clone(papers)

	switch order {
	case types.SortDOMOrder:
		return out
	case types.SortRelevanceAsc:
		slices.SortStableFunc(out, func(a, b types.Paper) int {
			return cmp.Compare(relevanceKey(a), relevanceKey(b))
		})
	case types.SortDateDesc:
		slices.SortStableFunc(out, func(a, b types.Paper) int {
			return dateKey(b).Compare(dateKey(a))
		})
	case types.SortDateAsc:
		slices.SortStableFunc(out, func(a, b types.Paper) int {
			return dateKey(a).Compare(dateKey(b))
		})
	default:
		if order != types.SortRelevanceDesc && order != "" && w != nil {
			fmt.Fprintf(w, "warning: unknown sort order %q, using %s\n", order, types.SortRelevanceDesc)
		}
		slices.SortStableFunc(out, func(a, b types.Paper) int {
			return cmp.Compare(relevanceKey(b), relevanceKey(a))
		})
	}
	return out
}

// Cap returns at most n papers; n <= 0 means no cap.
func Cap(papers []types.Paper, n int) []types.Paper {
	if n <= 0 || len(papers) <= n {
		return papers
	}
	return papers[:n]
}

func relevanceKey(p types.Paper) int {
	return p.RelevanceScore(math.MinInt)
}

func dateKey(p types.Paper) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, p.SubmittedDate); err == nil {
			return t
		}
	}
	return time.Time{}
}
