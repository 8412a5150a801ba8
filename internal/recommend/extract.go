// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"fmt"
	"io"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

const (
	absBase  = "https://arxiv.org/abs/"
	htmlBase = "https://arxiv.org/html/"
	pdfBase  = "https://arxiv.org/pdf/"
)

// Options controls paper extraction.
type Options struct {
	// PreferHTML selects the HTML rendering as the document URL.
	PreferHTML bool

	// RequireAbstract skips groups with no abstract on the page.
	RequireAbstract bool
}

// Result holds the outcome of extracting one page.
type Result struct {
	Papers          []types.Paper
	Incomplete      int
	MissingAbstract int
	Duplicates      int
}

// Skipped returns the number of groups that produced no paper.
func (r Result) Skipped() int {
	return r.Incomplete + r.MissingAbstract + r.Duplicates
}

// Extract builds one paper per identifier from the header and recommended
// groups, filling abstract, figures, relevance and missing authors from
// the page context. When a header group and a recommended group share an
// identifier the header group's fields are used. Papers keep the
// first-seen order of their identifiers. Skipped groups are reported on w.
func Extract(groups []types.LinkGroup, pc types.PageContext, opts Options, w io.Writer) Result {
	if w == nil {
		w = io.Discard
	}

	var res Result
	index := make(map[string]int)
	for _, g := range groups {
		if !g.Extractable() {
			res.Incomplete++
			continue
		}

		sib := pc[g.Identifier]
		if opts.RequireAbstract && sib.Abstract == "" {
			res.MissingAbstract++
			fmt.Fprintf(w, "skipped: %s (%s, no abstract on page)\n", g.Identifier, g.Kind)
			continue
		}

		p := buildPaper(g, sib, opts)
		i, seen := index[g.Identifier]
		switch {
		case !seen:
			index[g.Identifier] = len(res.Papers)
			res.Papers = append(res.Papers, p)
		case p.Kind == types.PaperHeader && res.Papers[i].Kind != types.PaperHeader:
			res.Papers[i] = p
			res.Duplicates++
		default:
			res.Duplicates++
		}
	}
	return res
}

func buildPaper(g types.LinkGroup, sib types.Sibling, opts Options) types.Paper {
	kind := types.PaperRecommended
	if g.Kind == types.KindHeader {
		kind = types.PaperHeader
	}

	authors := g.Authors
	if authors == "" {
		authors = sib.Authors
	}

	htmlURL := sib.HTMLURL
	if htmlURL == "" {
		htmlURL = htmlBase + g.Identifier
	}
	pdfURL := sib.PDFURL
	if pdfURL == "" {
		pdfURL = pdfBase + g.Identifier
	}
	doc := pdfURL
	if opts.PreferHTML {
		doc = htmlURL
	}

	var figures []types.TeaserFigure
	if len(sib.Figures) > 0 {
		figures = append(figures, sib.Figures...)
	}
	var rel *types.Relevance
	if sib.Relevance != nil {
		r := *sib.Relevance
		rel = &r
	}

	return types.Paper{
		ID:            g.Identifier,
		Kind:          kind,
		Title:         normalizeSpace(g.Title),
		Authors:       SplitAuthors(authors),
		Abstract:      sib.Abstract,
		AbsURL:        absBase + g.Identifier,
		HTMLURL:       htmlURL,
		PDFURL:        pdfURL,
		DocumentURL:   doc,
		GitHubURL:     sib.GitHubURL,
		Relevance:     rel,
		TeaserFigures: figures,
	}
}
