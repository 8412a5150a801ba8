// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers paper digests to Slack or, for dry runs, to a
// plain writer.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

const (
	maxAuthors    = 5
	maxCategories = 3
	maxTitleRunes = 100
)

// Notifier delivers one digest.
type Notifier interface {
	Notify(ctx context.Context, d types.Digest) error
}

// mainSections returns the mrkdwn text of each main-message section in
// posting order. The abstract, when enabled, is returned separately so
// callers can place a divider before it.
func mainSections(d types.Digest, el types.PostElements) (sections []string, abstract string) {
	p := d.Paper

	if el.Title {
		title := fmt.Sprintf("*%s*", p.Title)
		if p.AbsURL != "" {
			title = fmt.Sprintf("*<%s|%s>*", p.AbsURL, p.Title)
		}
		sections = append(sections, title)
	}

	if el.Authors && len(p.Authors) > 0 {
		sections = append(sections, "_Authors:_ "+AuthorLine(p.Authors))
	}

	var meta []string
	if el.Conference && p.Conference != "" {
		meta = append(meta, "*Conference:* "+p.Conference)
	}
	if el.SubmittedDate && p.SubmittedDate != "" {
		meta = append(meta, "*Submitted:* "+p.SubmittedDate)
	}
	if el.Relevance && p.Relevance != nil {
		r := p.Relevance
		meta = append(meta, fmt.Sprintf("*Relevance:* 📊 %d  👍 %d  👤 %d", r.Score, r.ThumbsUp, r.ReadBy))
	}
	if el.Categories && len(p.Categories) > 0 {
		cats := p.Categories
		if len(cats) > maxCategories {
			cats = cats[:maxCategories]
		}
		meta = append(meta, "*Categories:* "+strings.Join(cats, ", "))
	}
	if len(meta) > 0 {
		sections = append(sections, strings.Join(meta, "\n"))
	}

	var links []string
	if el.ArxivURL && p.PDFURL != "" {
		links = append(links, fmt.Sprintf("<%s|PDF>", p.PDFURL))
	}
	if p.HTMLURL != "" {
		links = append(links, fmt.Sprintf("<%s|HTML>", p.HTMLURL))
	}
	if el.GitHubURL && p.GitHubURL != "" {
		links = append(links, fmt.Sprintf("<%s|GitHub>", p.GitHubURL))
	}
	if len(links) > 0 {
		sections = append(sections, "*Links:* "+strings.Join(links, " | "))
	}

	if el.Abstract && d.TranslatedAbstract != "" {
		abstract = "*Abstract:*\n" + d.TranslatedAbstract
	}
	return sections, abstract
}

// AuthorLine joins the first five authors and notes the total when the
// list is longer.
func AuthorLine(authors []string) string {
	if len(authors) <= maxAuthors {
		return strings.Join(authors, ", ")
	}
	return fmt.Sprintf("%s et al. (%d authors)", strings.Join(authors[:maxAuthors], ", "), len(authors))
}

func summaryText(s types.SectionSummary) string {
	return fmt.Sprintf("*%s*\n%s", s.Name, s.Text)
}

// uniqueFigures drops figures that point at the same file or image.
func uniqueFigures(figs []types.TeaserFigure) []types.TeaserFigure {
	seen := make(map[string]bool)
	var out []types.TeaserFigure
	for _, f := range figs {
		key := f.LocalPath
		if key == "" {
			key = f.ImageURL
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

func figureCaption(f types.TeaserFigure, i int) string {
	if f.Caption != "" {
		return f.Caption
	}
	return fmt.Sprintf("Figure %d", i+1)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
