// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"strings"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

// Capability is a structural feature detected in one identifier's links.
type Capability uint8

const (
	// CapCombinedText: some link text reads "Title | Authors".
	CapCombinedText Capability = 1 << iota
	// CapTitleAuthorsPair: one link reads as a title and another as authors.
	CapTitleAuthorsPair
)

// Capabilities is a set of Capability values.
type Capabilities uint8

// Has reports whether every capability in c is present.
func (cs Capabilities) Has(c Capability) bool {
	return Capabilities(c)&cs == Capabilities(c)
}

// Detect returns the capabilities present in links.
func Detect(links []types.RawLink) Capabilities {
	var cs Capabilities
	for _, l := range links {
		if _, _, ok := headerText(l.Text, links); ok {
			cs |= Capabilities(CapCombinedText)
			break
		}
	}
	if ti, _ := findPair(links); ti >= 0 {
		cs |= Capabilities(CapTitleAuthorsPair)
	}
	return cs
}

// headerText splits text as a "Title | Authors" header link. A right side
// holding a single name is accepted only when no other link of the
// identifier is an author list; otherwise the bar is part of a title such
// as "OmniGen | Unified Image Generation".
func headerText(text string, links []types.RawLink) (title, authors string, ok bool) {
	title, authors, ok = splitCombined(text)
	if !ok || isAuthorList(authors, false) {
		return title, authors, ok
	}
	for _, l := range links {
		if l.Text != text && isAuthorList(l.Text, false) {
			return "", "", false
		}
	}
	return title, authors, true
}

// Rule turns some of an identifier's links into a group. Apply returns the
// links it did not use.
type Rule interface {
	Name() string
	Requires() Capability
	Apply(id string, links []types.RawLink) (group types.LinkGroup, rest []types.RawLink, ok bool)
}

// DefaultRules returns the header rule followed by the recommendation rule.
func DefaultRules() []Rule {
	return []Rule{HeaderRule{}, RecommendedRule{}}
}

// HeaderRule matches exactly one distinct "Title | Authors" text. Repeats
// of that text (the same link rendered twice) are consumed with it. Two
// different combined texts for one identifier are ambiguous and do not
// match.
type HeaderRule struct{}

func (HeaderRule) Name() string         { return "header" }
func (HeaderRule) Requires() Capability { return CapCombinedText }

func (HeaderRule) Apply(id string, links []types.RawLink) (types.LinkGroup, []types.RawLink, bool) {
	var combined *types.RawLink
	var title, authors string
	for i := range links {
		t, a, ok := headerText(links[i].Text, links)
		if !ok {
			continue
		}
		if combined != nil && links[i].Text != combined.Text {
			return types.LinkGroup{}, links, false
		}
		if combined == nil {
			link := links[i]
			combined, title, authors = &link, t, a
		}
	}
	if combined == nil {
		return types.LinkGroup{}, links, false
	}

	rest := make([]types.RawLink, 0, len(links))
	for _, l := range links {
		if l.Text != combined.Text {
			rest = append(rest, l)
		}
	}
	return types.LinkGroup{
		Identifier: id,
		Kind:       types.KindHeader,
		TitleLink:  combined,
		Title:      title,
		Authors:    authors,
	}, rest, true
}

// RecommendedRule pairs the first title-like link with the first
// author-like link whose text differs from it. When every candidate title
// also reads as names, the links are ranked by how title-like they are.
type RecommendedRule struct{}

func (RecommendedRule) Name() string         { return "recommended" }
func (RecommendedRule) Requires() Capability { return CapTitleAuthorsPair }

func (RecommendedRule) Apply(id string, links []types.RawLink) (types.LinkGroup, []types.RawLink, bool) {
	ti, ai := findPair(links)
	if ti < 0 {
		return types.LinkGroup{}, links, false
	}

	title, author := links[ti], links[ai]
	rest := make([]types.RawLink, 0, len(links))
	for _, l := range links {
		if l.Text != title.Text && l.Text != author.Text {
			rest = append(rest, l)
		}
	}
	return types.LinkGroup{
		Identifier: id,
		Kind:       types.KindRecommended,
		TitleLink:  &title,
		AuthorLink: &author,
		Title:      title.Text,
		Authors:    author.Text,
	}, rest, true
}

// findPair returns the indexes of the title and author links of a
// recommendation, or -1 and -1.
func findPair(links []types.RawLink) (ti, ai int) {
	for i, l := range links {
		if _, _, ok := headerText(l.Text, links); ok {
			continue
		}
		if isTitle(l.Text) {
			if j := pairAuthor(links, i); j >= 0 {
				return i, j
			}
		}
	}
	return ambiguousPair(links)
}

// ambiguousPair handles Title-Case titles such as "Diffusion Models and
// Representation Learning" that also split into names. The best ranked
// title-shaped author list is the title if another author-like link
// remains and, when that link is itself a candidate, it ranks strictly
// lower.
func ambiguousPair(links []types.RawLink) (int, int) {
	candidate := func(l types.RawLink) bool {
		if _, _, ok := headerText(l.Text, links); ok {
			return false
		}
		return titleShaped(l.Text) && isAuthorList(l.Text, false)
	}

	ti := -1
	for i, l := range links {
		if candidate(l) && (ti < 0 || compareTitles(l, links[ti]) > 0) {
			ti = i
		}
	}
	if ti < 0 {
		return -1, -1
	}

	ai := pairAuthor(links, ti)
	if ai < 0 {
		return -1, -1
	}
	if candidate(links[ai]) && compareTitles(links[ti], links[ai]) <= 0 {
		return -1, -1
	}
	return ti, ai
}

// compareTitles ranks a and b as titles: fewer name separators first,
// then a link to the arXiv abstract page, then the longer text. It
// returns a positive number when a ranks higher.
func compareTitles(a, b types.RawLink) int {
	if sa, sb := separators(a.Text), separators(b.Text); sa != sb {
		return sb - sa
	}
	if aa, ab := isAbsLink(a.Href), isAbsLink(b.Href); aa != ab {
		if aa {
			return 1
		}
		return -1
	}
	return len([]rune(a.Text)) - len([]rune(b.Text))
}

func isAbsLink(href string) bool {
	return strings.Contains(href, "arxiv.org/abs/")
}

// pairAuthor finds the author link to pair with the title at index ti: the
// first strict author list whose text differs from the title, else the
// first single name that is not itself title-like.
func pairAuthor(links []types.RawLink, ti int) int {
	for i, l := range links {
		if i != ti && l.Text != links[ti].Text && isAuthorList(l.Text, false) {
			return i
		}
	}
	for i, l := range links {
		if i != ti && l.Text != links[ti].Text && isAuthorList(l.Text, true) && !isTitle(l.Text) {
			return i
		}
	}
	return -1
}
