// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend turns the links scraped from a rendered dashboard page
// into paper records. Links are grouped by the arXiv identifier in their
// href, each group is classified as a header pick or a list
// recommendation, and the groups are combined with the page text next to
// them into deduplicated papers.
package recommend

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

// identifierRe matches an arXiv-style identifier at a path or query
// boundary. The version suffix is matched but not captured.
var identifierRe = regexp.MustCompile(`(?:^|[/=:])(\d{4}\.\d{4,5})(?:v\d+)?(?:$|[/?#&.])`)

// Identifier returns the arXiv-style identifier embedded in href, or ""
// when there is none.
func Identifier(href string) string {
	m := identifierRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// Grouper classifies the links of a page by identifier.
type Grouper struct {
	// Rules are applied in order to each identifier's links. Nil means
	// DefaultRules.
	Rules []Rule

	// Out receives one line per identifier that matched no rule. Nil
	// discards them.
	Out io.Writer
}

// GroupLinks groups links with the default rules.
func GroupLinks(links []types.RawLink) []types.LinkGroup {
	return (&Grouper{}).Group(links)
}

// accumulator collects the links seen for one identifier.
type accumulator struct {
	id    string
	links []types.RawLink
}

// Group makes a single pass over links, keyed by identifier, and then
// resolves each identifier's links into groups in first-seen order. An
// identifier can yield more than one group when its paper appears both
// as a header pick and in the recommendation list. An identifier that
// matches no rule yields one KindIncomplete group.
func (g *Grouper) Group(links []types.RawLink) []types.LinkGroup {
	w := g.Out
	if w == nil {
		w = io.Discard
	}
	rules := g.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	index := make(map[string]*accumulator)
	var order []*accumulator
	for _, l := range links {
		id := Identifier(l.Href)
		if id == "" {
			continue
		}
		acc, ok := index[id]
		if !ok {
			acc = &accumulator{id: id}
			index[id] = acc
			order = append(order, acc)
		}
		acc.links = append(acc.links, types.RawLink{Text: normalizeSpace(l.Text), Href: strings.TrimSpace(l.Href)})
	}

	var groups []types.LinkGroup
	for _, acc := range order {
		resolved := resolve(acc, rules)
		if len(resolved) == 0 {
			fmt.Fprintf(w, "warning: %s: %d link(s) match neither a header nor a recommendation layout\n", acc.id, len(acc.links))
			resolved = []types.LinkGroup{{Identifier: acc.id, Kind: types.KindIncomplete}}
		}
		groups = append(groups, resolved...)
	}
	return groups
}

// resolve applies rules in order. Each matching rule consumes the links it
// used; later rules see only what remains.
func resolve(acc *accumulator, rules []Rule) []types.LinkGroup {
	var groups []types.LinkGroup
	remaining := acc.links
	for _, rule := range rules {
		caps := Detect(remaining)
		if !caps.Has(rule.Requires()) {
			continue
		}
		group, rest, ok := rule.Apply(acc.id, remaining)
		if !ok {
			continue
		}
		groups = append(groups, group)
		remaining = rest
	}
	return groups
}
