// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawLink is an anchor scraped from the rendered dashboard.
type RawLink struct {
	Text string `json:"text" yaml:"text"`
	Href string `json:"href" yaml:"href"`
}

// GroupKind classifies the links that share one identifier.
type GroupKind int

const (
	KindIncomplete GroupKind = iota
	KindHeader
	KindRecommended
)

func (k GroupKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindRecommended:
		return "recommended"
	default:
		return "incomplete"
	}
}

// LinkGroup is the classified set of links for one identifier. A header
// group has only TitleLink (the combined "Title | Authors" link); a
// recommended group has both links. Title and Authors hold the text split
// out of the links.
type LinkGroup struct {
	Identifier string
	Kind       GroupKind
	TitleLink  *RawLink
	AuthorLink *RawLink
	Title      string
	Authors    string
}

// Extractable reports whether the group can become a Paper.
func (g LinkGroup) Extractable() bool {
	return g.Kind != KindIncomplete && g.TitleLink != nil
}

// Sibling is the page text found next to one identifier's links.
type Sibling struct {
	Abstract  string
	Authors   string
	HTMLURL   string
	PDFURL    string
	GitHubURL string
	Figures   []TeaserFigure
	Relevance *Relevance
}

// PageContext indexes sibling text by identifier.
type PageContext map[string]Sibling

// Page is a fully rendered dashboard page reduced to the data the
// extractor consumes.
type Page struct {
	URL     string
	Links   []RawLink
	Context PageContext
}
