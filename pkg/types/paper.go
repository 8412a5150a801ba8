// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperKind records which area of the dashboard a paper was extracted from.
type PaperKind string

const (
	// PaperHeader is a primary pick rendered with title and authors merged
	// into one link.
	PaperHeader PaperKind = "header"
	// PaperRecommended is a list recommendation rendered with separate
	// title and author links.
	PaperRecommended PaperKind = "recommended"
)

// Relevance holds the dashboard's per-paper counters.
type Relevance struct {
	Score    int `json:"score" yaml:"score"`
	ThumbsUp int `json:"thumbs_up" yaml:"thumbs_up"`
	ReadBy   int `json:"read_by" yaml:"read_by"`
}

// TeaserFigure is an image shown next to a paper on the dashboard.
type TeaserFigure struct {
	// ImageURL is the absolute URL of the image.
	ImageURL string `json:"image_url" yaml:"image_url"`

	// Caption is the figure caption ("Figure 2: ...") or a positional
	// default when the page has none.
	Caption string `json:"caption" yaml:"caption"`

	// LocalPath is set once the image has been downloaded to the cache.
	LocalPath string `json:"local_path,omitempty" yaml:"local_path,omitempty"`
}

// Paper is one recommendation extracted from the dashboard. The extractor
// creates it; later stages derive new values instead of changing a Paper
// that other stages may hold.
type Paper struct {
	// ID is the arXiv-style identifier (e.g. "2501.01234").
	ID string `json:"id" yaml:"id"`

	// Kind is the dashboard area the paper came from.
	Kind PaperKind `json:"kind" yaml:"kind"`

	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors" yaml:"authors"`

	Abstract string `json:"abstract" yaml:"abstract"`

	// AbsURL is the arXiv abstract page.
	AbsURL string `json:"abs_url" yaml:"abs_url"`

	// HTMLURL is the arXiv HTML rendering.
	HTMLURL string `json:"html_url" yaml:"html_url"`

	// PDFURL is the arXiv PDF.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// DocumentURL is the canonical document link: HTMLURL when HTML is
	// preferred, PDFURL otherwise.
	DocumentURL string `json:"document_url" yaml:"document_url"`

	GitHubURL     string     `json:"github_url,omitempty" yaml:"github_url,omitempty"`
	Conference    string     `json:"conference,omitempty" yaml:"conference,omitempty"`
	SubmittedDate string     `json:"submitted_date,omitempty" yaml:"submitted_date,omitempty"`
	Categories    []string   `json:"categories,omitempty" yaml:"categories,omitempty"`
	Relevance     *Relevance `json:"relevance,omitempty" yaml:"relevance,omitempty"`

	TeaserFigures []TeaserFigure `json:"teaser_figures,omitempty" yaml:"teaser_figures,omitempty"`
}

// RelevanceScore returns the dashboard score, or fallback when the page
// did not expose one.
func (p Paper) RelevanceScore(fallback int) int {
	if p.Relevance == nil {
		return fallback
	}
	return p.Relevance.Score
}

// SectionSummary is one LLM-written summary section.
type SectionSummary struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// Digest pairs an extracted paper with the text produced for it by the
// summarizer. Figure captions may be translated, so the digest carries its
// own figure list.
type Digest struct {
	Paper              Paper            `json:"paper" yaml:"paper"`
	TranslatedAbstract string           `json:"translated_abstract,omitempty" yaml:"translated_abstract,omitempty"`
	Summaries          []SectionSummary `json:"summaries,omitempty" yaml:"summaries,omitempty"`
	Figures            []TeaserFigure   `json:"figures,omitempty" yaml:"figures,omitempty"`
}
