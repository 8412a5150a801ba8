// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

const maxCaptionLen = 500

var (
	// teaserRe matches the file names the dashboard gives teaser images,
	// e.g. 4449266.0.jpeg.
	teaserRe = regexp.MustCompile(`(?i)^\d+\.\d+\.jpe?g$`)

	captionRe = regexp.MustCompile(`(?i)(Fig\.?\s*\d+|Figure\s*\d+|TABLE\s*[IVX]+)[.:]`)

	abstractLabelRe = regexp.MustCompile(`(?i)^abstract\s*[:.]?\s*`)
)

// ParsePage reads rendered dashboard HTML into its link list and the text
// found next to each identifier's links. Relative hrefs resolve against
// pageURL.
func ParsePage(pageURL string, r io.Reader) (types.Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return types.Page{}, fmt.Errorf("parsing page HTML: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return types.Page{}, fmt.Errorf("parsing page URL: %w", err)
	}

	page := types.Page{URL: pageURL, Context: types.PageContext{}}
	first := make(map[string]*goquery.Selection)
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := resolveRef(base, a.AttrOr("href", ""))
		page.Links = append(page.Links, types.RawLink{Text: normalizeSpace(a.Text()), Href: href})
		id := Identifier(href)
		if id == "" {
			return
		}
		if _, ok := first[id]; !ok {
			first[id] = a
			order = append(order, id)
		}
	})

	for _, id := range order {
		c := container(first[id], id, base)
		page.Context[id] = sibling(c, id, base)
	}
	return page, nil
}

// container returns the highest ancestor of anchor that holds no link for
// another identifier.
func container(anchor *goquery.Selection, id string, base *url.URL) *goquery.Selection {
	best := anchor
	for p := anchor.Parent(); p.Length() > 0 && !p.Is("html"); p = p.Parent() {
		if holdsOther(p, id, base) {
			break
		}
		best = p
	}
	return best
}

func holdsOther(s *goquery.Selection, id string, base *url.URL) bool {
	other := false
	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if got := Identifier(resolveRef(base, a.AttrOr("href", ""))); got != "" && got != id {
			other = true
			return false
		}
		return true
	})
	return other
}

func sibling(c *goquery.Selection, id string, base *url.URL) types.Sibling {
	sib := types.Sibling{
		Abstract:  abstractText(c),
		Authors:   firstText(c, "[class*=author]"),
		Figures:   teaserFigures(c, base),
		Relevance: relevance(c),
	}

	c.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := resolveRef(base, a.AttrOr("href", ""))
		if sib.GitHubURL == "" && strings.Contains(href, "github.com/") {
			sib.GitHubURL = href
			return
		}
		if Identifier(href) != id {
			return
		}
		switch {
		case sib.HTMLURL == "" && strings.Contains(href, "arxiv.org/html/"):
			sib.HTMLURL = href
		case sib.PDFURL == "" && strings.Contains(href, "arxiv.org/pdf/"):
			sib.PDFURL = href
		}
	})
	return sib
}

func abstractText(c *goquery.Selection) string {
	if v, ok := c.Find("[data-abstract]").First().Attr("data-abstract"); ok && strings.TrimSpace(v) != "" {
		return normalizeSpace(v)
	}
	if t := firstText(c, "[class*=abstract]:not(button)"); t != "" {
		return abstractLabelRe.ReplaceAllString(t, "")
	}
	// Expanded abstracts render as a long paragraph with no marker class.
	var text string
	c.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if t := normalizeSpace(p.Text()); len(t) > 100 {
			text = t
			return false
		}
		return true
	})
	return text
}

func firstText(c *goquery.Selection, selector string) string {
	var text string
	c.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text = normalizeSpace(s.Text())
		return text == ""
	})
	return text
}

// teaserFigures returns the teaser images in c with their captions. A
// caption is searched for in the ancestors of each image up to the first
// one that also holds another teaser image.
func teaserFigures(c *goquery.Selection, base *url.URL) []types.TeaserFigure {
	var imgs []*goquery.Selection
	var srcs []string
	c.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src == "" {
			src = img.AttrOr("data-src", "")
		}
		abs := resolveRef(base, src)
		u, err := url.Parse(abs)
		if err != nil || !teaserRe.MatchString(path.Base(u.Path)) {
			return
		}
		imgs = append(imgs, img)
		srcs = append(srcs, abs)
	})

	var figures []types.TeaserFigure
	for i, img := range imgs {
		figures = append(figures, types.TeaserFigure{
			ImageURL: srcs[i],
			Caption:  caption(img, c, i),
		})
	}
	return figures
}

func caption(img, c *goquery.Selection, i int) string {
	for s := img.Parent(); s.Length() > 0; s = s.Parent() {
		if countTeasers(s) > 1 {
			break
		}
		text := normalizeSpace(s.Text())
		if loc := captionRe.FindStringIndex(text); loc != nil {
			return truncate(text[loc[0]:], maxCaptionLen)
		}
		if s.IsSelection(c) {
			break
		}
	}
	if alt := normalizeSpace(img.AttrOr("alt", "")); captionRe.MatchString(alt) {
		return truncate(alt, maxCaptionLen)
	}
	return fmt.Sprintf("Figure %d", i+1)
}

func countTeasers(s *goquery.Selection) int {
	n := 0
	s.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", img.AttrOr("data-src", ""))
		if teaserRe.MatchString(path.Base(strings.SplitN(src, "?", 2)[0])) {
			n++
		}
	})
	return n
}

// relevance reads the relevance counters from data attributes, or failing
// that from the first run of three bare numbers in range: score 0-100,
// thumbs up 0-50, read by 0-1000.
func relevance(c *goquery.Selection) *types.Relevance {
	score, okS := dataInt(c, "data-relevance")
	thumbs, okT := dataInt(c, "data-thumbs-up")
	read, okR := dataInt(c, "data-read-by")
	if okS || okT || okR {
		return &types.Relevance{Score: score, ThumbsUp: thumbs, ReadBy: read}
	}

	var nums []int
	c.Find("span, div").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err != nil || n < 0 || n >= 1000 {
			return
		}
		nums = append(nums, n)
	})
	for j := 0; j+2 < len(nums); j++ {
		r, t, v := nums[j], nums[j+1], nums[j+2]
		if r <= 100 && t <= 50 && v <= 1000 {
			return &types.Relevance{Score: r, ThumbsUp: t, ReadBy: v}
		}
	}
	return nil
}

func dataInt(c *goquery.Selection, attr string) (int, bool) {
	s := c.Find("[" + attr + "]").First()
	if s.Length() == 0 {
		return 0, false
	}
	v, ok := s.Attr(attr)
	if !ok || strings.TrimSpace(v) == "" {
		v = s.Text()
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil || base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
