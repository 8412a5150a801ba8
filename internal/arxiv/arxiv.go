// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches paper metadata and full text from arXiv.
package arxiv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/inbox-digest/internal/httputil"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

// Endpoints. Declared as vars so tests can substitute httptest servers.
var (
	apiBase  = "https://export.arxiv.org/api/query"
	htmlBase = "https://arxiv.org/html/"
	pdfBase  = "https://arxiv.org/pdf/"
)

const (
	defaultMaxPDFPages = 20
	maxPDFBytes        = 50 << 20
)

// ErrNotFound is returned when the API has no entry for an identifier.
var ErrNotFound = errors.New("arXiv entry not found")

// Metadata is the arXiv API record for one paper.
type Metadata struct {
	ID              string
	Title           string
	Authors         []string
	Abstract        string
	Categories      []string
	PrimaryCategory string
	Published       time.Time
	Updated         time.Time
	AbsURL          string
	PDFURL          string
	Comment         string
	JournalRef      string
	DOI             string
}

// Client talks to the arXiv export API and document hosts. Metadata
// lookups are cached for the life of the client.
type Client struct {
	HTTP          *http.Client
	UserAgent     string
	MaxRetries    int
	FallbackToPDF bool
	MaxPDFPages   int

	mu    sync.Mutex
	cache map[string]*Metadata
}

// NewClient returns a client configured from the shared HTTP settings.
func NewClient(httpCfg types.HTTPConfig, cfg types.ArxivConfig) *Client {
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		HTTP:          &http.Client{Timeout: timeout},
		UserAgent:     httpCfg.UserAgent,
		MaxRetries:    httpCfg.MaxRetries,
		FallbackToPDF: cfg.FallbackToPDF,
		MaxPDFPages:   defaultMaxPDFPages,
	}
}

// Metadata returns the API record for id.
func (c *Client) Metadata(ctx context.Context, id string) (*Metadata, error) {
	c.mu.Lock()
	if m, ok := c.cache[id]; ok {
		c.mu.Unlock()
		return m, nil
	}
	c.mu.Unlock()

	u := apiBase + "?" + url.Values{"id_list": {id}, "max_results": {"1"}}.Encode()
	resp, err := httputil.Get(ctx, c.HTTP, u, c.UserAgent, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var meta *Metadata
	for _, item := range feed.Items {
		if m := fromItem(item); m.ID == id {
			meta = m
			break
		}
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string]*Metadata)
	}
	c.cache[id] = meta
	c.mu.Unlock()
	return meta, nil
}

func fromItem(item *gofeed.Item) *Metadata {
	m := &Metadata{
		ID:         idFromURL(item.GUID),
		Title:      strings.Join(strings.Fields(item.Title), " "),
		Abstract:   strings.Join(strings.Fields(item.Description), " "),
		Categories: item.Categories,
		AbsURL:     item.GUID,
	}
	if m.ID == "" {
		m.ID = idFromURL(item.Link)
		m.AbsURL = item.Link
	}
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			m.Authors = append(m.Authors, strings.TrimSpace(a.Name))
		}
	}
	if item.PublishedParsed != nil {
		m.Published = *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		m.Updated = *item.UpdatedParsed
	}
	for _, l := range item.Links {
		if strings.Contains(l, "/pdf/") {
			m.PDFURL = l
		}
	}
	if m.PDFURL == "" && m.ID != "" {
		m.PDFURL = pdfBase + m.ID
	}

	ext := item.Extensions["arxiv"]
	if v := ext["primary_category"]; len(v) > 0 {
		m.PrimaryCategory = v[0].Attrs["term"]
	}
	if v := ext["comment"]; len(v) > 0 {
		m.Comment = strings.TrimSpace(v[0].Value)
	}
	if v := ext["journal_ref"]; len(v) > 0 {
		m.JournalRef = strings.TrimSpace(v[0].Value)
	}
	if v := ext["doi"]; len(v) > 0 {
		m.DOI = strings.TrimSpace(v[0].Value)
	}
	return m
}

// idFromURL pulls the arXiv ID from an abs URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func idFromURL(u string) string {
	const prefix = "/abs/"
	i := strings.Index(u, prefix)
	if i < 0 {
		return ""
	}
	id := u[i+len(prefix):]
	if v := strings.LastIndex(id, "v"); v > 0 && isDigits(id[v+1:]) {
		id = id[:v]
	}
	return id
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Enrich returns a copy of p with fields from the API record. API values
// replace scraped ones when present; figures, relevance and links found on
// the dashboard are kept.
func Enrich(p types.Paper, m *Metadata) types.Paper {
	if m == nil {
		return p
	}
	if m.Title != "" {
		p.Title = m.Title
	}
	if len(m.Authors) > 0 {
		p.Authors = append([]string(nil), m.Authors...)
	}
	if m.Abstract != "" {
		p.Abstract = m.Abstract
	}
	if len(m.Categories) > 0 {
		p.Categories = append([]string(nil), m.Categories...)
	}
	if !m.Published.IsZero() {
		p.SubmittedDate = m.Published.Format("2006-01-02")
	}
	switch {
	case m.JournalRef != "":
		p.Conference = m.JournalRef
	case m.Comment != "":
		p.Conference = m.Comment
	}
	return p
}

// Content returns the paper's text: the arXiv HTML rendering with scripts
// and styles removed, or, when that is unavailable and FallbackToPDF is
// set, the text of the PDF's first pages.
func (c *Client) Content(ctx context.Context, id string) (string, error) {
	text, htmlErr := c.htmlText(ctx, id)
	if htmlErr == nil && text != "" {
		return text, nil
	}
	if !c.FallbackToPDF {
		return "", fmt.Errorf("fetching HTML for %s: %w", id, htmlErr)
	}

	text, err := c.pdfText(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetching content for %s: html: %v; pdf: %w", id, htmlErr, err)
	}
	return text, nil
}

func (c *Client) htmlText(ctx context.Context, id string) (string, error) {
	resp, err := httputil.Get(ctx, c.HTTP, htmlBase+id, c.UserAgent, c.MaxRetries)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	return cleanLines(root.Text()), nil
}

func (c *Client) pdfText(ctx context.Context, id string) (string, error) {
	resp, err := httputil.Get(ctx, c.HTTP, pdfBase+id, c.UserAgent, c.MaxRetries)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}
	return PDFText(data, c.MaxPDFPages)
}

// PDFText extracts text row by row from the first maxPages pages of a PDF.
func PDFText(data []byte, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = defaultMaxPDFPages
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var b strings.Builder
	n := min(r.NumPage(), maxPages)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteString("\n")
		}
	}
	return cleanLines(b.String()), nil
}

// cleanLines trims every line, collapses inner whitespace, and drops blank
// lines.
func cleanLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
