// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render fetches the fully rendered HTML of dashboard pages.
package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pdiddy/inbox-digest/internal/recommend"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

const (
	defaultTimeout     = 90 * time.Second
	defaultSettle      = 8 * time.Second
	defaultScrolls     = 5
	defaultScrollDelay = 2 * time.Second
)

// Renderer returns the HTML of a page after client-side rendering.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// expandJS clicks the buttons that reveal abstracts and extra figures and
// returns how many it clicked.
const expandJS = `(() => {
  const bs = document.querySelectorAll('button[aria-label="show abstract"], button[aria-label="show more"]');
  bs.forEach(b => b.click());
  return bs.length;
})()`

const scrollJS = `(() => { window.scrollTo(0, document.body.scrollHeight); return document.body.scrollHeight; })()`

// Chrome renders pages in headless Chrome, either launched locally or
// reached over a DevTools websocket.
type Chrome struct {
	cfg       types.BrowserConfig
	userAgent string
	w         io.Writer
}

// NewChrome returns a renderer for cfg. Zero durations and counts take
// their defaults.
func NewChrome(cfg types.BrowserConfig, userAgent string, w io.Writer) *Chrome {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Settle <= 0 {
		cfg.Settle = defaultSettle
	}
	if cfg.Scrolls <= 0 {
		cfg.Scrolls = defaultScrolls
	}
	if cfg.ScrollDelay <= 0 {
		cfg.ScrollDelay = defaultScrollDelay
	}
	if w == nil {
		w = io.Discard
	}
	return &Chrome{cfg: cfg, userAgent: userAgent, w: w}
}

func (c *Chrome) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, c.cfg.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080),
	)
	if c.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.userAgent))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

// Render navigates to url, waits for the page to settle, scrolls to load
// lazy content, expands collapsed abstracts, and returns the outer HTML.
// The whole render is bounded by the configured timeout.
func (c *Chrome) Render(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := c.allocator(ctx)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	runCtx, cancel := context.WithTimeout(tabCtx, c.cfg.Timeout)
	defer cancel()

	var height, expanded int
	var html string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.cfg.Settle),
	}
	for i := 0; i < c.cfg.Scrolls; i++ {
		actions = append(actions,
			chromedp.Evaluate(scrollJS, &height),
			chromedp.Sleep(c.cfg.ScrollDelay),
		)
	}
	actions = append(actions,
		chromedp.Evaluate(expandJS, &expanded),
		chromedp.Sleep(c.cfg.ScrollDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	fmt.Fprintf(c.w, "rendered page (%d bytes, %d sections expanded)\n", len(html), expanded)
	return html, nil
}

// File serves saved HTML in place of a live page.
type File struct {
	Path string
}

// Render returns the file's content. The URL is ignored.
func (f File) Render(_ context.Context, _ string) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading saved page: %w", err)
	}
	return string(data), nil
}

// Source turns rendered HTML into the link list and page context the
// extractor consumes.
type Source struct {
	Renderer Renderer
}

// Fetch renders url and parses the result.
func (s Source) Fetch(ctx context.Context, url string) (types.Page, error) {
	html, err := s.Renderer.Render(ctx, url)
	if err != nil {
		return types.Page{}, err
	}
	page, err := recommend.ParsePage(url, strings.NewReader(html))
	if err != nil {
		return types.Page{}, fmt.Errorf("parsing rendered page: %w", err)
	}
	return page, nil
}
