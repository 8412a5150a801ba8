// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package figures caches teaser images on disk for upload.
package figures

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/inbox-digest/internal/httputil"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

// captionKeyLen is how much of a caption takes part in duplicate detection.
const captionKeyLen = 50

// Cache downloads teaser figures into Dir.
type Cache struct {
	Dir        string
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int
	Out        io.Writer
}

// Fetch downloads p's teaser figures and returns a copy of p whose figures
// carry LocalPath. Figures repeated with the same URL and caption are
// dropped. A figure that fails to download is kept without LocalPath and
// reported on Out.
func (c *Cache) Fetch(ctx context.Context, p types.Paper) (types.Paper, error) {
	if len(p.TeaserFigures) == 0 {
		return p, nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return p, fmt.Errorf("creating cache directory: %w", err)
	}
	w := c.Out
	if w == nil {
		w = io.Discard
	}

	figures := make([]types.TeaserFigure, 0, len(p.TeaserFigures))
	for _, f := range Dedup(p.TeaserFigures) {
		dest := filepath.Join(c.Dir, FileName(p.ID, len(figures), f.ImageURL))
		if err := c.download(ctx, f.ImageURL, dest); err != nil {
			fmt.Fprintf(w, "warning: %s: figure %d: %v\n", p.ID, len(figures)+1, err)
		} else {
			f.LocalPath = dest
		}
		figures = append(figures, f)
	}
	p.TeaserFigures = figures
	return p, nil
}

// Dedup drops figures whose URL and caption prefix repeat an earlier one.
func Dedup(figures []types.TeaserFigure) []types.TeaserFigure {
	type key struct{ url, caption string }
	seen := make(map[key]bool)
	var out []types.TeaserFigure
	for _, f := range figures {
		caption := []rune(f.Caption)
		if len(caption) > captionKeyLen {
			caption = caption[:captionKeyLen]
		}
		k := key{f.ImageURL, string(caption)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// FileName returns the cache file name for the i-th figure of a paper:
// ID_fig_N_HASH.ext, with an 8-character hash of the image URL.
func FileName(id string, i int, imageURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	sum := md5.Sum([]byte(imageURL))
	safeID := strings.NewReplacer("/", "_", ":", "_").Replace(id)
	return fmt.Sprintf("%s_fig_%d_%x%s", safeID, i, sum[:4], ext)
}

// download writes url to dest through a temp file and rename.
func (c *Cache) download(ctx context.Context, url, dest string) error {
	resp, err := httputil.Get(ctx, c.HTTP, url, c.UserAgent, c.MaxRetries)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".figure-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Cleanup deletes the cached files of papers and returns how many were
// removed. Files outside Dir are never touched.
func (c *Cache) Cleanup(papers []types.Paper) int {
	w := c.Out
	if w == nil {
		w = io.Discard
	}
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, p := range papers {
		for _, f := range p.TeaserFigures {
			if f.LocalPath == "" {
				continue
			}
			abs, err := filepath.Abs(f.LocalPath)
			if err != nil || filepath.Dir(abs) != dir {
				continue
			}
			if err := os.Remove(abs); err != nil {
				if !os.IsNotExist(err) {
					fmt.Fprintf(w, "warning: removing %s: %v\n", f.LocalPath, err)
				}
				continue
			}
			removed++
		}
	}
	return removed
}
