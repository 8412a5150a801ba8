// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

// Writer prints digests as text.
type Writer struct {
	W        io.Writer
	Elements types.PostElements
}

func (w Writer) Notify(_ context.Context, d types.Digest) error {
	sections, abstract := mainSections(d, w.Elements)

	fmt.Fprintf(w.W, "=== %s [%s]\n", d.Paper.ID, d.Paper.Kind)
	for _, s := range sections {
		fmt.Fprintln(w.W, s)
	}
	if abstract != "" {
		fmt.Fprintln(w.W, "---")
		fmt.Fprintln(w.W, abstract)
	}
	for _, s := range d.Summaries {
		fmt.Fprintf(w.W, "  > %s\n", summaryText(s))
	}
	if w.Elements.TeaserFigures {
		for i, f := range uniqueFigures(d.Figures) {
			where := f.LocalPath
			if where == "" {
				where = f.ImageURL
			}
			fmt.Fprintf(w.W, "  [figure %d] %s (%s)\n", i+1, figureCaption(f, i), where)
		}
	}
	fmt.Fprintln(w.W)
	return nil
}
