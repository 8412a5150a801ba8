// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

const pageURL = "https://www.scholar-inbox.com/login?sha_key=abc&date=2025-10-31"

func loadDashboard(t *testing.T) types.Page {
	t.Helper()
	f, err := os.Open("testdata/dashboard.html")
	require.NoError(t, err)
	defer f.Close()

	page, err := ParsePage(pageURL, f)
	require.NoError(t, err)
	return page
}

func TestParsePageLinks(t *testing.T) {
	page := loadDashboard(t)
	assert.Equal(t, pageURL, page.URL)
	require.NotEmpty(t, page.Links)

	var hrefs []string
	for _, l := range page.Links {
		hrefs = append(hrefs, l.Href)
	}
	assert.Contains(t, hrefs, "https://www.scholar-inbox.com/authors/2501.05678")
	assert.Contains(t, hrefs, "https://www.scholar-inbox.com/settings")
	assert.Len(t, page.Context, 3)
}

func TestParsePageHeaderContext(t *testing.T) {
	sib := loadDashboard(t).Context["2501.01234"]

	assert.True(t, strings.HasPrefix(sib.Abstract, "We study sparse mixture-of-experts"), sib.Abstract)
	assert.Equal(t, "https://arxiv.org/pdf/2501.01234v2", sib.PDFURL)
	assert.Empty(t, sib.HTMLURL)
	assert.Equal(t, "https://github.com/example/sparse-moe", sib.GitHubURL)
	assert.Equal(t, &types.Relevance{Score: 87, ThumbsUp: 12, ReadBy: 340}, sib.Relevance)

	require.Len(t, sib.Figures, 2)
	assert.Equal(t, "https://www.scholar-inbox.com/images/4449266.0.jpeg", sib.Figures[0].ImageURL)
	assert.Equal(t, "Figure 1: Overview of the sparse router.", sib.Figures[0].Caption)
	assert.Equal(t, "Figure 2", sib.Figures[1].Caption)
}

func TestParsePageListContext(t *testing.T) {
	sib := loadDashboard(t).Context["2501.05678"]

	assert.True(t, strings.HasPrefix(sib.Abstract, "We train diffusion policies"), sib.Abstract)
	assert.Equal(t, &types.Relevance{Score: 64, ThumbsUp: 3, ReadBy: 120}, sib.Relevance)
	assert.Empty(t, sib.Figures)
}

func TestParsePageEndToEnd(t *testing.T) {
	page := loadDashboard(t)

	groups := GroupLinks(page.Links)
	res := Extract(groups, page.Context, Options{PreferHTML: true, RequireAbstract: true}, nil)

	require.Len(t, res.Papers, 2)
	header := res.Papers[0]
	assert.Equal(t, "2501.01234", header.ID)
	assert.Equal(t, types.PaperHeader, header.Kind)
	assert.Equal(t, "Scaling Sparse Mixtures for Vision Transformers", header.Title)
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, header.Authors)
	assert.Equal(t, "https://arxiv.org/html/2501.01234", header.DocumentURL)
	assert.Len(t, header.TeaserFigures, 2)

	rec := res.Papers[1]
	assert.Equal(t, "2501.05678", rec.ID)
	assert.Equal(t, types.PaperRecommended, rec.Kind)
	assert.Equal(t, []string{"Carol White", "et al."}, rec.Authors)

	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 1, res.Incomplete)
}
