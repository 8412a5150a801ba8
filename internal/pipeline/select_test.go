// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

func scored(id string, score int, date string) types.Paper {
	return types.Paper{ID: id, Relevance: &types.Relevance{Score: score}, SubmittedDate: date}
}

func TestFilter(t *testing.T) {
	papers := []types.Paper{
		scored("a", 90, ""),
		scored("b", 40, ""),
		{ID: "c"},
		{ID: "d", GitHubURL: "https://github.com/x/d", Relevance: &types.Relevance{Score: -5}},
	}

	tests := []struct {
		name        string
		cfg         types.FilterConfig
		want        []string
		wantDropped int
	}{
		{"disabled", types.FilterConfig{RelevanceThreshold: 100}, []string{"a", "b", "c", "d"}, 0},
		{"threshold", types.FilterConfig{SetThreshold: true, RelevanceThreshold: 50}, []string{"a"}, 3},
		{"negative threshold", types.FilterConfig{SetThreshold: true, RelevanceThreshold: -10}, []string{"a", "b", "d"}, 1},
		{"github", types.FilterConfig{RequireGitHub: true}, []string{"d"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := Filter(papers, tt.cfg)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestSort(t *testing.T) {
	papers := []types.Paper{
		scored("a", 40, "2025-01-10"),
		{ID: "b", SubmittedDate: "not a date"},
		scored("c", 90, "2025/02/01"),
		scored("d", 40, "05-01-2025"),
	}

	tests := []struct {
		order types.SortOrder
		want  []string
	}{
		{types.SortRelevanceDesc, []string{"c", "a", "d", "b"}},
		{types.SortRelevanceAsc, []string{"b", "a", "d", "c"}},
		{types.SortDateDesc, []string{"c", "a", "d", "b"}},
		{types.SortDateAsc, []string{"b", "d", "a", "c"}},
		{types.SortDOMOrder, []string{"a", "b", "c", "d"}},
		{"", []string{"c", "a", "d", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			var w bytes.Buffer
			assert.Equal(t, tt.want, ids(Sort(papers, tt.order, &w)))
			assert.Empty(t, w.String())
		})
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(papers), "input is not reordered")
}

func TestSortUnknownOrder(t *testing.T) {
	var w bytes.Buffer
	got := Sort([]types.Paper{scored("a", 1, ""), scored("b", 2, "")}, "newest", &w)
	assert.Equal(t, []string{"b", "a"}, ids(got))
	assert.Contains(t, w.String(), `warning: unknown sort order "newest", using relevance_desc`)
}

func TestCap(t *testing.T) {
	papers := []types.Paper{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Len(t, Cap(papers, 0), 3)
	assert.Len(t, Cap(papers, 5), 3)
	assert.Equal(t, []string{"a", "b"}, ids(Cap(papers, 2)))
}
