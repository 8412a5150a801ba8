// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

type fakeClaude struct {
	mu      sync.Mutex
	prompts []string
	fail    func(prompt string) bool
}

func (f *fakeClaude) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt := req.Messages[0].Content

		f.mu.Lock()
		f.prompts = append(f.prompts, prompt)
		f.mu.Unlock()

		if f.fail != nil && f.fail(prompt) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
			return
		}

		reply := "summary text"
		if strings.HasPrefix(prompt, "Translate the following academic paper abstract") {
			reply = "翻訳された要旨"
		} else if strings.HasPrefix(prompt, "Translate the following figure caption") {
			reply = "図1: 概要"
		}
		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{{Type: "text", Text: " " + reply + " "}},
			Usage:   claudeUsage{InputTokens: 100, OutputTokens: 20},
		})
	}
}

func newTestClaude(t *testing.T, f *fakeClaude, summary types.SummaryConfig) *Claude {
	t.Helper()
	ts := httptest.NewServer(f.handler(t))
	t.Cleanup(ts.Close)

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() { claudeAPIURL = old })

	return NewClaude(types.AIConfig{APIKey: "test-key", Model: "claude-3-5-sonnet-20241022", MaxRetries: 1}, summary, "ja", ts.Client())
}

func testPaper() types.Paper {
	return types.Paper{
		ID:       "2501.01234",
		Title:    "Scaling Sparse Mixtures",
		Authors:  []string{"A One", "B Two", "C Three", "D Four", "E Five", "F Six"},
		Abstract: "We study sparse routing.",
		TeaserFigures: []types.TeaserFigure{
			{ImageURL: "https://x.test/1.0.jpeg", Caption: "Figure 1: Overview."},
		},
	}
}

func TestClaudeSummarize(t *testing.T) {
	f := &fakeClaude{}
	c := newTestClaude(t, f, types.SummaryConfig{
		MaxLength:          200,
		CustomInstructions: "Use bullet points.",
		Sections: []types.SummarySection{
			{Name: "novelty", Prompt: "What is new?"},
			{Name: "method", Prompt: "How does it work?"},
		},
		TranslateCaptions: true,
	})

	d, err := c.Summarize(context.Background(), testPaper(), "Full text of the paper.")
	require.NoError(t, err)

	assert.Equal(t, "翻訳された要旨", d.TranslatedAbstract)
	require.Len(t, d.Summaries, 2)
	assert.Equal(t, types.SectionSummary{Name: "novelty", Text: "summary text"}, d.Summaries[0])
	assert.Equal(t, "method", d.Summaries[1].Name)
	require.Len(t, d.Figures, 1)
	assert.Equal(t, "図1: 概要", d.Figures[0].Caption)
	assert.Equal(t, "Figure 1: Overview.", d.Paper.TeaserFigures[0].Caption)

	require.Len(t, f.prompts, 4)
	section := f.prompts[2]
	assert.Contains(t, section, "What is new?")
	assert.Contains(t, section, "Answer in ja. Use bullet points.")
	assert.Contains(t, section, "Maximum length: 200 characters.")
	assert.Contains(t, section, "Full text of the paper.")
	assert.Contains(t, section, "A One, B Two, C Three, D Four, E Five\n")

	in, out := c.Usage.Totals("")
	assert.Equal(t, 400, in)
	assert.Equal(t, 80, out)
	assert.Equal(t, []string{"2501.01234"}, c.Usage.Papers())
}

func TestClaudeSectionFailure(t *testing.T) {
	f := &fakeClaude{fail: func(p string) bool { return strings.Contains(p, "How does it work?") }}
	c := newTestClaude(t, f, types.SummaryConfig{Sections: []types.SummarySection{
		{Name: "novelty", Prompt: "What is new?"},
		{Name: "method", Prompt: "How does it work?"},
	}})

	d, err := c.Summarize(context.Background(), testPaper(), "")
	require.NoError(t, err)
	require.Len(t, d.Summaries, 1)
	assert.Equal(t, "novelty", d.Summaries[0].Name)
}

func TestClaudeAllSectionsFail(t *testing.T) {
	f := &fakeClaude{fail: func(p string) bool { return strings.Contains(p, "What is new?") }}
	c := newTestClaude(t, f, types.SummaryConfig{Sections: []types.SummarySection{{Name: "novelty", Prompt: "What is new?"}}})

	_, err := c.Summarize(context.Background(), testPaper(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "novelty")
}

func TestClaudeTranslationFailure(t *testing.T) {
	f := &fakeClaude{fail: func(p string) bool { return strings.HasPrefix(p, "Translate") }}
	c := newTestClaude(t, f, types.SummaryConfig{})

	_, err := c.Summarize(context.Background(), testPaper(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "translating abstract")
}

func TestNoop(t *testing.T) {
	p := testPaper()
	d, err := Noop{}.Summarize(context.Background(), p, "")
	require.NoError(t, err)
	assert.Equal(t, p.Abstract, d.TranslatedAbstract)
	assert.Empty(t, d.Summaries)
	assert.Equal(t, p.TeaserFigures, d.Figures)
}

func TestUsageReport(t *testing.T) {
	u := &Usage{Model: "claude-3-5-sonnet-20241022"}
	u.Record(Call{PaperID: "a", Operation: "translate_abstract", InputTokens: 1_000_000, OutputTokens: 0})
	u.Record(Call{PaperID: "b", Operation: "summary_novelty", InputTokens: 0, OutputTokens: 1_000_000})

	cost, ok := u.Cost(u.Totals(""))
	require.True(t, ok)
	assert.InDelta(t, 18.0, cost, 1e-9)

	var buf bytes.Buffer
	u.Report(&buf)
	out := buf.String()
	assert.Contains(t, out, "a: 1000000 input, 0 output tokens ($3.0000)")
	assert.Contains(t, out, "2 calls")
	assert.Contains(t, out, "average per paper: $9.0000")

	unknown := &Usage{Model: "mystery"}
	_, ok = unknown.Cost(10, 10)
	assert.False(t, ok)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 3))
	assert.Equal(t, "ab...", clip("abc", 2))
	assert.Equal(t, "日本...", clip("日本語", 2))
}
