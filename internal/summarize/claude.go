// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize translates abstracts and writes per-section summaries
// of papers with the Claude Messages API.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/inbox-digest/internal/httputil"
	"github.com/pdiddy/inbox-digest/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-20250514"

	defaultMaxTokens = 1024
	defaultMaxLength = 300
	anthropicVersion = "2023-06-01"
)

// Summarizer produces the digest for one paper. content is the paper's
// full text and may be empty.
type Summarizer interface {
	Summarize(ctx context.Context, p types.Paper, content string) (types.Digest, error)
}

// Claude calls the Claude API. Token usage of every call is recorded in
// Usage.
type Claude struct {
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int
	Client     *http.Client
	Language   string
	Summary    types.SummaryConfig
	Usage      *Usage
}

// NewClaude returns a summarizer for the given settings.
func NewClaude(ai types.AIConfig, summary types.SummaryConfig, language string, client *http.Client) *Claude {
	model := ai.Model
	if model == "" {
		model = DefaultModel
	}
	if summary.MaxLength <= 0 {
		summary.MaxLength = defaultMaxLength
	}
	return &Claude{
		APIKey:     ai.APIKey,
		Model:      model,
		MaxTokens:  ai.MaxTokens,
		MaxRetries: ai.MaxRetries,
		Client:     client,
		Language:   language,
		Summary:    summary,
		Usage:      &Usage{Model: model},
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
	Usage   claudeUsage     `json:"usage"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Summarize translates the abstract and, when configured, the figure
// captions, then writes one summary per configured section. A failed
// section is left out of the digest; a failed translation fails the call.
func (c *Claude) Summarize(ctx context.Context, p types.Paper, content string) (types.Digest, error) {
	d := types.Digest{Paper: p, Figures: append([]types.TeaserFigure(nil), p.TeaserFigures...)}

	if p.Abstract != "" {
		prompt, err := render(translateTmpl, textPrompt{Language: c.Language, Text: p.Abstract})
		if err != nil {
			return d, fmt.Errorf("rendering prompt: %w", err)
		}
		text, err := c.complete(ctx, p.ID, "translate_abstract", prompt)
		if err != nil {
			return d, fmt.Errorf("translating abstract: %w", err)
		}
		d.TranslatedAbstract = text
	}

	if c.Summary.TranslateCaptions {
		for i, f := range d.Figures {
			if f.Caption == "" {
				continue
			}
			prompt, err := render(captionTmpl, textPrompt{Language: c.Language, Text: f.Caption})
			if err != nil {
				return d, fmt.Errorf("rendering prompt: %w", err)
			}
			if text, err := c.complete(ctx, p.ID, "translate_caption", prompt); err == nil {
				d.Figures[i].Caption = text
			}
		}
	}

	var errs []string
	for _, section := range c.Summary.Sections {
		prompt, err := render(sectionTmpl, newSectionPrompt(p, content, section, c.Language, c.Summary))
		if err != nil {
			return d, fmt.Errorf("rendering prompt: %w", err)
		}
		text, err := c.complete(ctx, p.ID, "summary_"+section.Name, prompt)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", section.Name, err))
			continue
		}
		d.Summaries = append(d.Summaries, types.SectionSummary{Name: section.Name, Text: text})
	}
	if len(errs) > 0 && len(d.Summaries) == 0 {
		return d, fmt.Errorf("all summary sections failed: %s", strings.Join(errs, "; "))
	}
	return d, nil
}

// complete sends one user message and returns the text of the reply.
func (c *Claude) complete(ctx context.Context, paperID, op, prompt string) (string, error) {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}
	if c.Usage != nil {
		c.Usage.Record(Call{
			PaperID:      paperID,
			Operation:    op,
			InputTokens:  cResp.Usage.InputTokens,
			OutputTokens: cResp.Usage.OutputTokens,
			Duration:     time.Since(start),
		})
	}

	var parts []string
	for _, block := range cResp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return text, nil
}

// Noop returns digests without calling any model. Dry runs use it.
type Noop struct{}

// Summarize returns p with its abstract untranslated and no summaries.
func (Noop) Summarize(_ context.Context, p types.Paper, _ string) (types.Digest, error) {
	return types.Digest{
		Paper:              p,
		TranslatedAbstract: p.Abstract,
		Figures:            append([]types.TeaserFigure(nil), p.TeaserFigures...),
	}, nil
}
