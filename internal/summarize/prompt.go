// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

const (
	maxPromptAuthors  = 5
	maxPromptAbstract = 500
	maxPromptContent  = 3000
)

var translateTmpl = template.Must(template.New("translate").Parse(`Translate the following academic paper abstract to {{.Language}}.
Keep technical terms and proper nouns in English with explanations in {{.Language}}.
Use a formal academic tone. Respond with the translation only.

Abstract:
{{.Text}}
`))

var captionTmpl = template.Must(template.New("caption").Parse(`Translate the following figure caption from an academic paper to {{.Language}}.
Keep the figure label (for example "Figure 2:") and technical terms unchanged. Respond with the translation only.

Caption:
{{.Text}}
`))

var sectionTmpl = template.Must(template.New("section").Parse(`Paper Title: {{.Title}}
Authors: {{.Authors}}
Abstract: {{.Abstract}}
{{if .Content}}
Full Content (excerpt):
{{.Content}}
{{end}}
{{.Prompt}}

Answer in {{.Language}}.{{if .Instructions}} {{.Instructions}}{{end}}

Maximum length: {{.MaxLength}} characters.
`))

type textPrompt struct {
	Language string
	Text     string
}

type sectionPrompt struct {
	Title        string
	Authors      string
	Abstract     string
	Content      string
	Prompt       string
	Language     string
	Instructions string
	MaxLength    int
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newSectionPrompt(p types.Paper, content string, section types.SummarySection, language string, cfg types.SummaryConfig) sectionPrompt {
	authors := p.Authors
	if len(authors) > maxPromptAuthors {
		authors = authors[:maxPromptAuthors]
	}
	return sectionPrompt{
		Title:        p.Title,
		Authors:      strings.Join(authors, ", "),
		Abstract:     clip(p.Abstract, maxPromptAbstract),
		Content:      clip(content, maxPromptContent),
		Prompt:       section.Prompt,
		Language:     language,
		Instructions: strings.TrimSpace(cfg.CustomInstructions),
		MaxLength:    cfg.MaxLength,
	}
}

// clip shortens s to n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
