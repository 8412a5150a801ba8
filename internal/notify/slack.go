// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

// Slack posts each digest as a main message with summaries and figures in
// its thread.
type Slack struct {
	Client   *slack.Client
	Channel  string
	Elements types.PostElements

	// Out receives warnings about thread replies that failed.
	Out io.Writer
}

// NewSlack returns a notifier for cfg. Options are passed to the Slack
// client (tests use slack.OptionAPIURL).
func NewSlack(cfg types.SlackConfig, out io.Writer, opts ...slack.Option) *Slack {
	return &Slack{
		Client:   slack.New(cfg.Token, opts...),
		Channel:  cfg.ChannelID,
		Elements: cfg.PostElements,
		Out:      out,
	}
}

// Check verifies the token and returns the bot's user name.
func (s *Slack) Check(ctx context.Context) (string, error) {
	resp, err := s.Client.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("slack auth test: %w", err)
	}
	return resp.User, nil
}

// Notify posts the main message and then the thread replies. Only a failed
// main message is an error; failed replies are reported to Out.
func (s *Slack) Notify(ctx context.Context, d types.Digest) error {
	ts, err := s.postMain(ctx, d)
	if err != nil {
		return err
	}

	for _, sum := range d.Summaries {
		_, _, err := s.Client.PostMessageContext(ctx, s.Channel,
			slack.MsgOptionText(summaryText(sum), false),
			slack.MsgOptionTS(ts),
		)
		if err != nil {
			s.warnf("posting summary %q for %s: %v", sum.Name, d.Paper.ID, err)
		}
	}

	if !s.Elements.TeaserFigures {
		return nil
	}
	for i, f := range uniqueFigures(d.Figures) {
		if err := s.postFigure(ctx, ts, f, i); err != nil {
			s.warnf("posting figure %d for %s: %v", i+1, d.Paper.ID, err)
		}
	}
	return nil
}

func (s *Slack) postMain(ctx context.Context, d types.Digest) (string, error) {
	sections, abstract := mainSections(d, s.Elements)

	var blocks []slack.Block
	for _, text := range sections {
		blocks = append(blocks, markdownSection(text))
	}
	blocks = append(blocks, slack.NewDividerBlock())
	if abstract != "" {
		blocks = append(blocks, markdownSection(abstract))
	}

	_, ts, err := s.Client.PostMessageContext(ctx, s.Channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText("New paper: "+d.Paper.Title, false),
	)
	if err != nil {
		return "", fmt.Errorf("posting %s: %w", d.Paper.ID, err)
	}
	return ts, nil
}

// postFigure uploads the cached file when there is one, otherwise posts
// the remote image in an image block.
func (s *Slack) postFigure(ctx context.Context, ts string, f types.TeaserFigure, i int) error {
	caption := figureCaption(f, i)

	if f.LocalPath != "" {
		if info, err := os.Stat(f.LocalPath); err == nil {
			_, err := s.Client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
				File:            f.LocalPath,
				FileSize:        int(info.Size()),
				Filename:        filepath.Base(f.LocalPath),
				Title:           truncate(caption, maxTitleRunes),
				InitialComment:  caption,
				Channel:         s.Channel,
				ThreadTimestamp: ts,
			})
			return err
		}
	}

	_, _, err := s.Client.PostMessageContext(ctx, s.Channel,
		slack.MsgOptionBlocks(
			markdownSection(fmt.Sprintf("*Figure %d*\n%s", i+1, caption)),
			slack.NewImageBlock(f.ImageURL, truncate(caption, maxTitleRunes), "", nil),
		),
		slack.MsgOptionText(caption, false),
		slack.MsgOptionTS(ts),
	)
	return err
}

func (s *Slack) warnf(format string, args ...any) {
	if s.Out != nil {
		fmt.Fprintf(s.Out, "warning: "+format+"\n", args...)
	}
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}
