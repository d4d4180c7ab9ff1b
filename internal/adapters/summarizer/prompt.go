// Package summarizer holds what the summarizer backends share: prompt construction and a no-op backend.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
)

const (
	pageInstructions = "You summarize web pages for a news digest. " +
		"Write two or three short plain-text paragraphs covering what the page is about and its key points. " +
		"Do not use markdown headings or bullet lists."
	discussionInstructions = "You summarize Hacker News comment threads for a news digest. " +
		"Write a few short plain-text paragraphs describing the main opinions, disagreements and notable insights. " +
		"Do not quote usernames. Do not use markdown headings."
)

// Prompt is the provider-neutral form of a summary request.
type Prompt struct {
	Instructions string
	Input        string
}

func BuildPrompt(req domain.SummaryRequest) (Prompt, error) {
	var (
		instructions string
		input        strings.Builder
	)

	switch req.Kind {
	case domain.SummaryKindPage:
		instructions = pageInstructions
	case domain.SummaryKindDiscussion:
		instructions = discussionInstructions
	default:
		return Prompt{}, fmt.Errorf("unknown summary kind %q", req.Kind)
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		input.WriteString("Title: ")
		input.WriteString(title)
		input.WriteString("\n\n")
	}
	if summary := strings.TrimSpace(req.Context); summary != "" && req.Kind == domain.SummaryKindDiscussion {
		input.WriteString("Summary of the linked page:\n")
		input.WriteString(summary)
		input.WriteString("\n\n")
	}
	switch req.Kind {
	case domain.SummaryKindPage:
		input.WriteString("Page contents:\n")
	case domain.SummaryKindDiscussion:
		input.WriteString("Comments:\n")
	}
	input.WriteString(req.Text)

	return Prompt{Instructions: instructions, Input: input.String()}, nil
}

// Noop never produces a summary; records keep their raw content only.
type Noop struct{}

var _ ports.Summarizer = Noop{}

func (Noop) Summarize(context.Context, domain.SummaryRequest) (string, error) {
	return "", nil
}
