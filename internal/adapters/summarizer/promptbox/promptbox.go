// Package promptbox summarizes text by running promptbox templates.
package promptbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
)

const (
	DefaultCommand = "promptbox"

	pageTemplate       = "summarize-page"
	discussionTemplate = "summarize-comments"
	maxStderrBytes     = 2 << 10
)

type Config struct {
	Command string
}

type Summarizer struct {
	command string
}

var _ ports.Summarizer = (*Summarizer)(nil)

func New(cfg Config) *Summarizer {
	command := strings.TrimSpace(cfg.Command)
	if command == "" {
		command = DefaultCommand
	}
	return &Summarizer{command: command}
}

// Summarize runs `promptbox run <template> [--title T] [--page_summary S]` with the text on stdin.
func (s *Summarizer) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	args, err := templateArgs(req)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Stdin = strings.NewReader(req.Text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s %s: %w%s", domain.ErrSummarizerFailed, s.command, args[1], err, stderrSuffix(stderr.Bytes()))
	}

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		return "", fmt.Errorf("%w: %s %s produced no output", domain.ErrSummarizerFailed, s.command, args[1])
	}
	return output, nil
}

func templateArgs(req domain.SummaryRequest) ([]string, error) {
	var args []string
	switch req.Kind {
	case domain.SummaryKindPage:
		args = []string{"run", pageTemplate}
	case domain.SummaryKindDiscussion:
		args = []string{"run", discussionTemplate}
	default:
		return nil, fmt.Errorf("unknown summary kind %q", req.Kind)
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		args = append(args, "--title", title)
	}
	if req.Kind == domain.SummaryKindDiscussion && strings.TrimSpace(req.Context) != "" {
		args = append(args, "--page_summary", req.Context)
	}
	return args, nil
}

func stderrSuffix(stderr []byte) string {
	stderr = bytes.TrimSpace(stderr)
	if len(stderr) == 0 {
		return ""
	}
	if len(stderr) > maxStderrBytes {
		stderr = stderr[:maxStderrBytes]
	}
	return ": " + string(stderr)
}
