// Package openai summarizes text with the OpenAI Responses API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/hnglance/internal/adapters/summarizer"
	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	DefaultModel           = "gpt-4o-mini"
	defaultMaxOutputTokens = 1024
)

type Config struct {
	// APIKey is the credential used to authenticate requests.
	APIKey string
	// BaseURL optionally overrides the OpenAI endpoint.
	BaseURL string
	Model   string
	// MaxOutputTokens caps the length of one summary. Zero uses a default.
	MaxOutputTokens int64
}

type Summarizer struct {
	responses       responsesClient
	model           string
	maxOutputTokens int64
}

var _ ports.Summarizer = (*Summarizer)(nil)

type responsesClient interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (string, error)
}

type responseServiceAdapter struct {
	service responses.ResponseService
}

func (a responseServiceAdapter) New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (string, error) {
	resp, err := a.service.New(ctx, body, opts...)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

func New(cfg Config) (*Summarizer, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.APIKey == "" {
		return nil, errors.New("new openai summarizer: missing api key")
	}

	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(options...)

	return newSummarizer(responseServiceAdapter{service: client.Responses}, cfg), nil
}

func newSummarizer(client responsesClient, cfg Config) *Summarizer {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	maxOutputTokens := cfg.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}

	return &Summarizer{responses: client, model: model, maxOutputTokens: maxOutputTokens}
}

func (s *Summarizer) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	prompt, err := summarizer.BuildPrompt(req)
	if err != nil {
		return "", err
	}

	params := responses.ResponseNewParams{
		Model:           s.model,
		Instructions:    openai.String(prompt.Instructions),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt.Input)},
		MaxOutputTokens: openai.Int(s.maxOutputTokens),
	}

	output, err := s.responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai %s summary: %w", domain.ErrSummarizerFailed, req.Kind, err)
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return "", fmt.Errorf("%w: openai %s summary is empty", domain.ErrSummarizerFailed, req.Kind)
	}
	return output, nil
}
