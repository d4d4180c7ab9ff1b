// Package gemini summarizes text with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/hnglance/internal/adapters/summarizer"
	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
	"google.golang.org/genai"
)

const (
	DefaultModel           = "gemini-2.0-flash"
	defaultMaxOutputTokens = 1024
)

type Config struct {
	APIKey string
	// BaseURL optionally overrides the Gemini endpoint.
	BaseURL         string
	Model           string
	MaxOutputTokens int32
}

type Summarizer struct {
	models          modelsClient
	model           string
	maxOutputTokens int32
}

var _ ports.Summarizer = (*Summarizer)(nil)

type modelsClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

func New(ctx context.Context, cfg Config) (*Summarizer, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("new gemini summarizer: missing api key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimSpace(cfg.BaseURL),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	if client == nil || client.Models == nil {
		return nil, errors.New("new gemini client: models client is nil")
	}

	return newSummarizer(client.Models, cfg), nil
}

func newSummarizer(models modelsClient, cfg Config) *Summarizer {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	maxOutputTokens := cfg.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}

	return &Summarizer{models: models, model: model, maxOutputTokens: maxOutputTokens}
}

func (s *Summarizer) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	prompt, err := summarizer.BuildPrompt(req)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: prompt.Input}}},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt.Instructions}}},
		MaxOutputTokens:   s.maxOutputTokens,
	}

	resp, err := s.models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: gemini %s summary: %w", domain.ErrSummarizerFailed, req.Kind, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: gemini %s summary: nil response", domain.ErrSummarizerFailed, req.Kind)
	}

	output := strings.TrimSpace(responseText(resp))
	if output == "" {
		return "", fmt.Errorf("%w: gemini %s summary is empty", domain.ErrSummarizerFailed, req.Kind)
	}
	return output, nil
}

// responseText joins the text parts of the first candidate, skipping thought parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
