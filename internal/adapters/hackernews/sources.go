package hackernews

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
)

const (
	SourceFront = "front"
	SourceBest  = "best"
	SourceTop   = "top"
)

func SourceNames() []string {
	return []string{SourceFront, SourceBest, SourceTop}
}

// NewSource returns the candidate source registered under name.
func (c *Client) NewSource(name string) (ports.CandidateSource, error) {
	switch name {
	case SourceFront:
		return &frontSource{client: c}, nil
	case SourceBest, SourceTop:
		return &listSource{client: c, name: name}, nil
	default:
		return nil, fmt.Errorf("unknown candidate source %q (valid: %s)", name, strings.Join(SourceNames(), ", "))
	}
}

// frontSource scrapes the story rows of the /front page, the stories that made the front page today.
type frontSource struct {
	client *Client
}

func (s *frontSource) Name() string {
	return SourceFront
}

func (s *frontSource) Candidates(ctx context.Context, limit int) ([]domain.ItemID, error) {
	body, _, err := s.client.getText(ctx, s.client.config.WebURL+"/front")
	if err != nil {
		return nil, fmt.Errorf("fetch front page: %w", err)
	}

	ids, err := extractStoryIDs(strings.NewReader(body), limit)
	if err != nil {
		return nil, fmt.Errorf("parse front page: %w", err)
	}
	return ids, nil
}

// listSource reads one of the ranked id lists of the Firebase API.
type listSource struct {
	client *Client
	name   string
}

func (s *listSource) Name() string {
	return s.name
}

func (s *listSource) Candidates(ctx context.Context, limit int) ([]domain.ItemID, error) {
	var raw []int64
	if err := s.client.getJSON(ctx, s.client.config.APIURL+"/"+s.name+"stories.json", &raw); err != nil {
		return nil, fmt.Errorf("fetch %s stories: %w", s.name, err)
	}

	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}
	ids := make([]domain.ItemID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, domain.ItemID(id))
	}
	return ids, nil
}
