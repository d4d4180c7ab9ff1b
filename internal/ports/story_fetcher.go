package ports

import (
	"context"

	"github.com/bnema/hnglance/internal/domain"
)

type StoryFetcher interface {
	FetchStory(ctx context.Context, id domain.ItemID) (domain.StoryInfo, error)
	FetchDiscussion(ctx context.Context, id domain.ItemID) (string, error)
	FetchPage(ctx context.Context, url string) (string, error)
}
