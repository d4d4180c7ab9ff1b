package ports

import (
	"context"

	"github.com/bnema/hnglance/internal/domain"
)

type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (string, error)
}
