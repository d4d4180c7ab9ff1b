package ports

import (
	"context"

	"github.com/bnema/hnglance/internal/domain"
)

type CandidateSource interface {
	Name() string
	Candidates(ctx context.Context, limit int) ([]domain.ItemID, error)
}
