package application

import (
	"context"
	"sync/atomic"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
	"github.com/zeebo/xxh3"
)

// Texts above this size are compared by length and xxh3 digest instead of byte equality.
const largeTextThreshold = 64 << 10

type DeriveRequest struct {
	ID          domain.ItemID
	Kind        domain.SummaryKind
	Title       string
	Source      string
	PriorOutput string
	PriorSource string
	Auxiliary   string
	Force       bool
}

type Memoizer struct {
	summarizer  ports.Summarizer
	invocations atomic.Int64
}

func NewMemoizer(summarizer ports.Summarizer) *Memoizer {
	return &Memoizer{summarizer: summarizer}
}

func (m *Memoizer) Derive(ctx context.Context, req DeriveRequest) (string, error) {
	if req.Source == "" {
		return "", nil
	}

	if req.PriorOutput != "" && !req.Force && sameSource(req.Source, req.PriorSource) {
		return req.PriorOutput, nil
	}

	m.invocations.Add(1)
	output, err := m.summarizer.Summarize(ctx, domain.SummaryRequest{
		Kind:    req.Kind,
		Title:   req.Title,
		Text:    req.Source,
		Context: req.Auxiliary,
	})
	if err != nil {
		return "", &domain.TransformError{ID: req.ID, Kind: req.Kind, Err: err}
	}

	return output, nil
}

func (m *Memoizer) Invocations() int64 {
	return m.invocations.Load()
}

func sameSource(current, prior string) bool {
	if len(current) != len(prior) {
		return false
	}
	if len(current) <= largeTextThreshold {
		return current == prior
	}
	return xxh3.HashString(current) == xxh3.HashString(prior)
}
