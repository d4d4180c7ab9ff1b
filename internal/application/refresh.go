package application

import (
	"context"
	"strings"
	"time"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	resourceItem       = "item"
	resourceDiscussion = "discussion"
	resourcePage       = "page"
)

// RefreshEngine turns one candidate id plus its optional cached record into a fresh record.
type RefreshEngine struct {
	fetcher ports.StoryFetcher
	memo    *Memoizer
	clock   ports.Clock
	retry   RetryPolicy
	sleep   sleepFunc
	logger  zerolog.Logger
}

func NewRefreshEngine(fetcher ports.StoryFetcher, memo *Memoizer, clock ports.Clock, retry RetryPolicy, logger zerolog.Logger) *RefreshEngine {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &RefreshEngine{
		fetcher: fetcher,
		memo:    memo,
		clock:   clock,
		retry:   retry,
		sleep:   sleepContext,
		logger:  logger,
	}
}

// Refresh returns nil without error when upstream reports the item as dead, deleted or not a story.
// Fetch failures after retries are returned as *domain.FetchError.
func (e *RefreshEngine) Refresh(ctx context.Context, id domain.ItemID, prior *domain.Record) (*domain.Record, error) {
	log := e.logger.With().Int64("item_id", int64(id)).Logger()

	var (
		info       domain.StoryInfo
		discussion string
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		info, err = fetchWithRetry(groupCtx, e, log, id, resourceItem, func(ctx context.Context) (domain.StoryInfo, error) {
			return e.fetcher.FetchStory(ctx, id)
		})
		return err
	})
	group.Go(func() error {
		var err error
		discussion, err = fetchWithRetry(groupCtx, e, log, id, resourceDiscussion, func(ctx context.Context) (string, error) {
			return e.fetcher.FetchDiscussion(ctx, id)
		})
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if !info.Live() {
		log.Debug().Str("type", info.Type).Bool("dead", info.Dead).Bool("deleted", info.Deleted).Msg("dropping item")
		return nil, nil
	}

	var previous domain.Record
	if prior != nil {
		previous = *prior
	}

	page := previous.Page
	if page == "" && strings.TrimSpace(info.URL) != "" {
		fetched, err := fetchWithRetry(ctx, e, log, id, resourcePage, func(ctx context.Context) (string, error) {
			return e.fetcher.FetchPage(ctx, info.URL)
		})
		if err != nil {
			log.Warn().Err(err).Str("url", info.URL).Msg("page unavailable")
		} else {
			page = fetched
		}
	}

	pageSummary := e.derive(ctx, log, DeriveRequest{
		ID:          id,
		Kind:        domain.SummaryKindPage,
		Title:       info.Title,
		Source:      page,
		PriorOutput: previous.PageSummary,
		PriorSource: previous.Page,
	})
	discussionSummary := e.derive(ctx, log, DeriveRequest{
		ID:          id,
		Kind:        domain.SummaryKindDiscussion,
		Title:       info.Title,
		Source:      discussion,
		PriorOutput: previous.DiscussionSummary,
		PriorSource: previous.Discussion,
		Auxiliary:   pageSummary,
	})

	record := domain.Record{
		ID:                id,
		Info:              info,
		Page:              page,
		Discussion:        discussion,
		PageSummary:       pageSummary,
		DiscussionSummary: discussionSummary,
	}.Stamp(prior, e.clock.Now())

	return &record, nil
}

// Resummarize re-derives both summaries from cached content without touching the network.
func (e *RefreshEngine) Resummarize(ctx context.Context, record domain.Record) domain.Record {
	log := e.logger.With().Int64("item_id", int64(record.ID)).Logger()

	updated := record
	updated.PageSummary = e.derive(ctx, log, DeriveRequest{
		ID:          record.ID,
		Kind:        domain.SummaryKindPage,
		Title:       record.Info.Title,
		Source:      record.Page,
		PriorOutput: record.PageSummary,
		PriorSource: record.Page,
		Force:       true,
	})
	updated.DiscussionSummary = e.derive(ctx, log, DeriveRequest{
		ID:          record.ID,
		Kind:        domain.SummaryKindDiscussion,
		Title:       record.Info.Title,
		Source:      record.Discussion,
		PriorOutput: record.DiscussionSummary,
		PriorSource: record.Discussion,
		Auxiliary:   updated.PageSummary,
		Force:       true,
	})

	return updated.Stamp(&record, e.clock.Now())
}

// derive falls back to the prior output when the summarizer fails.
func (e *RefreshEngine) derive(ctx context.Context, log zerolog.Logger, req DeriveRequest) string {
	output, err := e.memo.Derive(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(req.Kind)).Msg("keeping previous summary")
		return req.PriorOutput
	}
	return output
}

func fetchWithRetry[T any](ctx context.Context, e *RefreshEngine, log zerolog.Logger, id domain.ItemID, resource string, op func(context.Context) (T, error)) (T, error) {
	onRetry := func(attempt int, wait time.Duration, err error) {
		log.Debug().
			Err(err).
			Str("resource", resource).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("retrying fetch")
	}

	value, attempts, err := retry(ctx, e.retry, e.sleep, onRetry, op)
	if err != nil {
		var zero T
		return zero, &domain.FetchError{ID: id, Resource: resource, Attempts: attempts, Err: err}
	}
	return value, nil
}
