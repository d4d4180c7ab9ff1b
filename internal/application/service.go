package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Option func(*Service)

func WithPolicy(policy Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service runs refresh cycles over the story snapshot.
type Service struct {
	repo     ports.SnapshotRepository
	sources  []ports.CandidateSource
	clock    ports.Clock
	policy   Policy
	logger   zerolog.Logger
	newRunID func() string

	memo   *Memoizer
	engine *RefreshEngine
}

func NewService(
	repo ports.SnapshotRepository,
	sources []ports.CandidateSource,
	fetcher ports.StoryFetcher,
	summarizer ports.Summarizer,
	clock ports.Clock,
	opts ...Option,
) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	s := &Service{
		repo:     repo,
		sources:  sources,
		clock:    clock,
		policy:   DefaultPolicy(),
		logger:   zerolog.Nop(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.memo = NewMemoizer(summarizer)
	s.engine = NewRefreshEngine(fetcher, s.memo, clock, s.policy.Retry, s.logger)

	return s
}

// Run executes one cycle and persists the resulting snapshot. Only candidate collection,
// cancellation and the final write can fail the run; per-item failures are logged.
func (s *Service) Run(ctx context.Context, opts RunOptions) (RunReport, error) {
	runID := s.newRunID()
	log := s.logger.With().Str("run_id", runID).Str("mode", string(opts.Mode())).Logger()

	now := s.clock.Now()
	report := RunReport{RunID: runID, Mode: opts.Mode(), StartedAt: now}
	invocations := s.memo.Invocations()

	previous := s.loadSnapshot(ctx, log)

	var (
		next domain.Snapshot
		err  error
	)
	switch opts.Mode() {
	case RunModeRewrite:
		next = previous
	case RunModeResummarize:
		next, err = s.resummarize(ctx, previous, now, &report)
	default:
		next, err = s.refresh(ctx, log, previous, now, &report)
	}
	if err != nil {
		return report, err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return report, fmt.Errorf("%w: %w", domain.ErrSnapshotWrite, err)
	}

	report.Records = len(next.Records)
	report.Summaries = s.memo.Invocations() - invocations
	report.FinishedAt = s.clock.Now()

	log.Info().
		Int("candidates", report.Candidates).
		Int("suppressed", report.Suppressed).
		Int("created", report.Created).
		Int("changed", report.Changed).
		Int("unchanged", report.Unchanged).
		Int("carried_forward", report.CarriedForward).
		Int("dropped", report.Dropped).
		Int("failed", report.Failed).
		Int("pruned", report.Pruned).
		Int64("summaries", report.Summaries).
		Int("records", report.Records).
		Msg("run finished")

	return report, nil
}

func (s *Service) Records(ctx context.Context) ([]domain.Record, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot.Records, nil
}

func (s *Service) refresh(ctx context.Context, log zerolog.Logger, previous domain.Snapshot, now time.Time, report *RunReport) (domain.Snapshot, error) {
	candidates, err := s.collectCandidates(ctx, log)
	if err != nil {
		return domain.Snapshot{}, err
	}

	cached := previous.Index()
	tracker := NewSuppressionTracker(previous.Suppressed, s.policy.Retention, now)
	admitted, suppressed := tracker.Admit(candidates, cached)
	report.Candidates = len(candidates)
	report.Suppressed = len(suppressed)
	report.Admitted = len(admitted)

	results := make([]itemResult, len(admitted))
	err = forEach(ctx, len(admitted), s.policy.Concurrency, func(ctx context.Context, index int) {
		results[index] = s.refreshItem(ctx, log, admitted[index], cached)
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("refresh items: %w", err)
	}

	records := domain.NewRecordIndex(len(admitted))
	for _, result := range results {
		report.count(result.outcome)
		if result.record == nil {
			continue
		}
		records.Upsert(*result.record)
		if result.outcome != OutcomeCarriedForward {
			tracker.Record(result.record.ID, result.record.Info.OriginTime())
		}
	}
	report.Pruned = tracker.Prune()

	return domain.Snapshot{Records: records.All(), Suppressed: tracker.Entries()}, nil
}

func (s *Service) refreshItem(ctx context.Context, log zerolog.Logger, id domain.ItemID, cached *domain.RecordIndex) itemResult {
	var prior *domain.Record
	if record, ok := cached.Lookup(id); ok {
		prior = &record
	}

	record, err := s.engine.Refresh(ctx, id, prior)
	switch {
	case err != nil && prior != nil:
		log.Warn().Err(err).Int64("item_id", int64(id)).Msg("refresh failed, keeping cached record")
		return itemResult{record: prior, outcome: OutcomeCarriedForward}
	case err != nil:
		log.Warn().Err(err).Int64("item_id", int64(id)).Msg("refresh failed, skipping item")
		return itemResult{outcome: OutcomeFailed}
	case record == nil:
		return itemResult{outcome: OutcomeDropped}
	case prior == nil:
		return itemResult{record: record, outcome: OutcomeCreated}
	case record.UpdatedAt.Equal(prior.UpdatedAt):
		return itemResult{record: record, outcome: OutcomeUnchanged}
	default:
		return itemResult{record: record, outcome: OutcomeChanged}
	}
}

func (s *Service) resummarize(ctx context.Context, previous domain.Snapshot, now time.Time, report *RunReport) (domain.Snapshot, error) {
	records := make([]domain.Record, len(previous.Records))
	err := forEach(ctx, len(previous.Records), s.policy.Concurrency, func(ctx context.Context, index int) {
		records[index] = s.engine.Resummarize(ctx, previous.Records[index])
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("resummarize records: %w", err)
	}

	for index, record := range records {
		if record.UpdatedAt.Equal(previous.Records[index].UpdatedAt) {
			report.count(OutcomeUnchanged)
		} else {
			report.count(OutcomeChanged)
		}
	}

	tracker := NewSuppressionTracker(previous.Suppressed, s.policy.Retention, now)
	report.Pruned = tracker.Prune()

	return domain.Snapshot{Records: records, Suppressed: tracker.Entries()}, nil
}

func (s *Service) collectCandidates(ctx context.Context, log zerolog.Logger) ([]domain.ItemID, error) {
	if len(s.sources) == 0 {
		return nil, domain.ErrNoCandidates
	}

	lists := make([][]domain.ItemID, 0, len(s.sources))
	var failures []error
	for _, source := range s.sources {
		ids, err := source.Candidates(ctx, s.policy.StoriesPerSource)
		if err != nil {
			log.Warn().Err(err).Str("source", source.Name()).Msg("candidate source failed")
			failures = append(failures, fmt.Errorf("%s: %w", source.Name(), err))
			continue
		}
		if limit := s.policy.StoriesPerSource; limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
		lists = append(lists, ids)
	}

	if len(lists) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoCandidates, errors.Join(failures...))
	}

	return domain.MergeCandidates(lists...), nil
}

func (s *Service) loadSnapshot(ctx context.Context, log zerolog.Logger) domain.Snapshot {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot unavailable, starting from an empty cache")
		return domain.NewSnapshot()
	}
	snapshot.Normalize()
	return snapshot
}
