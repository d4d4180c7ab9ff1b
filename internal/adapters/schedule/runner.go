// Package schedule runs a job on a cron schedule, never overlapping two runs.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Job func(ctx context.Context) error

type Status struct {
	Schedule   string    `json:"schedule"`
	Runs       int       `json:"runs"`
	Failures   int       `json:"failures"`
	Running    bool      `json:"running"`
	LastStart  time.Time `json:"last_start,omitzero"`
	LastFinish time.Time `json:"last_finish,omitzero"`
	LastError  string    `json:"last_error,omitempty"`
	Next       time.Time `json:"next,omitzero"`
}

type Runner struct {
	spec     string
	schedule rcron.Schedule
	job      Job
	logger   zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	status Status
}

func NewRunner(spec string, job Job, logger zerolog.Logger) (*Runner, error) {
	spec = strings.TrimSpace(spec)
	if job == nil {
		return nil, errors.New("schedule job is nil")
	}

	schedule, err := rcron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	return &Runner{
		spec:     spec,
		schedule: schedule,
		job:      job,
		logger:   logger,
		now:      time.Now,
		status:   Status{Schedule: spec},
	}, nil
}

// Run triggers the job on schedule until ctx is cancelled, then waits for an in-flight run to return.
func (r *Runner) Run(ctx context.Context) error {
	logger := cronLogger{logger: r.logger}
	c := rcron.New(
		rcron.WithLogger(logger),
		rcron.WithChain(rcron.Recover(logger), rcron.SkipIfStillRunning(logger)),
	)
	c.Schedule(r.schedule, rcron.FuncJob(func() {
		_ = r.RunOnce(ctx)
	}))

	r.setNext(r.schedule.Next(r.now()))
	c.Start()
	r.logger.Info().Str("schedule", r.spec).Msg("scheduler started")

	<-ctx.Done()

	<-c.Stop().Done()
	r.logger.Info().Msg("scheduler stopped")
	return nil
}

func (r *Runner) RunOnce(ctx context.Context) error {
	start := r.now()
	r.mu.Lock()
	r.status.Running = true
	r.status.LastStart = start
	r.mu.Unlock()

	err := r.job(ctx)

	finish := r.now()
	r.mu.Lock()
	r.status.Running = false
	r.status.Runs++
	r.status.LastFinish = finish
	r.status.LastError = ""
	if err != nil {
		r.status.Failures++
		r.status.LastError = err.Error()
	}
	r.status.Next = r.schedule.Next(finish)
	r.mu.Unlock()

	if err != nil {
		r.logger.Error().Err(err).Dur("took", finish.Sub(start)).Msg("scheduled run failed")
		return err
	}
	r.logger.Debug().Dur("took", finish.Sub(start)).Msg("scheduled run finished")
	return nil
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) setNext(next time.Time) {
	r.mu.Lock()
	r.status.Next = next
	r.mu.Unlock()
}

// cronLogger routes robfig/cron logging through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
