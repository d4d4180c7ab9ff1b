package application

import "time"

type RunMode string

const (
	RunModeRefresh     RunMode = "refresh"
	RunModeResummarize RunMode = "resummarize"
	RunModeRewrite     RunMode = "rewrite"
)

type RunOptions struct {
	// Resummarize re-derives summaries of cached records without network access.
	Resummarize bool
	// RewriteOnly re-emits the previous snapshot untouched.
	RewriteOnly bool
}

func (o RunOptions) Mode() RunMode {
	switch {
	case o.RewriteOnly:
		return RunModeRewrite
	case o.Resummarize:
		return RunModeResummarize
	default:
		return RunModeRefresh
	}
}

type Policy struct {
	StoriesPerSource int
	Concurrency      int
	Retention        time.Duration
	Retry            RetryPolicy
}

func DefaultPolicy() Policy {
	return Policy{
		StoriesPerSource: 20,
		Concurrency:      1,
		Retention:        7 * 24 * time.Hour,
		Retry:            RetryPolicy{Limit: 2, BaseDelay: time.Second},
	}
}
