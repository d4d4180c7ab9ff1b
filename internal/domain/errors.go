package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoCandidates     = errors.New("no candidate source succeeded")
	ErrSnapshotCorrupt  = errors.New("snapshot is corrupt")
	ErrSnapshotWrite    = errors.New("snapshot write failed")
	ErrSummarizerFailed = errors.New("summarizer failed")
)

type FetchError struct {
	ID       ItemID
	Resource string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for item %s after %d attempts: %v", e.Resource, e.ID, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type TransformError struct {
	ID   ItemID
	Kind SummaryKind
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("derive %s summary for item %s: %v", e.Kind, e.ID, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
