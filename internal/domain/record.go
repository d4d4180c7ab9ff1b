package domain

import "time"

type Record struct {
	ID                ItemID
	Info              StoryInfo
	Page              string
	Discussion        string
	PageSummary       string
	DiscussionSummary string
	UpdatedAt         time.Time
}

// SameContent compares every observable field except UpdatedAt.
func (r Record) SameContent(other Record) bool {
	return r.ID == other.ID &&
		r.Info.Equal(other.Info) &&
		r.Page == other.Page &&
		r.Discussion == other.Discussion &&
		r.PageSummary == other.PageSummary &&
		r.DiscussionSummary == other.DiscussionSummary
}

// Stamp sets UpdatedAt to the prior timestamp when nothing observable changed,
// and to now otherwise.
func (r Record) Stamp(prior *Record, now time.Time) Record {
	if prior != nil && prior.SameContent(r) {
		r.UpdatedAt = prior.UpdatedAt
		return r
	}
	r.UpdatedAt = now
	return r
}
