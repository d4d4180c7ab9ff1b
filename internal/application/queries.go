package application

import (
	"time"

	"github.com/bnema/hnglance/internal/domain"
)

type ItemOutcome string

const (
	OutcomeCreated        ItemOutcome = "created"
	OutcomeChanged        ItemOutcome = "changed"
	OutcomeUnchanged      ItemOutcome = "unchanged"
	OutcomeCarriedForward ItemOutcome = "carried_forward"
	OutcomeDropped        ItemOutcome = "dropped"
	OutcomeFailed         ItemOutcome = "failed"
)

type RunReport struct {
	RunID          string    `json:"run_id"`
	Mode           RunMode   `json:"mode"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Candidates     int       `json:"candidates"`
	Suppressed     int       `json:"suppressed"`
	Admitted       int       `json:"admitted"`
	Created        int       `json:"created"`
	Changed        int       `json:"changed"`
	Unchanged      int       `json:"unchanged"`
	CarriedForward int       `json:"carried_forward"`
	Dropped        int       `json:"dropped"`
	Failed         int       `json:"failed"`
	Pruned         int       `json:"pruned"`
	Summaries      int64     `json:"summaries"`
	Records        int       `json:"records"`
}

func (r *RunReport) count(outcome ItemOutcome) {
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeChanged:
		r.Changed++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeCarriedForward:
		r.CarriedForward++
	case OutcomeDropped:
		r.Dropped++
	case OutcomeFailed:
		r.Failed++
	}
}

type itemResult struct {
	record  *domain.Record
	outcome ItemOutcome
}
