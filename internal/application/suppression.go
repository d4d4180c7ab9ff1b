package application

import (
	"time"

	"github.com/bnema/hnglance/internal/domain"
)

type cachedSet interface {
	Has(id domain.ItemID) bool
}

// SuppressionTracker owns the suppression entries of a single run.
type SuppressionTracker struct {
	entries   map[domain.ItemID]time.Time
	retention time.Duration
	now       time.Time
}

func NewSuppressionTracker(entries map[domain.ItemID]time.Time, retention time.Duration, now time.Time) *SuppressionTracker {
	copied := make(map[domain.ItemID]time.Time, len(entries))
	for id, seenAt := range entries {
		copied[id] = seenAt
	}

	return &SuppressionTracker{entries: copied, retention: retention, now: now}
}

// Admit drops candidates that carry a live suppression entry and are no longer cached.
func (t *SuppressionTracker) Admit(candidates []domain.ItemID, cached cachedSet) ([]domain.ItemID, []domain.ItemID) {
	admitted := make([]domain.ItemID, 0, len(candidates))
	var suppressed []domain.ItemID
	for _, id := range candidates {
		if !cached.Has(id) && t.suppresses(id) {
			suppressed = append(suppressed, id)
			continue
		}
		admitted = append(admitted, id)
	}

	return admitted, suppressed
}

func (t *SuppressionTracker) Record(id domain.ItemID, origin time.Time) {
	if origin.IsZero() {
		origin = t.now
	}
	t.entries[id] = origin
}

func (t *SuppressionTracker) Prune() int {
	pruned := 0
	for id, seenAt := range t.entries {
		if t.expired(seenAt) {
			delete(t.entries, id)
			pruned++
		}
	}
	return pruned
}

func (t *SuppressionTracker) Entries() map[domain.ItemID]time.Time {
	copied := make(map[domain.ItemID]time.Time, len(t.entries))
	for id, seenAt := range t.entries {
		copied[id] = seenAt
	}
	return copied
}

func (t *SuppressionTracker) suppresses(id domain.ItemID) bool {
	seenAt, ok := t.entries[id]
	return ok && !t.expired(seenAt)
}

func (t *SuppressionTracker) expired(seenAt time.Time) bool {
	return seenAt.Before(t.now.Add(-t.retention))
}
