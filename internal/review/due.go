package review

import (
	"sort"
	"time"

	"github.com/recalld/recalld/internal/domain"
)

// Due returns every record whose due time is at or before now, sorted
// ascending by due time with the item id as tie-breaker. The slice is
// computed fresh on every call and holds copies.
func (s *Store) Due(now time.Time) []domain.ReviewRecord {
	s.mu.Lock()
	out := make([]domain.ReviewRecord, 0, len(s.records))
	for _, rec := range s.records {
		if !rec.DueAt.After(now) {
			out = append(out, rec.Clone())
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// DueCount reports how many records are due at now.
func (s *Store) DueCount(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if !rec.DueAt.After(now) {
			n++
		}
	}
	return n
}
