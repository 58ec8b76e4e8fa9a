package review

import (
	"time"

	"github.com/recalld/recalld/internal/domain"
	"github.com/recalld/recalld/internal/sm2"
)

// Stats summarizes the collection at now. Reviewed-today uses the
// calendar day in the store's configured location (UTC by default), so
// the boundary is the same no matter where a grading was reported from.
func (s *Store) Stats(now time.Time) domain.Stats {
	today := now.In(s.loc)
	y, m, d := today.Date()

	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.Stats{Total: len(s.records)}
	for _, rec := range s.records {
		if !rec.DueAt.After(now) {
			st.Due++
		}
		if rec.LastReviewedAt != nil {
			ry, rm, rd := rec.LastReviewedAt.In(s.loc).Date()
			if ry == y && rm == m && rd == d {
				st.ReviewedToday++
			}
		}
		switch {
		case rec.IntervalDays < sm2.LearningMaxDays:
			st.Learning++
		case rec.IntervalDays >= sm2.MatureMinDays:
			st.Mature++
		}
	}
	return st
}
