package domain

import "time"

// ReviewRecord is the per-(item, learner) scheduling state.
//
// Records only exist once an item has been graded at least once; an
// ungraded item simply has no record. IntervalDays is 0 only in the
// sub-day learning state that immediately follows an Again grading,
// and is at least 1 otherwise.
type ReviewRecord struct {
	ItemID          string     `json:"item_id"`
	OwnerID         string     `json:"owner_id"`
	DueAt           time.Time  `json:"due_at"`
	EaseFactor      float64    `json:"ease_factor"`
	IntervalDays    int        `json:"interval_days"`
	RepetitionCount int        `json:"repetition_count"`
	LastGrade       Grade      `json:"last_grade"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at"` // nil before first grading
}

// Clone returns a deep copy of the record. Pointer fields are copied by value.
func (r ReviewRecord) Clone() ReviewRecord {
	out := r
	if r.LastReviewedAt != nil {
		v := *r.LastReviewedAt
		out.LastReviewedAt = &v
	}
	return out
}

// ReviewedAt returns the last review time, or the zero time if the
// record has never been reviewed or carries a malformed timestamp.
// Conflict resolution treats the zero time as older than everything.
func (r ReviewRecord) ReviewedAt() time.Time {
	if r.LastReviewedAt == nil {
		return time.Time{}
	}
	return *r.LastReviewedAt
}

// Stats is the summary the store derives for one learner's collection.
type Stats struct {
	Total         int `json:"total"`
	Due           int `json:"due"`
	ReviewedToday int `json:"reviewed_today"`
	Learning      int `json:"learning"`
	Mature        int `json:"mature"`
}
