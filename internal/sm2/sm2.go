package sm2

import (
	"math"
	"time"

	"github.com/recalld/recalld/internal/domain"
)

// Scheduling constants. Ease is bounded below so a long run of failures
// can never drive intervals to zero growth.
const (
	DefaultEase = 2.5
	MinEase     = 1.3

	// LearningStep is how soon a failed item comes back. A record in this
	// state carries IntervalDays 0 until it is graded successfully.
	LearningStep = 10 * time.Minute

	// Maturity bands, derived from the current interval. Reporting only.
	LearningMaxDays = 7
	MatureMinDays   = 21
)

const day = 24 * time.Hour

// First grades an item that has no prior record. The initial interval
// comes from the grade alone; ease always starts at DefaultEase.
func First(itemID, ownerID string, grade domain.Grade, now time.Time) domain.ReviewRecord {
	rec := domain.ReviewRecord{
		ItemID:          itemID,
		OwnerID:         ownerID,
		EaseFactor:      DefaultEase,
		RepetitionCount: 1,
		LastGrade:       grade,
		LastReviewedAt:  &now,
	}

	switch grade {
	case domain.Again:
		rec.IntervalDays = 0
		rec.DueAt = now.Add(LearningStep)
	case domain.Easy:
		rec.IntervalDays = 3
		rec.DueAt = now.Add(3 * day)
	default: // Hard, Good
		rec.IntervalDays = 1
		rec.DueAt = now.Add(day)
	}
	return rec
}

// Next grades an item with an existing record and returns the replacement
// record. The input is not mutated.
//
// The ease update and the interval update are deliberately decoupled: an
// Again grading penalizes ease for future growth but resets the interval
// to the learning step instead of growing from the penalized ease, so one
// bad review cannot corrupt long-term scheduling.
func Next(prev domain.ReviewRecord, grade domain.Grade, now time.Time) domain.ReviewRecord {
	rec := prev.Clone()
	rec.EaseFactor = nextEase(prev.EaseFactor, grade.Quality())
	rec.RepetitionCount = prev.RepetitionCount + 1
	rec.LastGrade = grade
	rec.LastReviewedAt = &now

	if grade == domain.Again {
		rec.IntervalDays = 0
		rec.DueAt = now.Add(LearningStep)
		return rec
	}

	ivl := int(math.Round(float64(prev.IntervalDays) * rec.EaseFactor))
	if ivl < 1 {
		ivl = 1
	}
	rec.IntervalDays = ivl
	rec.DueAt = now.Add(time.Duration(ivl) * day)
	return rec
}

// nextEase applies the SM-2 ease delta for quality q in 0..3 and clamps
// at MinEase. Easy raises ease, Again and Hard lower it, Good is neutral.
func nextEase(ease float64, q int) float64 {
	miss := float64(3 - q)
	next := ease + (0.1 - miss*(0.08+miss*0.02))
	if next < MinEase {
		return MinEase
	}
	return next
}
