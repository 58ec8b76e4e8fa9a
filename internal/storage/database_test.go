package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/recalld/recalld/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "recalld.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReviewRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	reviewed := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	rec := domain.ReviewRecord{
		ItemID:          "item-1",
		OwnerID:         "owner-1",
		DueAt:           reviewed.Add(24 * time.Hour),
		EaseFactor:      2.36,
		IntervalDays:    1,
		RepetitionCount: 2,
		LastGrade:       domain.Hard,
		LastReviewedAt:  &reviewed,
	}
	if err := db.SaveReview(ctx, rec); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}

	recs, err := db.FetchReviews(ctx, "owner-1")
	if err != nil {
		t.Fatalf("FetchReviews: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("fetched %d records, want 1", len(recs))
	}
	got := recs[0]
	if got.ItemID != rec.ItemID || got.OwnerID != rec.OwnerID ||
		got.EaseFactor != rec.EaseFactor || got.IntervalDays != rec.IntervalDays ||
		got.RepetitionCount != rec.RepetitionCount || got.LastGrade != rec.LastGrade {
		t.Errorf("fetched record %+v differs from saved %+v", got, rec)
	}
	if !got.DueAt.Equal(rec.DueAt) {
		t.Errorf("DueAt = %v, want %v", got.DueAt, rec.DueAt)
	}
	if got.LastReviewedAt == nil || !got.LastReviewedAt.Equal(reviewed) {
		t.Errorf("LastReviewedAt = %v, want %v", got.LastReviewedAt, reviewed)
	}
}

func TestSaveReviewUpserts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	reviewed := time.Now().UTC().Truncate(time.Second)
	rec := domain.ReviewRecord{
		ItemID: "item-1", OwnerID: "owner-1", DueAt: reviewed.Add(24 * time.Hour),
		EaseFactor: 2.5, IntervalDays: 1, RepetitionCount: 1,
		LastGrade: domain.Good, LastReviewedAt: &reviewed,
	}
	if err := db.SaveReview(ctx, rec); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	rec.RepetitionCount = 2
	rec.IntervalDays = 3
	if err := db.SaveReview(ctx, rec); err != nil {
		t.Fatalf("SaveReview (second): %v", err)
	}

	recs, err := db.FetchReviews(ctx, "owner-1")
	if err != nil {
		t.Fatalf("FetchReviews: %v", err)
	}
	if len(recs) != 1 || recs[0].RepetitionCount != 2 || recs[0].IntervalDays != 3 {
		t.Errorf("upsert produced %+v", recs)
	}
}

func TestDeleteReview(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	reviewed := time.Now().UTC()
	rec := domain.ReviewRecord{
		ItemID: "item-1", OwnerID: "owner-1", DueAt: reviewed,
		EaseFactor: 2.5, IntervalDays: 1, RepetitionCount: 1,
		LastGrade: domain.Good, LastReviewedAt: &reviewed,
	}
	if err := db.SaveReview(ctx, rec); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}

	ok, err := db.DeleteReview(ctx, "owner-1", "item-1")
	if err != nil || !ok {
		t.Fatalf("DeleteReview = %v, %v; want true, nil", ok, err)
	}
	ok, err = db.DeleteReview(ctx, "owner-1", "item-1")
	if err != nil || ok {
		t.Fatalf("second DeleteReview = %v, %v; want false, nil", ok, err)
	}
}

func TestReviewHistory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	grades := []domain.Grade{domain.Good, domain.Again, domain.Easy}
	for i, g := range grades {
		entry := domain.ReviewLogEntry{
			ID:      string(rune('a' + i)),
			OwnerID: "owner-1",
			ItemID:  "item-1",
			Grade:   g,
			At:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.AppendLog(ctx, entry); err != nil {
			t.Fatalf("AppendLog: %v", err)
		}
	}

	entries, err := db.ReviewHistory(ctx, "owner-1", 2)
	if err != nil {
		t.Fatalf("ReviewHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Grade != domain.Easy || entries[1].Grade != domain.Again {
		t.Errorf("history order wrong: %+v", entries)
	}
}

func TestCardAndSourceRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	srcID, err := db.InsertSource(ctx, "/decks/go", "local")
	if err != nil {
		t.Fatalf("InsertSource: %v", err)
	}

	card := domain.Card{ItemID: "abc123", Question: "Q", Answer: "A", Context: "C", Difficulty: 4}
	if err := db.UpsertCard(ctx, card, srcID); err != nil {
		t.Fatalf("UpsertCard: %v", err)
	}

	got, err := db.FindCard(ctx, "abc123")
	if err != nil {
		t.Fatalf("FindCard: %v", err)
	}
	if got == nil || *got != card {
		t.Errorf("FindCard = %+v, want %+v", got, card)
	}

	bySrc, err := db.CardsBySource(ctx, srcID)
	if err != nil {
		t.Fatalf("CardsBySource: %v", err)
	}
	if len(bySrc) != 1 {
		t.Errorf("CardsBySource returned %d cards, want 1", len(bySrc))
	}

	if err := db.TouchSource(ctx, srcID, time.Now()); err != nil {
		t.Fatalf("TouchSource: %v", err)
	}
	src, err := db.FindSourceByPath(ctx, "/decks/go")
	if err != nil {
		t.Fatalf("FindSourceByPath: %v", err)
	}
	if src == nil || !src.LastScanned.Valid {
		t.Errorf("source after touch: %+v", src)
	}

	if err := db.DeleteCard(ctx, "abc123"); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	if got, _ := db.FindCard(ctx, "abc123"); got != nil {
		t.Error("card still present after delete")
	}
}
