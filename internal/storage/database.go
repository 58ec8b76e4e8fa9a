package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/recalld/recalld/internal/domain"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

// DB wraps the SQLite connection. It implements the review store's
// persistence contract and backs the item catalog.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to
// date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// FetchReviews returns every stored scheduling record for the owner.
func (db *DB) FetchReviews(ctx context.Context, ownerID string) ([]domain.ReviewRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT owner_id, item_id, due_at, ease_factor, interval_days, repetition_count, last_grade, last_reviewed_at
		FROM reviews WHERE owner_id = ?
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var recs []domain.ReviewRecord
	for rows.Next() {
		rec, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SaveReview upserts one scheduling record.
func (db *DB) SaveReview(ctx context.Context, rec domain.ReviewRecord) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO reviews (owner_id, item_id, due_at, ease_factor, interval_days, repetition_count, last_grade, last_reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, item_id) DO UPDATE SET
			due_at = excluded.due_at,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			repetition_count = excluded.repetition_count,
			last_grade = excluded.last_grade,
			last_reviewed_at = excluded.last_reviewed_at
	`,
		rec.OwnerID,
		rec.ItemID,
		rec.DueAt.UTC().Format(time.RFC3339Nano),
		rec.EaseFactor,
		rec.IntervalDays,
		rec.RepetitionCount,
		rec.LastGrade.String(),
		nullTime(rec.LastReviewedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save review %s: %w", rec.ItemID, err)
	}
	return nil
}

// DeleteReview removes a record and reports whether one existed.
func (db *DB) DeleteReview(ctx context.Context, ownerID, itemID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM reviews WHERE owner_id = ? AND item_id = ?`, ownerID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to delete review %s: %w", itemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendLog appends one grading event to the review history.
func (db *DB) AppendLog(ctx context.Context, entry domain.ReviewLogEntry) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO review_log (id, owner_id, item_id, grade, at)
		VALUES (?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.OwnerID,
		entry.ItemID,
		entry.Grade.String(),
		entry.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to append review log for %s: %w", entry.ItemID, err)
	}
	return nil
}

// StreamUpdates is nil for a local database file: there are no remote
// peers to echo updates. Reconciliation pushes arrive over the HTTP API.
func (db *DB) StreamUpdates(context.Context, string) (<-chan domain.ReviewRecord, error) {
	return nil, nil
}

// ReviewHistory returns the most recent grading events for an owner,
// newest first, capped at limit.
func (db *DB) ReviewHistory(ctx context.Context, ownerID string, limit int) ([]domain.ReviewLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, owner_id, item_id, grade, at
		FROM review_log WHERE owner_id = ?
		ORDER BY at DESC LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review history for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var entries []domain.ReviewLogEntry
	for rows.Next() {
		var e domain.ReviewLogEntry
		var grade, at string
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.ItemID, &grade, &at); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		if e.Grade, err = domain.ParseGrade(grade); err != nil {
			return nil, err
		}
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("failed to parse review log timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (domain.ReviewRecord, error) {
	var rec domain.ReviewRecord
	var due, grade string
	var reviewed sql.NullString
	if err := row.Scan(
		&rec.OwnerID,
		&rec.ItemID,
		&due,
		&rec.EaseFactor,
		&rec.IntervalDays,
		&rec.RepetitionCount,
		&grade,
		&reviewed,
	); err != nil {
		return rec, fmt.Errorf("failed to scan review row: %w", err)
	}

	var err error
	if rec.DueAt, err = time.Parse(time.RFC3339Nano, due); err != nil {
		return rec, fmt.Errorf("failed to parse due_at: %w", err)
	}
	if rec.LastGrade, err = domain.ParseGrade(grade); err != nil {
		return rec, err
	}
	if reviewed.Valid {
		t, err := time.Parse(time.RFC3339Nano, reviewed.String)
		if err != nil {
			return rec, fmt.Errorf("failed to parse last_reviewed_at: %w", err)
		}
		rec.LastReviewedAt = &t
	}
	return rec, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
