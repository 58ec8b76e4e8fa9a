package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/recalld/recalld/internal/domain"
)

// Source is the origin of a set of cards: a local directory or a git URL.
type Source struct {
	ID          int64
	Path        string
	Type        string // "local" or "git"
	LastScanned sql.NullTime
}

// UpsertCard inserts or refreshes a catalog card.
func (db *DB) UpsertCard(ctx context.Context, card domain.Card, sourceID int64) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (item_id, question, answer, context, difficulty, source_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			question = excluded.question,
			answer = excluded.answer,
			context = excluded.context,
			difficulty = excluded.difficulty,
			source_id = excluded.source_id
	`,
		card.ItemID, card.Question, card.Answer, card.Context, card.Difficulty, sourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", card.ItemID, err)
	}
	return nil
}

// FindCard retrieves a card by its item id. A nil card means not found.
func (db *DB) FindCard(ctx context.Context, itemID string) (*domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT item_id, question, answer, COALESCE(context, ''), difficulty
		FROM cards WHERE item_id = ?
	`, itemID)

	var c domain.Card
	err := row.Scan(&c.ItemID, &c.Question, &c.Answer, &c.Context, &c.Difficulty)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card %s: %w", itemID, err)
	}
	return &c, nil
}

// ListCards returns the full catalog.
func (db *DB) ListCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id, question, answer, COALESCE(context, ''), difficulty
		FROM cards ORDER BY item_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ItemID, &c.Question, &c.Answer, &c.Context, &c.Difficulty); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CardsBySource returns the catalog cards that came from one source.
func (db *DB) CardsBySource(ctx context.Context, sourceID int64) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id, question, answer, COALESCE(context, ''), difficulty
		FROM cards WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for source %d: %w", sourceID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ItemID, &c.Question, &c.Answer, &c.Context, &c.Difficulty); err != nil {
			return nil, fmt.Errorf("failed to scan card row for source %d: %w", sourceID, err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// DeleteCard removes a card from the catalog.
func (db *DB) DeleteCard(ctx context.Context, itemID string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", itemID, err)
	}
	return nil
}

// InsertSource registers a new card source and returns its id.
func (db *DB) InsertSource(ctx context.Context, path, sourceType string) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO sources (path, type) VALUES (?, ?)`, path, sourceType)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get id for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. A nil source means not
// found.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (*Source, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, path, type, last_scanned
		FROM sources WHERE path = ?
	`, path)

	var s Source
	var scanned sql.NullString
	err := row.Scan(&s.ID, &s.Path, &s.Type, &scanned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find source %s: %w", path, err)
	}
	if err := parseScanned(scanned, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAllSources retrieves every registered source.
func (db *DB) GetAllSources(ctx context.Context) ([]Source, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, path, type, last_scanned FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		var scanned sql.NullString
		if err := rows.Scan(&s.ID, &s.Path, &s.Type, &scanned); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		if err := parseScanned(scanned, &s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source registration. Cards from the source stay
// until the next sync prunes them.
func (db *DB) DeleteSource(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	return nil
}

// TouchSource updates the source's last_scanned timestamp.
func (db *DB) TouchSource(ctx context.Context, id int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE sources SET last_scanned = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to touch source %d: %w", id, err)
	}
	return nil
}

func parseScanned(v sql.NullString, s *Source) error {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return fmt.Errorf("failed to parse last_scanned for source %d: %w", s.ID, err)
	}
	s.LastScanned = sql.NullTime{Time: t, Valid: true}
	return nil
}
