package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recalld/recalld/internal/domain"
	"github.com/recalld/recalld/internal/sm2"
)

// Store is the single owner of one learner's review collection.
type Store struct {
	owner   string
	persist Persistence
	log     zerolog.Logger
	loc     *time.Location
	clock   func() time.Time

	mu      sync.Mutex
	records map[string]domain.ReviewRecord
	dirty   map[string]struct{}  // items whose latest state awaits a remote write
	removed map[string]time.Time // reset tombstones, keyed by reset time
	pending []domain.ReviewLogEntry
	lastErr error

	wake   chan struct{}
	events *hub
	wg     sync.WaitGroup
}

// New creates a Store. Call Start to launch the persistence worker and
// the reconciliation stream consumer.
func New(cfg Config) *Store {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		owner:   cfg.OwnerID,
		persist: cfg.Persistence,
		log:     cfg.Logger,
		loc:     loc,
		clock:   clock,
		records: map[string]domain.ReviewRecord{},
		dirty:   map[string]struct{}{},
		removed: map[string]time.Time{},
		wake:    make(chan struct{}, 1),
		events:  newHub(),
	}
}

// Start launches the background persist worker and, if the collaborator
// provides one, the update stream consumer. Both stop when ctx ends.
func (s *Store) Start(ctx context.Context) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.persistLoop(ctx)
	}()

	stream, err := s.persist.StreamUpdates(ctx, s.owner)
	if err != nil {
		return err
	}
	if stream != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case rec, ok := <-stream:
					if !ok {
						return
					}
					s.Reconcile(rec)
				}
			}
		}()
	}
	return nil
}

// Wait blocks until the background goroutines have exited.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Load replaces the collection with the persisted records for the owner.
// On fetch failure the collection is left empty and the error is both
// returned and retained as the advisory error flag.
func (s *Store) Load(ctx context.Context) error {
	recs, err := s.persist.FetchReviews(ctx, s.owner)

	s.mu.Lock()
	s.records = map[string]domain.ReviewRecord{}
	s.dirty = map[string]struct{}{}
	s.removed = map[string]time.Time{}
	s.lastErr = err
	if err == nil {
		for _, r := range recs {
			if r.ItemID == "" || r.RepetitionCount < 1 {
				continue
			}
			s.records[r.ItemID] = r.Clone()
		}
	}
	n := len(s.records)
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("owner", s.owner).Msg("load failed, collection left empty")
		return err
	}
	s.log.Info().Str("owner", s.owner).Int("records", n).Msg("collection loaded")
	s.events.publish(Event{Type: EventLoaded, At: s.clock()})
	return nil
}

// RecordGrading applies a grade to the item and returns the new record.
// The record is committed locally before this call returns; the remote
// write happens in the background and its outcome never changes the
// returned state.
func (s *Store) RecordGrading(itemID string, grade domain.Grade) domain.ReviewRecord {
	now := s.clock()

	s.mu.Lock()
	var rec domain.ReviewRecord
	if prev, ok := s.records[itemID]; ok {
		rec = sm2.Next(prev, grade, now)
	} else {
		rec = sm2.First(itemID, s.owner, grade, now)
	}
	s.records[itemID] = rec
	s.dirty[itemID] = struct{}{}
	delete(s.removed, itemID) // a fresh grading supersedes any earlier reset
	s.pending = append(s.pending, domain.ReviewLogEntry{
		ID:      uuid.NewString(),
		ItemID:  itemID,
		OwnerID: s.owner,
		Grade:   grade,
		At:      now,
	})
	s.mu.Unlock()

	s.kick()
	snap := rec.Clone()
	s.events.publish(Event{Type: EventGraded, ItemID: itemID, Record: &snap, At: now})
	return rec
}

// ResetItem drops the item from spaced-repetition tracking. Local removal
// is unconditional; the return value reports whether the remote deletion
// succeeded.
func (s *Store) ResetItem(ctx context.Context, itemID string) (bool, error) {
	now := s.clock()

	s.mu.Lock()
	_, existed := s.records[itemID]
	delete(s.records, itemID)
	delete(s.dirty, itemID)
	// Tombstone so an in-flight grading write that lands after this reset
	// gets deleted again instead of resurrecting the item. The reset time
	// lets a review performed after the reset supersede it.
	s.removed[itemID] = now
	s.mu.Unlock()

	if existed {
		s.events.publish(Event{Type: EventReset, ItemID: itemID, At: now})
	}

	ok, err := s.persist.DeleteReview(ctx, s.owner, itemID)
	if err != nil {
		s.setErr(err)
		s.log.Warn().Err(err).Str("item", itemID).Msg("remote delete failed, local state already removed")
		return false, err
	}
	return ok, nil
}

// Reconcile merges a record pushed by the persistence collaborator.
// A remote record wins only if its review timestamp is strictly newer
// than the local one, and newer than any local reset; a missing or
// malformed timestamp never wins.
func (s *Store) Reconcile(remote domain.ReviewRecord) {
	if remote.ItemID == "" || remote.OwnerID != s.owner {
		return
	}
	if !remote.LastGrade.IsValid() || remote.RepetitionCount < 1 {
		return
	}
	remoteAt := remote.ReviewedAt()
	if remoteAt.IsZero() {
		return
	}

	s.mu.Lock()
	if resetAt, gone := s.removed[remote.ItemID]; gone {
		if !remoteAt.After(resetAt) {
			// Reset wins: an echo of a record we deliberately removed.
			s.mu.Unlock()
			return
		}
		// Reviewed again after the reset, on another device. The reset
		// no longer applies.
		delete(s.removed, remote.ItemID)
	}
	if local, ok := s.records[remote.ItemID]; ok && !remoteAt.After(local.ReviewedAt()) {
		s.mu.Unlock()
		return
	}
	rec := remote.Clone()
	s.records[remote.ItemID] = rec
	// Not marked dirty: the collaborator already has this state.
	s.mu.Unlock()

	snap := rec.Clone()
	s.events.publish(Event{Type: EventReconciled, ItemID: remote.ItemID, Record: &snap, At: s.clock()})
}

// Get returns a copy of the item's record, if tracked.
func (s *Store) Get(itemID string) (domain.ReviewRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[itemID]
	if !ok {
		return domain.ReviewRecord{}, false
	}
	return rec.Clone(), true
}

// LastError returns the advisory error from the most recent failed
// persistence operation, or nil. It never reflects local state.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe returns a buffered channel of change events and a function to
// unsubscribe. Slow subscribers drop events rather than block mutations.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.subscribe(buffer)
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// kick nudges the persist worker without blocking.
func (s *Store) kick() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
