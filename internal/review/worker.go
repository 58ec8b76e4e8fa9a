package review

import (
	"context"

	"github.com/recalld/recalld/internal/domain"
)

// persistLoop mirrors local mutations to the persistence collaborator.
// It writes whatever the latest local state is at the moment it gets to
// an item, so a burst of gradings collapses into one remote write and a
// newer grading always supersedes an older pending one.
func (s *Store) persistLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
		s.drain(ctx)
	}
}

func (s *Store) drain(ctx context.Context) {
	for ctx.Err() == nil {
		entry, rec, ok := s.nextJob()
		if !ok {
			return
		}
		if entry != nil {
			if err := s.persist.AppendLog(ctx, *entry); err != nil {
				s.setErr(err)
				s.log.Warn().Err(err).Str("item", entry.ItemID).Msg("review log append failed")
			}
			continue
		}
		s.save(ctx, *rec)
	}
}

// nextJob pops one unit of work: log entries first (they are FIFO), then
// any dirty record snapshot.
func (s *Store) nextJob() (*domain.ReviewLogEntry, *domain.ReviewRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) > 0 {
		entry := s.pending[0]
		s.pending = s.pending[1:]
		return &entry, nil, true
	}
	for itemID := range s.dirty {
		delete(s.dirty, itemID)
		rec, ok := s.records[itemID]
		if !ok {
			// Reset beat us to it; nothing to write.
			continue
		}
		snap := rec.Clone()
		return nil, &snap, true
	}
	return nil, nil, false
}

func (s *Store) save(ctx context.Context, rec domain.ReviewRecord) {
	if err := s.persist.SaveReview(ctx, rec); err != nil {
		s.setErr(err)
		s.log.Warn().Err(err).Str("item", rec.ItemID).Msg("remote write failed, local state retained")
		return
	}

	// If the item was reset while this write was in flight, the write just
	// resurrected it remotely. Delete it again; reset wins.
	s.mu.Lock()
	_, gone := s.removed[rec.ItemID]
	s.mu.Unlock()
	if gone {
		if _, err := s.persist.DeleteReview(ctx, s.owner, rec.ItemID); err != nil {
			s.setErr(err)
			s.log.Warn().Err(err).Str("item", rec.ItemID).Msg("re-delete after reset failed")
		}
	}
}
