package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/recalld/recalld/internal/catalog"
	"github.com/recalld/recalld/internal/domain"
	"github.com/recalld/recalld/internal/review"
	"github.com/recalld/recalld/internal/storage"
)

// Server exposes the review scheduler over JSON HTTP.
type Server struct {
	store  *review.Store
	db     *storage.DB
	syncer *catalog.Syncer
	log    zerolog.Logger
	clock  func() time.Time
	router *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(store *review.Store, db *storage.DB, syncer *catalog.Syncer, log zerolog.Logger) *Server {
	s := &Server{
		store:  store,
		db:     db,
		syncer: syncer,
		log:    log,
		clock:  time.Now,
		router: http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /due", s.handleDue)
	s.router.HandleFunc("GET /review/next", s.handleNextReview)
	s.router.HandleFunc("POST /review/{item}", s.handlePostReview)
	s.router.HandleFunc("DELETE /review/{item}", s.handleResetReview)
	s.router.HandleFunc("GET /stats", s.handleStats)
	s.router.HandleFunc("GET /items", s.handleItems)
	s.router.HandleFunc("GET /history", s.handleHistory)
	s.router.HandleFunc("POST /sync/reviews", s.handleSyncReviews)
	s.router.HandleFunc("POST /sync/sources", s.handleSyncSources)
	s.router.HandleFunc("GET /events", s.handleEvents)
}

// handleDue returns every due record, soonest first.
func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	now := s.clock()
	due := s.store.Due(now)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(due),
		"records": due,
	})
}

// handleNextReview returns the first due card with its record, or 204 if
// nothing is due.
func (s *Server) handleNextReview(w http.ResponseWriter, r *http.Request) {
	due := s.store.Due(s.clock())
	if len(due) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rec := due[0]
	card, err := s.db.FindCard(r.Context(), rec.ItemID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"record": rec,
		"card":   card, // null for items no longer in the catalog
	})
}

// handlePostReview grades an item and returns the new record.
func (s *Server) handlePostReview(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("item")

	var body struct {
		Grade domain.Grade `json:"grade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	if !body.Grade.IsValid() {
		s.writeError(w, http.StatusBadRequest, domain.ErrInvalidGrade)
		return
	}

	rec := s.store.RecordGrading(itemID, body.Grade)
	s.writeJSON(w, http.StatusOK, rec)
}

// handleResetReview drops an item from scheduling. The item is removed
// locally regardless; "deleted" reports the remote outcome.
func (s *Server) handleResetReview(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("item")
	ok, err := s.store.ResetItem(r.Context(), itemID)
	if err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"deleted": false, "error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": ok})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Stats(s.clock()))
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	cards, err := s.db.ListCards(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	entries, err := s.db.ReviewHistory(r.Context(), owner, 100)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// handleSyncReviews accepts records pushed from elsewhere (for example a
// second device) and feeds them through the store's reconciliation.
// Records that lose the conflict are silently dropped, so the push is
// always accepted.
func (s *Server) handleSyncReviews(w http.ResponseWriter, r *http.Request) {
	var recs []domain.ReviewRecord
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	for _, rec := range recs {
		s.store.Reconcile(rec)
	}
	s.writeJSON(w, http.StatusAccepted, map[string]any{"received": len(recs)})
}

// handleSyncSources re-scans every registered card source.
func (s *Server) handleSyncSources(w http.ResponseWriter, r *http.Request) {
	if err := s.syncer.SyncAll(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleEvents streams store change events as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	events, unsub := s.store.Subscribe(16)
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, payload)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
