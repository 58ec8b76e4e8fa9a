package review

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/recalld/recalld/internal/domain"
)

// Persistence is the durable mirror of the review collection. The store
// never reads from it outside Load and the update stream; implementations
// may retry internally but must eventually return.
type Persistence interface {
	// FetchReviews returns every stored record for the owner.
	FetchReviews(ctx context.Context, ownerID string) ([]domain.ReviewRecord, error)

	// SaveReview upserts a record.
	SaveReview(ctx context.Context, rec domain.ReviewRecord) error

	// DeleteReview removes a record. It reports whether a record was
	// actually deleted remotely.
	DeleteReview(ctx context.Context, ownerID, itemID string) (bool, error)

	// AppendLog appends one grading event to the review history.
	AppendLog(ctx context.Context, entry domain.ReviewLogEntry) error

	// StreamUpdates returns a channel of records pushed by the
	// collaborator (for example, echoes from another device). A nil
	// channel means the collaborator has no push capability.
	StreamUpdates(ctx context.Context, ownerID string) (<-chan domain.ReviewRecord, error)
}

// EventType classifies a change to the collection.
type EventType string

const (
	EventGraded     EventType = "graded"
	EventReset      EventType = "reset"
	EventReconciled EventType = "reconciled"
	EventLoaded     EventType = "loaded"
)

// Event is the snapshot diff published to subscribers after a mutation.
// Record is nil for event types that carry no per-item state, such as
// EventReset and EventLoaded.
type Event struct {
	Type   EventType            `json:"type"`
	ItemID string               `json:"item_id,omitempty"`
	Record *domain.ReviewRecord `json:"record,omitempty"`
	At     time.Time            `json:"at"`
}

// Config configures a Store.
type Config struct {
	OwnerID     string
	Persistence Persistence
	Logger      zerolog.Logger

	// Location fixes the calendar-day boundary for the reviewed-today
	// counter. Nil means UTC.
	Location *time.Location

	// Clock overrides time.Now for gradings. Nil means time.Now.
	Clock func() time.Time
}
