package domain

import "time"

// Card is a single studyable unit from the catalog. The scheduler treats
// ItemID as opaque; Difficulty is metadata for downstream consumers only.
type Card struct {
	ItemID     string `json:"item_id"` // content hash, assigned by the catalog
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Context    string `json:"context,omitempty"`
	Difficulty int    `json:"difficulty"` // 1..5, parsed from the card source
}

// ReviewLogEntry records a single grading event for the append-only history.
type ReviewLogEntry struct {
	ID      string    `json:"id"` // uuid
	ItemID  string    `json:"item_id"`
	OwnerID string    `json:"owner_id"`
	Grade   Grade     `json:"grade"`
	At      time.Time `json:"at"`
}
