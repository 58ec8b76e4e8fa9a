package catalog

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/recalld/recalld/internal/domain"
)

// Normalize flattens a card into its identity string. Each field is
// trimmed, lowercased, and stripped of carriage returns, so cosmetic
// edits do not change the card's identity; the fields are then joined
// with newlines so content cannot bleed across field boundaries.
// Difficulty is metadata and stays out of the identity.
func Normalize(card domain.Card) string {
	fields := []string{card.Question, card.Answer, card.Context}
	for i, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		fields[i] = strings.ReplaceAll(f, "\r\n", "\n")
	}
	return strings.Join(fields, "\n")
}

// ItemID hashes the normalized card content, yielding the opaque id the
// scheduler tracks the card under.
func ItemID(card domain.Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
