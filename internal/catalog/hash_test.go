package catalog

import (
	"testing"

	"github.com/recalld/recalld/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Card{
		Question: "  What is the spacing effect? \r\n",
		Answer:   "Reviews spread over time are retained better than massed ones.",
		Context:  "Memory Research",
	}
	want := "what is the spacing effect?\nreviews spread over time are retained better than massed ones.\nmemory research"
	if got := Normalize(card); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestItemID(t *testing.T) {
	t.Run("known content hash", func(t *testing.T) {
		card := domain.Card{Question: "Q", Answer: "A", Context: "C"}
		// sha-256 of "q\na\nc"
		want := "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2"
		if got := ItemID(card); got != want {
			t.Errorf("ItemID = %s, want %s", got, want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := domain.Card{Question: "Test"}
		b := domain.Card{Question: "Test"}
		if ItemID(a) != ItemID(b) {
			t.Error("identical cards produced different ids")
		}
	})

	t.Run("normalization-invariant", func(t *testing.T) {
		a := domain.Card{Question: "  what is go? ", Answer: "A programming language."}
		b := domain.Card{Question: "What Is Go?", Answer: "A programming language."}
		if ItemID(a) != ItemID(b) {
			t.Error("cosmetically different cards produced different ids")
		}
	})

	t.Run("difficulty does not affect identity", func(t *testing.T) {
		a := domain.Card{Question: "Q", Answer: "A", Difficulty: 1}
		b := domain.Card{Question: "Q", Answer: "A", Difficulty: 5}
		if ItemID(a) != ItemID(b) {
			t.Error("difficulty changed the item id")
		}
	})

	t.Run("different content differs", func(t *testing.T) {
		a := domain.Card{Question: "Card 1"}
		b := domain.Card{Question: "Card 2"}
		if ItemID(a) == ItemID(b) {
			t.Error("distinct cards produced the same id")
		}
	})
}
