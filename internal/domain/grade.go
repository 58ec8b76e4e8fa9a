package domain

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
)

// Grade is the learner's self-reported recall quality for one review event.
type Grade int

const (
	Again Grade = iota + 1 // Failed to recall.
	Hard                   // Recalled with significant difficulty.
	Good                   // Recalled with some effort.
	Easy                   // Recalled effortlessly.
)

var (
	gradeNames  = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}
	gradeByName = map[string]Grade{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
	}
)

var (
	_ fmt.Stringer             = Grade(0)
	_ encoding.TextMarshaler   = Grade(0)
	_ encoding.TextUnmarshaler = (*Grade)(nil)
	_ json.Marshaler           = Grade(0)
	_ json.Unmarshaler         = (*Grade)(nil)
)

// ErrInvalidGrade is returned when parsing a grade outside again..easy.
var ErrInvalidGrade = errors.New("invalid grade")

// ParseGrade converts a grade name ("again", "hard", "good", "easy")
// into a Grade.
func ParseGrade(s string) (Grade, error) {
	g, ok := gradeByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return g, nil
}

// IsValid reports whether g is one of the four defined grades.
func (g Grade) IsValid() bool {
	return g >= Again && g <= Easy
}

// Quality maps the grade onto the 0..3 quality scale used by the
// scheduling formula: again=0, hard=1, good=2, easy=3.
func (g Grade) Quality() int {
	return int(g) - 1
}

func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// MarshalJSON implements json.Marshaler. Grade serializes as a JSON string.
func (g Grade) MarshalJSON() ([]byte, error) {
	text, err := g.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (g *Grade) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidGrade, data)
	}
	return g.UnmarshalText([]byte(s))
}
