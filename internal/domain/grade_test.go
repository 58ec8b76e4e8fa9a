package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestGradeOrdering(t *testing.T) {
	if !(Again < Hard && Hard < Good && Good < Easy) {
		t.Error("grades are not ordered by recall quality")
	}
}

func TestGradeQuality(t *testing.T) {
	want := map[Grade]int{Again: 0, Hard: 1, Good: 2, Easy: 3}
	for g, q := range want {
		if g.Quality() != q {
			t.Errorf("%v.Quality() = %d, want %d", g, g.Quality(), q)
		}
	}
}

func TestParseGrade(t *testing.T) {
	g, err := ParseGrade("hard")
	if err != nil || g != Hard {
		t.Errorf("ParseGrade(hard) = %v, %v", g, err)
	}
	if _, err := ParseGrade("brilliant"); !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("ParseGrade(brilliant) err = %v, want ErrInvalidGrade", err)
	}
}

func TestGradeJSON(t *testing.T) {
	b, err := json.Marshal(Easy)
	if err != nil || string(b) != `"easy"` {
		t.Errorf("Marshal(Easy) = %s, %v", b, err)
	}
	var g Grade
	if err := json.Unmarshal([]byte(`"again"`), &g); err != nil || g != Again {
		t.Errorf("Unmarshal(again) = %v, %v", g, err)
	}
	if _, err := json.Marshal(Grade(42)); err == nil {
		t.Error("Marshal accepted an out-of-range grade")
	}
}
