package dice

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		notation string
		count    int
		sides    int
		wantErr  bool
	}{
		{"2d20", 2, 20, false},
		{"1d6", 1, 6, false},
		{"d20", 1, 20, false},
		{" 3D8 ", 3, 8, false},
		{"", 0, 0, true},
		{"20", 0, 0, true},
		{"d", 0, 0, true},
		{"xdy", 0, 0, true},
		{"0d6", 0, 0, true},
		{"2d0", 0, 0, true},
		{"-1d6", 0, 0, true},
		{"2d-6", 0, 0, true},
	}

	for _, tt := range tests {
		count, sides, err := Parse(tt.notation)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got (%d, %d)", tt.notation, count, sides)
			} else if !errors.Is(err, ErrNotation) {
				t.Errorf("Parse(%q): error should wrap ErrNotation, got %v", tt.notation, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", tt.notation, err)
			continue
		}
		if count != tt.count || sides != tt.sides {
			t.Errorf("Parse(%q) = (%d, %d), want (%d, %d)", tt.notation, count, sides, tt.count, tt.sides)
		}
	}
}

func TestRoll_CountAndRange(t *testing.T) {
	rng := NewRNG(42)
	for i := 0; i < 100; i++ {
		res, err := rng.Roll("4d6")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Rolls) != 4 {
			t.Fatalf("expected 4 rolls, got %d", len(res.Rolls))
		}
		sum := 0
		for _, r := range res.Rolls {
			if r < 1 || r > 6 {
				t.Fatalf("roll out of range: %d", r)
			}
			sum += r
		}
		if res.Total != sum {
			t.Fatalf("total %d != sum of rolls %d", res.Total, sum)
		}
	}
}

func TestRoll_Deterministic(t *testing.T) {
	rng1 := NewRNG(7)
	rng2 := NewRNG(7)
	for i := 0; i < 50; i++ {
		r1, _ := rng1.Roll("2d12")
		r2, _ := rng2.Roll("2d12")
		if r1.Total != r2.Total {
			t.Fatalf("iteration %d: same seed produced different totals: %d vs %d", i, r1.Total, r2.Total)
		}
	}
}

func TestRoll_BadNotation(t *testing.T) {
	if _, err := Roll("garbage"); !errors.Is(err, ErrNotation) {
		t.Errorf("expected ErrNotation, got %v", err)
	}
}

func TestRollWithAdvantage_ResultIsMax(t *testing.T) {
	rng := NewRNG(1)
	for i := 0; i < 100; i++ {
		res, err := rng.RollWithAdvantage("1d20")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Rolls) != 2 {
			t.Fatalf("expected 2 rolls, got %d", len(res.Rolls))
		}
		want := res.Rolls[0]
		if res.Rolls[1] > want {
			want = res.Rolls[1]
		}
		if res.Result != want {
			t.Fatalf("result %d != max of rolls %v", res.Result, res.Rolls)
		}
	}
}

func TestRollWithAdvantage_AcceptsBareNotation(t *testing.T) {
	rng := NewRNG(9)
	res, err := rng.RollWithAdvantage("d20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notation != "d20" || res.Sides != 20 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRollWithAdvantage_RejectsMultipleDice(t *testing.T) {
	rng := NewRNG(3)
	if _, err := rng.RollWithAdvantage("2d20"); !errors.Is(err, ErrAdvantageCount) {
		t.Errorf("expected ErrAdvantageCount, got %v", err)
	}
}

func TestRollWithAdvantage_CriticalMessages(t *testing.T) {
	// Scan seeds until both critical outcomes have been observed.
	sawSuccess, sawFail := false, false
	for seed := int64(0); seed < 5000 && !(sawSuccess && sawFail); seed++ {
		res, err := NewRNG(seed).RollWithAdvantage("d20")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		switch {
		case res.Result == 20:
			if !res.IsCriticalSuccess || res.Message != "Critical success" {
				t.Fatalf("natural 20 not flagged: %+v", res)
			}
			sawSuccess = true
		case res.Result == 1:
			if !res.IsCriticalFail || res.Message != "Critical fail" {
				t.Fatalf("natural 1 not flagged: %+v", res)
			}
			sawFail = true
		default:
			if res.Message != "" {
				t.Fatalf("non-critical roll has message: %+v", res)
			}
		}
	}
	if !sawSuccess {
		t.Error("never observed a critical success across seeds")
	}
	if !sawFail {
		t.Error("never observed a critical fail across seeds")
	}
}
