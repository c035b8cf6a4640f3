package dice_test

import (
	"testing"

	"github.com/talgya/forgesworn/internal/dice"
)

type scriptedRNG struct {
	values []int
	i      int
}

func (s *scriptedRNG) Intn(n int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v % n
}

func TestRollOffsetsByOne(t *testing.T) {
	rng := &scriptedRNG{values: []int{0, 5, 9}}
	if got := dice.Roll(rng, 6); got != 1 {
		t.Errorf("Roll = %d, want 1", got)
	}
	if got := dice.Roll(rng, 6); got != 6 {
		t.Errorf("Roll = %d, want 6", got)
	}
	if got := dice.Roll(rng, 10); got != 10 {
		t.Errorf("Roll = %d, want 10", got)
	}
}

func TestCryptoSourceRange(t *testing.T) {
	src := dice.CryptoSource{}
	for i := 0; i < 1000; i++ {
		v := src.Intn(10)
		if v < 0 || v >= 10 {
			t.Fatalf("Intn(10) = %d, out of range", v)
		}
	}
	for i := 0; i < 1000; i++ {
		roll := dice.Roll(src, 100)
		if roll < 1 || roll > 100 {
			t.Fatalf("Roll(100) = %d, out of range", roll)
		}
	}
}
