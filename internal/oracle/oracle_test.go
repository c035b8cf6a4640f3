package oracle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/talgya/forgesworn/internal/oracle"
)

type memStore map[string]*oracle.Table

func (m memStore) OracleByID(_ context.Context, id string) (*oracle.Table, error) {
	return m[id], nil
}

type scriptedRNG struct {
	values []int
	i      int
}

func (s *scriptedRNG) Intn(n int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v % n
}

func fixed(n int) oracle.RollOptions {
	return oracle.RollOptions{FixedRoll: &n}
}

func themeTable() *oracle.Table {
	return &oracle.Table{
		OracleID: "test:theme",
		Name:     "Theme",
		Dice:     "1d100",
		Entries: []oracle.Entry{
			{Min: 1, Max: 50, Result: "Conflict"},
			{Min: 51, Max: 100, Result: "Discovery"},
		},
	}
}

func TestRollMatchesEntry(t *testing.T) {
	store := memStore{"test:theme": themeTable()}
	engine := oracle.NewEngine(store, &scriptedRNG{values: []int{0}})

	res, err := engine.Roll(context.Background(), "test:theme", fixed(50))
	if err != nil {
		t.Fatal(err)
	}
	if res.Roll != 50 || res.Row.Result != "Conflict" {
		t.Errorf("roll 50 resolved to %q (roll %d), want Conflict", res.Row.Result, res.Roll)
	}
	if res.ResolvedFrom != "" {
		t.Errorf("ResolvedFrom = %q, want empty on direct match", res.ResolvedFrom)
	}

	res, err = engine.Roll(context.Background(), "test:theme", fixed(51))
	if err != nil {
		t.Fatal(err)
	}
	if res.Row.Result != "Discovery" {
		t.Errorf("roll 51 resolved to %q, want Discovery", res.Row.Result)
	}
}

func TestRollRandomUsesDiceNotation(t *testing.T) {
	table := &oracle.Table{
		OracleID: "test:d6",
		Name:     "Small",
		Dice:     "1d6",
		Entries:  []oracle.Entry{{Min: 1, Max: 6, Result: "ok"}},
	}
	store := memStore{"test:d6": table}
	// Intn(6) == 5 -> die face 6.
	engine := oracle.NewEngine(store, &scriptedRNG{values: []int{5}})

	res, err := engine.Roll(context.Background(), "test:d6", oracle.RollOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Roll != 6 {
		t.Errorf("roll = %d, want 6", res.Roll)
	}
}

func TestFixedRollOutOfRange(t *testing.T) {
	store := memStore{"test:theme": themeTable()}
	engine := oracle.NewEngine(store, &scriptedRNG{values: []int{0}})

	for _, roll := range []int{0, -3, 101} {
		_, err := engine.Roll(context.Background(), "test:theme", fixed(roll))
		if !errors.Is(err, oracle.ErrRollOutOfRange) {
			t.Errorf("fixed roll %d: err = %v, want ErrRollOutOfRange", roll, err)
		}
	}
}

func TestRollUnknownOracle(t *testing.T) {
	engine := oracle.NewEngine(memStore{}, &scriptedRNG{values: []int{0}})
	_, err := engine.Roll(context.Background(), "test:missing", oracle.RollOptions{})
	if !errors.Is(err, oracle.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFallbackChainSetsResolvedFrom(t *testing.T) {
	store := memStore{
		"test:outer": {
			OracleID: "test:outer",
			Name:     "Outer",
			Dice:     "1d100",
			Entries:  []oracle.Entry{{Min: 21, Max: 100, Result: "Outer result"}},
			Fallback: []oracle.Fallback{{Min: 1, Max: 20, OracleID: "test:middle"}},
		},
		"test:middle": {
			OracleID: "test:middle",
			Name:     "Middle",
			Dice:     "1d100",
			Entries:  []oracle.Entry{{Min: 11, Max: 100, Result: "Middle result"}},
			Fallback: []oracle.Fallback{{Min: 1, Max: 10, OracleID: "test:inner"}},
		},
		"test:inner": {
			OracleID: "test:inner",
			Name:     "Inner",
			Dice:     "1d100",
			Entries:  []oracle.Entry{{Min: 1, Max: 100, Result: "Inner result"}},
		},
	}
	engine := oracle.NewEngine(store, &scriptedRNG{values: []int{0}})

	res, err := engine.Roll(context.Background(), "test:outer", fixed(5))
	if err != nil {
		t.Fatal(err)
	}
	if res.OracleID != "test:inner" || res.Row.Result != "Inner result" {
		t.Errorf("resolved on %q (%q), want inner table", res.OracleID, res.Row.Result)
	}
	if res.Roll != 5 {
		t.Errorf("roll = %d, want the original 5 carried through", res.Roll)
	}
	if res.ResolvedFrom != "test:outer" {
		t.Errorf("ResolvedFrom = %q, want the originally requested id", res.ResolvedFrom)
	}
}

func TestCircularFallbackDetected(t *testing.T) {
	store := memStore{
		"test:a": {
			OracleID: "test:a",
			Name:     "A",
			Dice:     "1d100",
			Entries:  []oracle.Entry{{Min: 50, Max: 100, Result: "A"}},
			Fallback: []oracle.Fallback{{Min: 1, Max: 49, OracleID: "test:b"}},
		},
		"test:b": {
			OracleID: "test:b",
			Name:     "B",
			Dice:     "1d100",
			Entries:  []oracle.Entry{{Min: 50, Max: 100, Result: "B"}},
			Fallback: []oracle.Fallback{{Min: 1, Max: 49, OracleID: "test:a"}},
		},
	}
	engine := oracle.NewEngine(store, &scriptedRNG{values: []int{0}})

	_, err := engine.Roll(context.Background(), "test:a", fixed(10))
	if !errors.Is(err, oracle.ErrCircularFallback) {
		t.Errorf("err = %v, want ErrCircularFallback", err)
	}
}

func TestNoMatchWithoutFallback(t *testing.T) {
	store := memStore{
		"test:gappy": {
			OracleID: "test:gappy",
			Name:     "Gappy",
			Dice:     "1d100",
			Entries:  []oracle.Entry{{Min: 30, Max: 100, Result: "high"}},
		},
	}
	engine := oracle.NewEngine(store, &scriptedRNG{values: []int{0}})

	_, err := engine.Roll(context.Background(), "test:gappy", fixed(10))
	if !errors.Is(err, oracle.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
}

func TestMaxRollFromEntriesWhenDiceMissing(t *testing.T) {
	store := memStore{
		"test:d20ish": {
			OracleID: "test:d20ish",
			Name:     "No notation",
			Entries:  []oracle.Entry{{Min: 1, Max: 20, Result: "x"}},
		},
	}
	engine := oracle.NewEngine(store, &scriptedRNG{values: []int{0}})

	// 21 exceeds the largest entry bound, which stands in for the die size.
	_, err := engine.Roll(context.Background(), "test:d20ish", fixed(21))
	if !errors.Is(err, oracle.ErrRollOutOfRange) {
		t.Errorf("err = %v, want ErrRollOutOfRange above entry bound", err)
	}

	res, err := engine.Roll(context.Background(), "test:d20ish", fixed(20))
	if err != nil {
		t.Fatal(err)
	}
	if res.Row.Result != "x" {
		t.Errorf("result = %q, want x", res.Row.Result)
	}
}
