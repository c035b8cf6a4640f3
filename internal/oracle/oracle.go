// Package oracle resolves rolls against Ironsworn-style oracle tables.
// Tables live in the document store; the engine only needs a lookup
// collaborator and a die source.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/talgya/forgesworn/internal/dice"
)

var (
	ErrNotFound         = errors.New("oracle not found")
	ErrNoMatch          = errors.New("no oracle row matched roll")
	ErrCircularFallback = errors.New("circular oracle fallback")
	ErrRollOutOfRange   = errors.New("fixed roll out of range")
)

// Entry is one row of an oracle table, covering the closed range [Min, Max].
type Entry struct {
	Min         int      `json:"min"`
	Max         int      `json:"max"`
	Result      string   `json:"result"`
	Tags        []string `json:"tags,omitempty"`
	NextTableID string   `json:"nextTableId,omitempty"`
}

// Fallback redirects unmatched rolls inside [Min, Max] to another oracle.
type Fallback struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	OracleID string `json:"oracleId"`
}

// Table is a complete oracle definition.
type Table struct {
	OracleID    string     `json:"oracleId"`
	RulesetID   string     `json:"rulesetId,omitempty"`
	Group       string     `json:"group,omitempty"`
	Name        string     `json:"name"`
	Dice        string     `json:"dice,omitempty"`
	Description string     `json:"description,omitempty"`
	Entries     []Entry    `json:"entries"`
	Fallback    []Fallback `json:"fallback,omitempty"`
}

// RollResult reports a resolved roll. ResolvedFrom is set to the originally
// requested oracle id when resolution traversed a fallback chain.
type RollResult struct {
	OracleID     string `json:"oracleId"`
	OracleName   string `json:"oracleName"`
	Roll         int    `json:"roll"`
	Row          Entry  `json:"row"`
	ResolvedFrom string `json:"resolvedFrom,omitempty"`
}

// Store looks oracle tables up by id. Returns (nil, nil) when absent.
type Store interface {
	OracleByID(ctx context.Context, oracleID string) (*Table, error)
}

// RollOptions tweak a single resolution.
type RollOptions struct {
	// FixedRoll forces the die result instead of rolling.
	FixedRoll *int
}

// Engine resolves oracle rolls.
type Engine struct {
	store Store
	rng   dice.RNG
}

// NewEngine builds an engine over a table store and die source.
func NewEngine(store Store, rng dice.RNG) *Engine {
	return &Engine{store: store, rng: rng}
}

var diceNotation = regexp.MustCompile(`(?i)\d*d(\d+)`)

// maxRoll derives the die size: "NdM" notation wins, else the largest entry
// bound, else d100.
func maxRoll(t *Table) int {
	if m := diceNotation.FindStringSubmatch(t.Dice); m != nil {
		if sides, err := strconv.Atoi(m[1]); err == nil && sides > 0 {
			return sides
		}
	}
	max := 0
	for _, e := range t.Entries {
		if e.Max > max {
			max = e.Max
		}
	}
	if max > 0 {
		return max
	}
	return 100
}

func matchEntry(entries []Entry, roll int) (Entry, bool) {
	for _, e := range entries {
		if roll >= e.Min && roll <= e.Max {
			return e, true
		}
	}
	return Entry{}, false
}

// Roll resolves an oracle. A supplied fixed roll is validated against
// [1, maxRoll]; rolls carried into fallback tables are exempt so chains can
// cross die sizes.
func (e *Engine) Roll(ctx context.Context, oracleID string, opts RollOptions) (RollResult, error) {
	table, err := e.load(ctx, oracleID)
	if err != nil {
		return RollResult{}, err
	}

	max := maxRoll(table)
	var roll int
	if opts.FixedRoll != nil {
		roll = *opts.FixedRoll
		if roll < 1 || roll > max {
			return RollResult{}, fmt.Errorf("%w: %d not in [1, %d] for oracle %s", ErrRollOutOfRange, roll, max, oracleID)
		}
	} else {
		roll = dice.Roll(e.rng, max)
	}

	return e.resolve(ctx, table, roll, map[string]bool{})
}

func (e *Engine) load(ctx context.Context, oracleID string) (*Table, error) {
	table, err := e.store.OracleByID(ctx, oracleID)
	if err != nil {
		return nil, fmt.Errorf("load oracle %s: %w", oracleID, err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, oracleID)
	}
	return table, nil
}

// resolve matches roll against the table, following fallback ranges with a
// visited-set cycle guard. The roll is passed through unchanged.
func (e *Engine) resolve(ctx context.Context, table *Table, roll int, visited map[string]bool) (RollResult, error) {
	if row, ok := matchEntry(table.Entries, roll); ok {
		return RollResult{
			OracleID:   table.OracleID,
			OracleName: table.Name,
			Roll:       roll,
			Row:        row,
		}, nil
	}

	for _, fb := range table.Fallback {
		if roll < fb.Min || roll > fb.Max {
			continue
		}
		if visited[table.OracleID] {
			return RollResult{}, fmt.Errorf("%w: %s", ErrCircularFallback, table.OracleID)
		}
		visited[table.OracleID] = true

		next, err := e.load(ctx, fb.OracleID)
		if err != nil {
			return RollResult{}, err
		}
		result, err := e.resolve(ctx, next, roll, visited)
		if err != nil {
			return RollResult{}, err
		}
		result.ResolvedFrom = table.OracleID
		return result, nil
	}

	return RollResult{}, fmt.Errorf("%w: roll %d on oracle %s", ErrNoMatch, roll, table.OracleID)
}
