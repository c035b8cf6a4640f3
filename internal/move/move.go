// Package move resolves Ironsworn action rolls against move definitions.
package move

import (
	"context"
	"errors"
	"fmt"

	"github.com/talgya/forgesworn/internal/dice"
)

var (
	ErrNotFound           = errors.New("move not found")
	ErrInvalidManualRolls = errors.New("manual dice must be integers in the ranges: action 1-6, challenge 1-10")
)

// Outcome is the result tier of an action or progress roll.
type Outcome string

const (
	StrongHit Outcome = "strong_hit"
	WeakHit   Outcome = "weak_hit"
	Miss      Outcome = "miss"
)

// RollType distinguishes how a move resolves.
type RollType string

const (
	RollAction   RollType = "action"
	RollProgress RollType = "progress"
	RollSpecial  RollType = "special"
)

// Outcomes holds the narrative text for each result tier.
type Outcomes struct {
	StrongHit string `json:"strongHit"`
	WeakHit   string `json:"weakHit"`
	Miss      string `json:"miss"`
}

// TextBlock is the full narrative text of a move.
type TextBlock struct {
	Summary  string   `json:"summary,omitempty"`
	Trigger  string   `json:"trigger,omitempty"`
	Outcomes Outcomes `json:"outcomes"`
}

// Definition describes one move.
type Definition struct {
	Key         string    `json:"key"`
	RulesetID   string    `json:"rulesetId,omitempty"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	RollType    RollType  `json:"rollType"`
	StatsUsed   []string  `json:"statsUsed,omitempty"`
	Text        TextBlock `json:"text"`
	RankOptions []string  `json:"rankOptions,omitempty"`
}

// ManualRolls supplies pre-rolled dice instead of random ones.
type ManualRolls struct {
	Action     int `json:"action"`
	Challenge1 int `json:"challenge1"`
	Challenge2 int `json:"challenge2"`
}

// Input carries the optional parameters of a move roll.
type Input struct {
	StatKey     string       `json:"statKey,omitempty"`
	StatValue   int          `json:"statValue,omitempty"`
	Adds        int          `json:"adds,omitempty"`
	ManualRolls *ManualRolls `json:"manualRolls,omitempty"`
}

// Result reports a resolved move roll.
type Result struct {
	MoveID        string   `json:"moveId"`
	MoveName      string   `json:"moveName"`
	Outcome       Outcome  `json:"outcome"`
	IsMatch       bool     `json:"isMatch"`
	ActionDie     int      `json:"actionDie"`
	ChallengeDice [2]int   `json:"challengeDice"`
	StatKey       string   `json:"statKey,omitempty"`
	StatValue     int      `json:"statValue"`
	Adds          int      `json:"adds"`
	ActionScore   int      `json:"actionScore"`
	Text          Outcomes `json:"text"`
}

// Store looks moves up by key. Returns (nil, nil) when absent.
type Store interface {
	MoveByKey(ctx context.Context, key string) (*Definition, error)
}

// Engine resolves move rolls.
type Engine struct {
	store Store
	rng   dice.RNG
}

// NewEngine builds an engine over a move store and die source.
func NewEngine(store Store, rng dice.RNG) *Engine {
	return &Engine{store: store, rng: rng}
}

func validateManualRolls(m *ManualRolls) error {
	if m.Action < 1 || m.Action > 6 ||
		m.Challenge1 < 1 || m.Challenge1 > 10 ||
		m.Challenge2 < 1 || m.Challenge2 > 10 {
		return ErrInvalidManualRolls
	}
	return nil
}

// deriveOutcome counts challenge dice strictly beaten by the action score.
// Ties go to the challenge die.
func deriveOutcome(actionScore, challenge1, challenge2 int) Outcome {
	wins := 0
	if actionScore > challenge1 {
		wins++
	}
	if actionScore > challenge2 {
		wins++
	}
	switch wins {
	case 2:
		return StrongHit
	case 1:
		return WeakHit
	default:
		return Miss
	}
}

// Roll resolves a move. Manual dice, when present, replace the random draw
// and are range-checked first.
func (e *Engine) Roll(ctx context.Context, key string, input Input) (Result, error) {
	def, err := e.store.MoveByKey(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("load move %s: %w", key, err)
	}
	if def == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	var actionDie, challenge1, challenge2 int
	if input.ManualRolls != nil {
		if err := validateManualRolls(input.ManualRolls); err != nil {
			return Result{}, err
		}
		actionDie = input.ManualRolls.Action
		challenge1 = input.ManualRolls.Challenge1
		challenge2 = input.ManualRolls.Challenge2
	} else {
		actionDie = dice.Roll(e.rng, 6)
		challenge1 = dice.Roll(e.rng, 10)
		challenge2 = dice.Roll(e.rng, 10)
	}

	actionScore := actionDie + input.StatValue + input.Adds

	return Result{
		MoveID:        def.Key,
		MoveName:      def.Name,
		Outcome:       deriveOutcome(actionScore, challenge1, challenge2),
		IsMatch:       challenge1 == challenge2,
		ActionDie:     actionDie,
		ChallengeDice: [2]int{challenge1, challenge2},
		StatKey:       input.StatKey,
		StatValue:     input.StatValue,
		Adds:          input.Adds,
		ActionScore:   actionScore,
		Text:          def.Text.Outcomes,
	}, nil
}
