// Package catalog embeds the Ironsworn reference data (oracle tables and
// move definitions) used to seed a fresh database.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/talgya/forgesworn/internal/move"
	"github.com/talgya/forgesworn/internal/oracle"
)

//go:embed data/*.json
var dataFS embed.FS

// Oracles returns the embedded oracle tables.
func Oracles() ([]oracle.Table, error) {
	raw, err := dataFS.ReadFile("data/oracles.core.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded oracles: %w", err)
	}
	var tables []oracle.Table
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("parse embedded oracles: %w", err)
	}
	return tables, nil
}

// Moves returns the embedded move definitions.
func Moves() ([]move.Definition, error) {
	raw, err := dataFS.ReadFile("data/moves.core.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded moves: %w", err)
	}
	var defs []move.Definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse embedded moves: %w", err)
	}
	return defs, nil
}
