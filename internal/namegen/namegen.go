// Package namegen composes NPCs and locations from oracle rolls.
// An NPC takes four rolls (name, role, descriptor, goal); a location takes
// five (region, type, descriptor, settlement prefix and suffix).
package namegen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/forgesworn/internal/campaign"
	"github.com/talgya/forgesworn/internal/dice"
	"github.com/talgya/forgesworn/internal/entity"
	"github.com/talgya/forgesworn/internal/oracle"
)

// Oracle ids consulted by the generator.
var (
	nameTables = []string{
		"ironsworn:name:ironlander_a",
		"ironsworn:name:ironlander_b",
	}
	oracleRole             = "ironsworn:character:role"
	oracleDescriptor       = "ironsworn:character:descriptor"
	oracleGoal             = "ironsworn:character:goal"
	oracleRegion           = "ironsworn:place:region"
	oracleLocation         = "ironsworn:place:location"
	oraclePlaceDescriptor  = "ironsworn:place:descriptor"
	oracleSettlementPrefix = "ironsworn:settlement:quick_name_prefix"
	oracleSettlementSuffix = "ironsworn:settlement:quick_name_suffix"
)

var markdownLink = regexp.MustCompile(`\[([^\]]+)]\([^)]*\)`)

// cleanText strips markdown link syntax "[text](ref)" down to "text".
func cleanText(s string) string {
	return markdownLink.ReplaceAllString(s, "$1")
}

// Generator rolls oracles into named NPCs and locations.
type Generator struct {
	oracles *oracle.Engine
	rng     dice.RNG
}

// New creates a generator over an oracle engine and die source.
func New(oracles *oracle.Engine, rng dice.RNG) *Generator {
	return &Generator{oracles: oracles, rng: rng}
}

// roll resolves one oracle and returns its cleaned result text plus the
// origin record for the entity collection.
func (g *Generator) roll(ctx context.Context, oracleID string) (string, entity.OracleOrigin, error) {
	res, err := g.oracles.Roll(ctx, oracleID, oracle.RollOptions{})
	if err != nil {
		return "", entity.OracleOrigin{}, fmt.Errorf("roll %s: %w", oracleID, err)
	}
	text := cleanText(res.Row.Result)
	return text, entity.OracleOrigin{
		OracleID: res.OracleID,
		Roll:     res.Roll,
		Result:   text,
	}, nil
}

// NPC returns a generated NPC and the oracle rolls that produced it.
func (g *Generator) NPC(ctx context.Context, hex *campaign.HexRef) (campaign.NPC, []entity.OracleOrigin, error) {
	nameTable := nameTables[g.rng.Intn(len(nameTables))]

	name, nameOrigin, err := g.roll(ctx, nameTable)
	if err != nil {
		return campaign.NPC{}, nil, err
	}
	role, roleOrigin, err := g.roll(ctx, oracleRole)
	if err != nil {
		return campaign.NPC{}, nil, err
	}
	descriptor, descOrigin, err := g.roll(ctx, oracleDescriptor)
	if err != nil {
		return campaign.NPC{}, nil, err
	}
	goal, goalOrigin, err := g.roll(ctx, oracleGoal)
	if err != nil {
		return campaign.NPC{}, nil, err
	}

	npc := campaign.NPC{
		NPCID:       uuid.NewString(),
		Name:        name,
		Role:        role,
		Disposition: "unknown",
		Descriptors: []string{descriptor, goal},
		Description: fmt.Sprintf("A %s %s who seeks to %s.", descriptor, role, strings.ToLower(goal)),
		Hex:         hex,
		IsImportant: true,
	}
	origins := []entity.OracleOrigin{nameOrigin, roleOrigin, descOrigin, goalOrigin}
	return npc, origins, nil
}

// Location returns a generated location and the oracle rolls behind it.
func (g *Generator) Location(ctx context.Context, hex campaign.HexRef) (campaign.Location, []entity.OracleOrigin, error) {
	region, regionOrigin, err := g.roll(ctx, oracleRegion)
	if err != nil {
		return campaign.Location{}, nil, err
	}
	locationType, typeOrigin, err := g.roll(ctx, oracleLocation)
	if err != nil {
		return campaign.Location{}, nil, err
	}
	descriptor, descOrigin, err := g.roll(ctx, oraclePlaceDescriptor)
	if err != nil {
		return campaign.Location{}, nil, err
	}
	prefix, prefixOrigin, err := g.roll(ctx, oracleSettlementPrefix)
	if err != nil {
		return campaign.Location{}, nil, err
	}
	suffix, suffixOrigin, err := g.roll(ctx, oracleSettlementSuffix)
	if err != nil {
		return campaign.Location{}, nil, err
	}

	typeLower := strings.ToLower(locationType)
	loc := campaign.Location{
		LocationID: uuid.NewString(),
		Name:       prefix + suffix,
		Type:       typeLower,
		Hex:        hex,
		Summary:    fmt.Sprintf("A %s %s in the %s.", descriptor, typeLower, region),
		Tags:       []string{region, locationType, descriptor},
	}
	origins := []entity.OracleOrigin{regionOrigin, typeOrigin, descOrigin, prefixOrigin, suffixOrigin}
	return loc, origins, nil
}
