// Package reveal discovers hex map areas: the target hex plus its six
// neighbors, generating biomes and points of interest for tiles seen for
// the first time.
//
// Biomes come from the campaign-seeded world generator, so the map a player
// previews client-side and the map that gets persisted agree. Hexes are
// processed strictly in order — later tiles see the in-memory mutations of
// earlier ones, which is what keeps POI ids unique within one reveal.
package reveal

import (
	"context"
	"fmt"

	"github.com/talgya/forgesworn/internal/campaign"
	"github.com/talgya/forgesworn/internal/dice"
	"github.com/talgya/forgesworn/internal/hexgrid"
	"github.com/talgya/forgesworn/internal/namegen"
	"github.com/talgya/forgesworn/internal/worldgen"
)

// POI spawn chances, in percent.
const (
	locationChance = 30
	npcChance      = 20
)

// Input identifies the reveal target.
type Input struct {
	CampaignID string `json:"campaignId"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	AllowPOI   bool   `json:"allowPoi"`
}

// Result reports the revealed area. Hexes always holds exactly seven tiles:
// center first, then neighbors in direction order.
type Result struct {
	Campaign           *campaign.Campaign  `json:"campaign"`
	Hexes              []campaign.Hex      `json:"hexes"`
	GeneratedLocations []campaign.Location `json:"generatedLocations,omitempty"`
	GeneratedNPCs      []campaign.NPC      `json:"generatedNpcs,omitempty"`
}

// Orchestrator runs reveal operations against the campaign store.
type Orchestrator struct {
	store   campaign.Store
	namegen *namegen.Generator
	rng     dice.RNG
}

// New creates a reveal orchestrator.
func New(store campaign.Store, gen *namegen.Generator, rng dice.RNG) *Orchestrator {
	return &Orchestrator{store: store, namegen: gen, rng: rng}
}

// RevealArea ensures the 7-hex neighborhood around (x, y) exists and is
// discovered, then persists the campaign once. Nothing is written if any
// step fails. Re-running over an already-discovered area is a no-op apart
// from returning the same seven hexes.
func (o *Orchestrator) RevealArea(ctx context.Context, input Input) (*Result, error) {
	c, err := o.store.CampaignByID(ctx, input.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", input.CampaignID, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", campaign.ErrNotFound, input.CampaignID)
	}

	gen := worldgen.New(c.WorldSeed)

	center := hexgrid.Coord{Q: input.X, R: input.Y}
	coords := make([]hexgrid.Coord, 0, 7)
	coords = append(coords, center)
	for _, dir := range hexgrid.Directions {
		coords = append(coords, hexgrid.Add(center, dir))
	}

	result := &Result{Campaign: c}
	for _, coord := range coords {
		loc, npc, err := o.ensureHex(ctx, c, gen, coord, input.AllowPOI)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			result.GeneratedLocations = append(result.GeneratedLocations, *loc)
		}
		if npc != nil {
			result.GeneratedNPCs = append(result.GeneratedNPCs, *npc)
		}
	}

	if err := o.store.SaveCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("save campaign %s: %w", c.CampaignID, err)
	}

	// Collect after all mutations; appends may have reallocated the map.
	for _, coord := range coords {
		result.Hexes = append(result.Hexes, *c.FindHex(coord.Q, coord.R))
	}
	return result, nil
}

// ensureHex materializes one tile. Existing tiles only have their discovered
// flag raised; their biome is never regenerated.
func (o *Orchestrator) ensureHex(ctx context.Context, c *campaign.Campaign, gen *worldgen.Generator, coord hexgrid.Coord, allowPOI bool) (*campaign.Location, *campaign.NPC, error) {
	if existing := c.FindHex(coord.Q, coord.R); existing != nil {
		if !existing.Discovered {
			existing.Discovered = true
		}
		return nil, nil, nil
	}

	hex := campaign.Hex{
		X:          coord.Q,
		Y:          coord.R,
		Biome:      string(gen.BiomeAt(coord)),
		Elevation:  gen.ElevationAt(coord),
		Discovered: true,
	}

	var genLoc *campaign.Location
	var genNPC *campaign.NPC

	if allowPOI {
		if dice.Roll(o.rng, 100) <= locationChance {
			loc, _, err := o.namegen.Location(ctx, campaign.HexRef{X: coord.Q, Y: coord.R})
			if err != nil {
				return nil, nil, fmt.Errorf("generate location at %s: %w", hexgrid.Key(coord), err)
			}
			if !c.HasLocation(loc.LocationID) {
				c.Locations = append(c.Locations, loc)
				hex.SettlementName = loc.Name
				genLoc = &loc
			}
		}

		if dice.Roll(o.rng, 100) <= npcChance {
			npc, _, err := o.namegen.NPC(ctx, &campaign.HexRef{X: coord.Q, Y: coord.R})
			if err != nil {
				return nil, nil, fmt.Errorf("generate npc at %s: %w", hexgrid.Key(coord), err)
			}
			if !c.HasNPC(npc.NPCID) {
				c.NPCs = append(c.NPCs, npc)
				genNPC = &npc
			}
		}
	}

	c.HexMap = append(c.HexMap, hex)
	return genLoc, genNPC, nil
}
