// Package worldgen assigns biomes to hex coordinates deterministically.
// Every draw is a pure hash of (seed, q, r) with a purpose-specific salt, so
// the same seed always yields the same world — there is no stateful RNG.
//
// The pipeline per coordinate: two-octave value noise picks a region biome,
// a hashed roll perturbs it into a raw candidate, and a weighted vote over
// the candidate plus its six neighbors settles the final biome. Lakes and
// volcanoes get special-case gates to keep them rare and plausible.
package worldgen

import (
	"crypto/rand"
	"encoding/binary"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/forgesworn/internal/biome"
	"github.com/talgya/forgesworn/internal/hexgrid"
)

// regionSize is the spatial scale of the value-noise sampling. Larger values
// produce broader, smoother biome regions.
const regionSize = 8

// Salts keep the independent hash draws decorrelated per purpose.
const (
	saltNoiseOctave1 = 0x9e37
	saltNoiseOctave2 = 0x7f4a
	saltRawCandidate = 0xabcdef01
	saltVotePick     = 0x55aa55aa
	saltLakeGate     = 0xfeedface
)

// NewSeed draws a fresh world seed from the OS entropy source.
func NewSeed() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0x1f2e3d4c
	}
	seed := binary.LittleEndian.Uint32(buf[:])
	if seed == 0 {
		seed = 0x1f2e3d4c
	}
	return seed
}

// Generator produces biomes and elevation descriptors for one world seed.
// Construct one per campaign and pass it down; it carries no mutable state.
type Generator struct {
	seed uint32
	elev opensimplex.Noise
}

// New creates a generator for the given world seed.
func New(seed uint32) *Generator {
	return &Generator{
		seed: seed,
		elev: opensimplex.NewNormalized(int64(seed)),
	}
}

// Seed returns the world seed this generator was built from.
func (g *Generator) Seed() uint32 {
	return g.seed
}

// hashCoord mixes a coordinate pair and seed into a uniform 32-bit value.
// Constants are the xxhash-style primes the map renderer has always used;
// changing them reshuffles every existing world.
func hashCoord(a, b int, seed uint32) uint32 {
	h := seed
	h ^= uint32(a) * 374761393
	h = h<<13 | h>>19
	h *= 1274126177
	h ^= uint32(b) * 668265263
	h = h<<15 | h>>17
	h *= 2246822519
	return h
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func valueAt(ix, iy int, seed uint32) float64 {
	return float64(hashCoord(ix, iy, seed)) / float64(0xffffffff)
}

// valueNoise samples 2D value noise with bilinear interpolation between the
// four surrounding lattice hashes. Good enough to avoid visible grid lines.
func valueNoise(q, r int, scale float64, seed uint32) float64 {
	x := float64(q) / scale
	y := float64(r) / scale
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	sx := x - float64(x0)
	sy := y - float64(y0)

	n00 := valueAt(x0, y0, seed)
	n10 := valueAt(x0+1, y0, seed)
	n01 := valueAt(x0, y0+1, seed)
	n11 := valueAt(x0+1, y0+1, seed)

	nx0 := lerp(n00, n10, sx)
	nx1 := lerp(n01, n11, sx)
	return lerp(nx0, nx1, sy)
}

// baseBiome maps blended two-octave noise onto an index into the catalog.
func (g *Generator) baseBiome(c hexgrid.Coord) biome.ID {
	n1 := valueNoise(c.Q, c.R, regionSize, g.seed^saltNoiseOctave1)
	n2 := valueNoise(c.Q, c.R, regionSize*2, g.seed^saltNoiseOctave2)
	n := math.Mod(n1*0.65+n2*0.35, 1)
	idx := int(n*float64(len(biome.Catalog))) % len(biome.Catalog)
	return biome.Catalog[idx].ID
}

// neighborsBaseBiome reports whether any neighbor's region biome is target.
func (g *Generator) neighborsBaseBiome(c hexgrid.Coord, target biome.ID) bool {
	for _, dir := range hexgrid.Directions {
		if g.baseBiome(hexgrid.Add(c, dir)) == target {
			return true
		}
	}
	return false
}

// rawCandidate perturbs the region biome for local variety:
// 70% keep it, 15% swap for a similar biome, otherwise a wild card.
func (g *Generator) rawCandidate(c hexgrid.Coord) biome.ID {
	regionBiome := g.baseBiome(c)
	similar := biome.SimilarOptions(regionBiome)
	h := hashCoord(c.Q, c.R, g.seed^saltRawCandidate)
	roll := h % 100

	if roll < 70 {
		return regionBiome
	}
	if roll < 85 && len(similar) > 0 {
		return similar[int(h>>8)%len(similar)]
	}
	return biome.Catalog[int(h>>16)%len(biome.Catalog)].ID
}

// weightEntry participates in the final vote. Entries keep first-insertion
// order so the cumulative-sum pick is deterministic across runs.
type weightEntry struct {
	id     biome.ID
	weight int
}

type tally struct {
	entries []weightEntry
	index   map[biome.ID]int
}

func newTally() *tally {
	return &tally{index: make(map[biome.ID]int)}
}

func (t *tally) add(id biome.ID, w int) {
	if i, ok := t.index[id]; ok {
		t.entries[i].weight += w
		return
	}
	t.index[id] = len(t.entries)
	t.entries = append(t.entries, weightEntry{id: id, weight: w})
}

// BiomeAt returns the biome for a coordinate. Total over all integer pairs.
func (g *Generator) BiomeAt(c hexgrid.Coord) biome.ID {
	self := g.rawCandidate(c)

	var neighborCandidates [6]biome.ID
	for i, dir := range hexgrid.Directions {
		neighborCandidates[i] = g.rawCandidate(hexgrid.Add(c, dir))
	}

	// Voting weights: self candidate 4, each neighbor candidate 3, each
	// biome similar to self +1 (self included, so it may reach 5).
	weights := newTally()
	weights.add(self, 4)
	for _, id := range neighborCandidates {
		weights.add(id, 3)
	}
	for _, id := range biome.Similar(self) {
		weights.add(id, 1)
	}

	// Rivers continue across hexes, capped at two contributing sides.
	riverNeighbors := 0
	for _, id := range neighborCandidates {
		if id == biome.River {
			riverNeighbors++
		}
	}
	if riverNeighbors > 0 {
		weights.add(biome.River, min(2, riverNeighbors)*60)
	}

	// Seas cluster hard: every sea neighbor reinforces, plus a self nudge.
	seaNeighbors := 0
	for _, id := range neighborCandidates {
		if id == biome.Sea {
			seaNeighbors++
		}
	}
	if seaNeighbors > 0 || self == biome.Sea {
		bonus := seaNeighbors * 35
		if self == biome.Sea {
			bonus += 4
		}
		weights.add(biome.Sea, bonus)
	}

	total := 0
	for _, e := range weights.entries {
		total += e.weight
	}
	if total == 0 {
		total = 1
	}
	pickVal := int(hashCoord(c.Q, c.R, g.seed^saltVotePick) % uint32(total))

	chosen := self
	cumulative := 0
	for _, e := range weights.entries {
		cumulative += e.weight
		if pickVal < cumulative {
			chosen = e.id
			break
		}
	}

	// Lakes are rare and never adjacent to another lake. When the gate
	// fails, fall back through self, any non-lake neighbor, then the
	// region biome, defaulting to plains.
	if chosen == biome.Lake {
		rareEnough := hashCoord(c.Q, c.R, g.seed^saltLakeGate)%100 < 2
		neighborLake := false
		for _, id := range neighborCandidates {
			if id == biome.Lake {
				neighborLake = true
				break
			}
		}
		if !rareEnough || neighborLake {
			chosen = biome.Plains
			fallbacks := make([]biome.ID, 0, 8)
			fallbacks = append(fallbacks, self)
			fallbacks = append(fallbacks, neighborCandidates[:]...)
			fallbacks = append(fallbacks, g.baseBiome(c))
			for _, id := range fallbacks {
				if id != biome.Lake {
					chosen = id
					break
				}
			}
		}
	}

	// Volcanoes only erupt near badlands; otherwise keep the raw candidate.
	if chosen == biome.Volcanic {
		nearBadlands := self == biome.Badlands
		if !nearBadlands {
			for _, id := range neighborCandidates {
				if id == biome.Badlands {
					nearBadlands = true
					break
				}
			}
		}
		if !nearBadlands {
			nearBadlands = g.neighborsBaseBiome(c, biome.Badlands)
		}
		if !nearBadlands {
			return self
		}
	}

	return chosen
}

// Elevation descriptors, from low to high.
const (
	ElevationLowland  = "lowland"
	ElevationHills    = "hills"
	ElevationHighland = "highland"
	ElevationPeaks    = "peaks"
)

// ElevationAt classifies smooth simplex terrain height into a descriptor.
// Shares the world seed, so elevation is as repeatable as the biome layer.
func (g *Generator) ElevationAt(c hexgrid.Coord) string {
	p := hexgrid.ToPixel(c)
	v := g.elev.Eval2(p.X*0.004, p.Y*0.004)*0.7 + g.elev.Eval2(p.X*0.008, p.Y*0.008)*0.3
	switch {
	case v < 0.35:
		return ElevationLowland
	case v < 0.60:
		return ElevationHills
	case v < 0.82:
		return ElevationHighland
	default:
		return ElevationPeaks
	}
}
