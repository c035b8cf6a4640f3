// Package biome defines the fixed biome catalog and its similarity groups.
// The catalog order matters: the world generator maps noise values onto
// indices into this list.
package biome

// ID identifies a biome.
type ID string

const (
	Badlands   ID = "badlands"
	Barrens    ID = "barrens"
	Bog        ID = "bog"
	Cliffs     ID = "cliffs"
	Coast      ID = "coast"
	DeepForest ID = "deep_forest"
	Desert     ID = "desert"
	Fen        ID = "fen"
	Forest     ID = "forest"
	Grassland  ID = "grassland"
	Heathland  ID = "heathland"
	Highlands  ID = "highlands"
	Hills      ID = "hills"
	Lake       ID = "lake"
	Marsh      ID = "marsh"
	Mountains  ID = "mountains"
	Plains     ID = "plains"
	River      ID = "river"
	Scrubland  ID = "scrubland"
	Sea        ID = "sea"
	Snowfields ID = "snowfields"
	Swamp      ID = "swamp"
	Taiga      ID = "taiga"
	Tundra     ID = "tundra"
	Volcanic   ID = "volcanic"
	Wetlands   ID = "wetlands"
)

// Biome pairs an id with its display label.
type Biome struct {
	ID    ID     `json:"id"`
	Label string `json:"label"`
}

// Catalog is the full ordered biome list.
var Catalog = []Biome{
	{Badlands, "Badlands"},
	{Barrens, "Barrens"},
	{Bog, "Bog"},
	{Cliffs, "Cliffs"},
	{Coast, "Coast"},
	{DeepForest, "Deep Forest"},
	{Desert, "Desert"},
	{Fen, "Fen"},
	{Forest, "Forest"},
	{Grassland, "Grassland"},
	{Heathland, "Heathland"},
	{Highlands, "Highlands"},
	{Hills, "Hills"},
	{Lake, "Lake"},
	{Marsh, "Marsh"},
	{Mountains, "Mountains"},
	{Plains, "Plains"},
	{River, "River"},
	{Scrubland, "Scrubland"},
	{Sea, "Sea"},
	{Snowfields, "Snowfields"},
	{Swamp, "Swamp"},
	{Taiga, "Taiga"},
	{Tundra, "Tundra"},
	{Volcanic, "Volcanic"},
	{Wetlands, "Wetlands"},
}

// groups partitions most biomes into similarity clusters. A biome outside
// every group forms its own singleton cluster.
var groups = [][]ID{
	{Sea, Coast, River, Lake, Wetlands},
	{Forest, DeepForest, Taiga, Swamp, Marsh},
	{Plains, Grassland, Heathland, Hills, Scrubland},
	{Mountains, Highlands, Cliffs, Snowfields, Volcanic},
	{Desert, Badlands, Barrens},
}

var byID = func() map[ID]Biome {
	m := make(map[ID]Biome, len(Catalog))
	for _, b := range Catalog {
		m[b.ID] = b
	}
	return m
}()

// ByID returns the biome for id and whether it exists in the catalog.
func ByID(id ID) (Biome, bool) {
	b, ok := byID[id]
	return b, ok
}

// IsValid reports whether id is in the catalog.
func IsValid(id ID) bool {
	_, ok := byID[id]
	return ok
}

// Similar returns the full similarity cluster containing id, including id
// itself, or [id] when the biome is ungrouped.
func Similar(id ID) []ID {
	for _, group := range groups {
		for _, member := range group {
			if member == id {
				return group
			}
		}
	}
	return []ID{id}
}

// SimilarOptions returns the similarity cluster minus id itself.
func SimilarOptions(id ID) []ID {
	group := Similar(id)
	options := make([]ID, 0, len(group))
	for _, member := range group {
		if member != id {
			options = append(options, member)
		}
	}
	return options
}
