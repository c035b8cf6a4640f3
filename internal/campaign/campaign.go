// Package campaign defines the campaign aggregate and its CRUD service.
// The campaign document is read, mutated in memory, and written back whole;
// there is no partial update below the aggregate.
package campaign

import (
	"time"
)

// Debilities are the Ironsworn condition flags.
type Debilities struct {
	Wounded    bool `json:"wounded,omitempty"`
	Shaken     bool `json:"shaken,omitempty"`
	Unprepared bool `json:"unprepared,omitempty"`
	Encumbered bool `json:"encumbered,omitempty"`
	Maimed     bool `json:"maimed,omitempty"`
	Corrupted  bool `json:"corrupted,omitempty"`
}

// AssetRef points at an asset definition owned by a character.
type AssetRef struct {
	AssetID string `json:"assetId"`
}

// Vow is a sworn quest with a progress track.
type Vow struct {
	VowID     string `json:"vowId"`
	Name      string `json:"name"`
	Rank      string `json:"rank"`
	Progress  int    `json:"progress"`
	Fulfilled bool   `json:"fulfilled"`
	Forsaken  bool   `json:"forsaken"`
}

// Character is a player character sheet.
type Character struct {
	CharacterID   string      `json:"characterId"`
	Name          string      `json:"name"`
	Edge          int         `json:"edge"`
	Heart         int         `json:"heart"`
	Iron          int         `json:"iron"`
	Shadow        int         `json:"shadow"`
	Wits          int         `json:"wits"`
	Health        int         `json:"health"`
	Spirit        int         `json:"spirit"`
	Supply        int         `json:"supply"`
	Momentum      int         `json:"momentum"`
	MomentumMax   int         `json:"momentumMax"`
	MomentumReset int         `json:"momentumReset"`
	Debilities    *Debilities `json:"debilities,omitempty"`
	Assets        []AssetRef  `json:"assets"`
	Vows          []Vow       `json:"vows"`
	Notes         string      `json:"notes,omitempty"`
}

// Hex is one persisted map tile. A tile only materializes once revealed;
// Discovered flips false→true and never reverts.
type Hex struct {
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Biome          string `json:"biome"`
	Elevation      string `json:"elevation,omitempty"`
	SettlementName string `json:"settlementName,omitempty"`
	SiteName       string `json:"siteName,omitempty"`
	SiteDomain     string `json:"siteDomain,omitempty"`
	SiteTheme      string `json:"siteTheme,omitempty"`
	Rivers         []int  `json:"rivers,omitempty"`
	Discovered     bool   `json:"discovered"`
}

// SessionLogEntry records one beat of play.
type SessionLogEntry struct {
	LogID       string    `json:"logId"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	PlayerName  string    `json:"playerName,omitempty"`
	CharacterID string    `json:"characterId,omitempty"`
	MoveID      string    `json:"moveId,omitempty"`
	OracleID    string    `json:"oracleId,omitempty"`
	Summary     string    `json:"summary"`
	Details     string    `json:"details,omitempty"`
}

// HexRef is a lightweight coordinate reference on NPCs and locations.
type HexRef struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NPC is a non-player character attached to a campaign.
type NPC struct {
	NPCID       string   `json:"npcId"`
	Name        string   `json:"name"`
	Role        string   `json:"role,omitempty"`
	Disposition string   `json:"disposition,omitempty"`
	Descriptors []string `json:"descriptors,omitempty"`
	Description string   `json:"description,omitempty"`
	LocationID  string   `json:"locationId,omitempty"`
	Hex         *HexRef  `json:"hex,omitempty"`
	IsFoe       bool     `json:"isFoe,omitempty"`
	IsImportant bool     `json:"isImportant,omitempty"`
}

// Location is a named place attached to a campaign.
type Location struct {
	LocationID  string   `json:"locationId"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Hex         HexRef   `json:"hex"`
	Tags        []string `json:"tags,omitempty"`
	SiteDomain  string   `json:"siteDomain,omitempty"`
	SiteTheme   string   `json:"siteTheme,omitempty"`
}

// Campaign is the aggregate root. WorldSeed drives all procedural biome
// generation for the campaign's map.
type Campaign struct {
	CampaignID  string            `json:"campaignId"`
	Name        string            `json:"name"`
	WorldSeed   uint32            `json:"worldSeed"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	WorldTruths []string          `json:"worldTruths"`
	Party       []Character       `json:"party"`
	HexMap      []Hex             `json:"hexMap"`
	SessionLog  []SessionLogEntry `json:"sessionLog"`
	NPCs        []NPC             `json:"npcs"`
	Locations   []Location        `json:"locations"`
}

// FindHex returns a pointer into HexMap for (x, y), or nil.
func (c *Campaign) FindHex(x, y int) *Hex {
	for i := range c.HexMap {
		if c.HexMap[i].X == x && c.HexMap[i].Y == y {
			return &c.HexMap[i]
		}
	}
	return nil
}

// HasLocation reports whether a location with the given id exists.
func (c *Campaign) HasLocation(locationID string) bool {
	for _, l := range c.Locations {
		if l.LocationID == locationID {
			return true
		}
	}
	return false
}

// HasNPC reports whether an NPC with the given id exists.
func (c *Campaign) HasNPC(npcID string) bool {
	for _, n := range c.NPCs {
		if n.NPCID == npcID {
			return true
		}
	}
	return false
}
