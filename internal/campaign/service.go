package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/forgesworn/internal/worldgen"
)

var (
	ErrNotFound          = errors.New("campaign not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrConflict          = errors.New("already exists")
)

// Store persists campaign aggregates. CampaignByID returns (nil, nil) when
// the campaign is absent; Save upserts the whole document.
type Store interface {
	CampaignByID(ctx context.Context, campaignID string) (*Campaign, error)
	SaveCampaign(ctx context.Context, c *Campaign) error
}

// Service implements campaign CRUD over a document store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a campaign service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateInput names a new campaign.
type CreateInput struct {
	CampaignID  string   `json:"campaignId"`
	Name        string   `json:"name"`
	WorldTruths []string `json:"worldTruths,omitempty"`
}

// Create makes a new campaign with a fresh world seed. Fails with
// ErrConflict when the id is taken.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Campaign, error) {
	existing, err := s.store.CampaignByID(ctx, input.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("check campaign %s: %w", input.CampaignID, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("campaign %w with id: %s", ErrConflict, input.CampaignID)
	}

	truths := input.WorldTruths
	if truths == nil {
		truths = []string{}
	}

	now := s.now().UTC()
	c := &Campaign{
		CampaignID:  input.CampaignID,
		Name:        input.Name,
		WorldSeed:   worldgen.NewSeed(),
		CreatedAt:   now,
		UpdatedAt:   now,
		WorldTruths: truths,
		Party:       []Character{},
		HexMap:      []Hex{},
		SessionLog:  []SessionLogEntry{},
		NPCs:        []NPC{},
		Locations:   []Location{},
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get loads a campaign, failing with ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, campaignID string) (*Campaign, error) {
	c, err := s.store.CampaignByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", campaignID, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, campaignID)
	}
	return c, nil
}

// AddCharacter appends a character to the party. A missing character id is
// generated; a duplicate id fails with ErrConflict.
func (s *Service) AddCharacter(ctx context.Context, campaignID string, ch Character) (*Campaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if ch.CharacterID == "" {
		ch.CharacterID = uuid.NewString()
	}
	for _, existing := range c.Party {
		if existing.CharacterID == ch.CharacterID {
			return nil, fmt.Errorf("character %w with id: %s", ErrConflict, ch.CharacterID)
		}
	}

	c.Party = append(c.Party, ch)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CharacterPatch carries partial character updates. Nil fields are ignored.
type CharacterPatch struct {
	Name          *string     `json:"name,omitempty"`
	Edge          *int        `json:"edge,omitempty"`
	Heart         *int        `json:"heart,omitempty"`
	Iron          *int        `json:"iron,omitempty"`
	Shadow        *int        `json:"shadow,omitempty"`
	Wits          *int        `json:"wits,omitempty"`
	Health        *int        `json:"health,omitempty"`
	Spirit        *int        `json:"spirit,omitempty"`
	Supply        *int        `json:"supply,omitempty"`
	Momentum      *int        `json:"momentum,omitempty"`
	MomentumMax   *int        `json:"momentumMax,omitempty"`
	MomentumReset *int        `json:"momentumReset,omitempty"`
	Debilities    *Debilities `json:"debilities,omitempty"`
	Assets        []AssetRef  `json:"assets,omitempty"`
	Vows          []Vow       `json:"vows,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

func applyPatch(ch *Character, p CharacterPatch) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&ch.Name, p.Name)
	setInt(&ch.Edge, p.Edge)
	setInt(&ch.Heart, p.Heart)
	setInt(&ch.Iron, p.Iron)
	setInt(&ch.Shadow, p.Shadow)
	setInt(&ch.Wits, p.Wits)
	setInt(&ch.Health, p.Health)
	setInt(&ch.Spirit, p.Spirit)
	setInt(&ch.Supply, p.Supply)
	setInt(&ch.Momentum, p.Momentum)
	setInt(&ch.MomentumMax, p.MomentumMax)
	setInt(&ch.MomentumReset, p.MomentumReset)
	setStr(&ch.Notes, p.Notes)
	if p.Debilities != nil {
		ch.Debilities = p.Debilities
	}
	if p.Assets != nil {
		ch.Assets = p.Assets
	}
	if p.Vows != nil {
		ch.Vows = p.Vows
	}
}

// UpdateCharacter patches one party member in place.
func (s *Service) UpdateCharacter(ctx context.Context, campaignID, characterID string, patch CharacterPatch) (*Campaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	for i := range c.Party {
		if c.Party[i].CharacterID == characterID {
			applyPatch(&c.Party[i], patch)
			if err := s.save(ctx, c); err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterID)
}

// AppendLogEntry adds a session log entry, filling in id and timestamp when
// the caller left them empty.
func (s *Service) AppendLogEntry(ctx context.Context, campaignID string, entry SessionLogEntry) (*Campaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if entry.LogID == "" {
		entry.LogID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}

	c.SessionLog = append(c.SessionLog, entry)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetHexMap replaces the campaign's hex map wholesale.
func (s *Service) SetHexMap(ctx context.Context, campaignID string, hexes []Hex) (*Campaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if hexes == nil {
		hexes = []Hex{}
	}
	c.HexMap = hexes
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddNPC appends an NPC, failing with ErrConflict on a duplicate id.
func (s *Service) AddNPC(ctx context.Context, campaignID string, npc NPC) (*Campaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if npc.NPCID == "" {
		npc.NPCID = uuid.NewString()
	}
	if c.HasNPC(npc.NPCID) {
		return nil, fmt.Errorf("npc %w with id: %s", ErrConflict, npc.NPCID)
	}

	c.NPCs = append(c.NPCs, npc)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddLocation appends a location, failing with ErrConflict on a duplicate id.
func (s *Service) AddLocation(ctx context.Context, campaignID string, loc Location) (*Campaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if loc.LocationID == "" {
		loc.LocationID = uuid.NewString()
	}
	if c.HasLocation(loc.LocationID) {
		return nil, fmt.Errorf("location %w with id: %s", ErrConflict, loc.LocationID)
	}

	c.Locations = append(c.Locations, loc)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *Campaign) error {
	c.UpdatedAt = s.now().UTC()
	if err := s.store.SaveCampaign(ctx, c); err != nil {
		return fmt.Errorf("save campaign %s: %w", c.CampaignID, err)
	}
	return nil
}
