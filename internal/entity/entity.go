// Package entity models campaign actors, places, and items as a tagged
// union: one document shape discriminated by Type, with variant-specific
// fields left empty on other variants.
package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("entity not found")
	ErrConflict    = errors.New("entity already exists")
	ErrInvalidType = errors.New("invalid entity type")
)

// Type discriminates the entity variants.
type Type string

const (
	TypeNPC        Type = "npc"
	TypeFoe        Type = "foe"
	TypeLocation   Type = "location"
	TypeSite       Type = "site"
	TypeSettlement Type = "settlement"
	TypeFaction    Type = "faction"
	TypeItem       Type = "item"
	TypeEncounter  Type = "encounter"
)

var validTypes = map[Type]bool{
	TypeNPC: true, TypeFoe: true, TypeLocation: true, TypeSite: true,
	TypeSettlement: true, TypeFaction: true, TypeItem: true, TypeEncounter: true,
}

// ChallengeRank grades foes, sites, and encounters.
type ChallengeRank string

const (
	RankTroublesome ChallengeRank = "Troublesome"
	RankDangerous   ChallengeRank = "Dangerous"
	RankFormidable  ChallengeRank = "Formidable"
	RankExtreme     ChallengeRank = "Extreme"
	RankEpic        ChallengeRank = "Epic"
)

// OracleOrigin records one oracle roll that produced part of an entity.
type OracleOrigin struct {
	OracleID string `json:"oracleId"`
	Roll     int    `json:"roll"`
	Result   string `json:"result"`
}

// Origin tracks where an entity came from.
type Origin struct {
	FirstSeenLogID     string         `json:"firstSeenLogId,omitempty"`
	CreatedFromOracles []OracleOrigin `json:"createdFromOracles,omitempty"`
}

// Relationship holds npc-variant bond state.
type Relationship struct {
	Bonded bool `json:"bonded,omitempty"`
	Trust  int  `json:"trust,omitempty"`
}

// Entity is the full tagged union. Shared fields always apply; the variant
// fields below them are meaningful only for the matching Type.
type Entity struct {
	EntityID   string   `json:"entityId"`
	CampaignID string   `json:"campaignId"`
	Type       Type     `json:"type"`
	Name       string   `json:"name"`
	Tags       []string `json:"tags"`
	Summary    string   `json:"summary,omitempty"`
	Origin     *Origin  `json:"origin,omitempty"`

	// npc
	Relationship *Relationship `json:"relationship,omitempty"`
	Role         string        `json:"role,omitempty"`

	// foe / location / site / settlement / encounter
	Rank ChallengeRank `json:"rank,omitempty"`

	// foe
	Threat string `json:"threat,omitempty"`

	// location / site / settlement
	TileKey string `json:"tileKey,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Theme   string `json:"theme,omitempty"`

	// settlement
	Population string `json:"population,omitempty"`

	// faction
	Influence string `json:"influence,omitempty"`

	// item
	Rarity string `json:"rarity,omitempty"`

	// encounter
	Situation string `json:"situation,omitempty"`
}

// Store persists entities per campaign.
type Store interface {
	EntityByID(ctx context.Context, entityID string) (*Entity, error)
	EntitiesByCampaign(ctx context.Context, campaignID string) ([]Entity, error)
	SaveEntity(ctx context.Context, e *Entity) error
}

// Service implements entity CRUD.
type Service struct {
	store Store
}

// NewService creates an entity service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and stores a new entity, generating a missing id.
func (s *Service) Create(ctx context.Context, e Entity) (*Entity, error) {
	if !validTypes[e.Type] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}
	if e.EntityID == "" {
		e.EntityID = uuid.NewString()
	} else {
		existing, err := s.store.EntityByID(ctx, e.EntityID)
		if err != nil {
			return nil, fmt.Errorf("check entity %s: %w", e.EntityID, err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrConflict, e.EntityID)
		}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if err := s.store.SaveEntity(ctx, &e); err != nil {
		return nil, fmt.Errorf("save entity %s: %w", e.EntityID, err)
	}
	return &e, nil
}

// List returns all entities for a campaign.
func (s *Service) List(ctx context.Context, campaignID string) ([]Entity, error) {
	entities, err := s.store.EntitiesByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list entities for %s: %w", campaignID, err)
	}
	return entities, nil
}

// Get loads one entity, failing with ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, entityID string) (*Entity, error) {
	e, err := s.store.EntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load entity %s: %w", entityID, err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, entityID)
	}
	return e, nil
}
