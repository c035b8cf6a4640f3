// Package api exposes the campaign, oracle, move, and world-reveal
// operations over HTTP. It only translates requests and maps domain errors
// to status codes; all rules live in the domain packages.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talgya/forgesworn/internal/campaign"
	"github.com/talgya/forgesworn/internal/entity"
	"github.com/talgya/forgesworn/internal/move"
	"github.com/talgya/forgesworn/internal/namegen"
	"github.com/talgya/forgesworn/internal/narration"
	"github.com/talgya/forgesworn/internal/oracle"
	"github.com/talgya/forgesworn/internal/reveal"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler wires the domain services into echo routes.
type Handler struct {
	Campaigns *campaign.Service
	Oracles   *oracle.Engine
	Moves     *move.Engine
	Reveal    *reveal.Orchestrator
	Generator *namegen.Generator
	Entities  *entity.Service
	Narration *narration.Client
}

// Register mounts all routes.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/health", h.Health)

	// The narration endpoint hits the LLM backend, so it gets its own limiter.
	llmLimit := NewRateLimiter(10, time.Minute)
	api.GET("/test-llm", h.TestLLM, llmLimit.Middleware())

	api.GET("/oracles/:oracleId/roll", h.RollOracle)
	api.POST("/moves/:moveId/roll", h.RollMove)

	api.POST("/campaigns", h.CreateCampaign)
	api.GET("/campaigns/:campaignId", h.GetCampaign)
	api.POST("/campaigns/:campaignId/party", h.AddCharacter)
	api.PATCH("/campaigns/:campaignId/party/:characterId", h.UpdateCharacter)
	api.POST("/campaigns/:campaignId/log", h.AppendLog)
	api.PUT("/campaigns/:campaignId/hexmap", h.SetHexMap)
	api.POST("/campaigns/:campaignId/entities", h.CreateEntity)
	api.GET("/campaigns/:campaignId/entities", h.ListEntities)

	api.POST("/hex/:campaignId/reveal-area", h.RevealArea)

	api.POST("/generators/npc", h.GenerateNPC)
	api.POST("/generators/location", h.GenerateLocation)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) TestLLM(c echo.Context) error {
	if !h.Narration.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "narration backend not configured"})
	}
	prompt := "Write two short sentences describing an eerie but not dangerous forest scene."
	text, err := h.Narration.Generate(c.Request().Context(), prompt)
	if err != nil {
		slog.Error("narration request failed", "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "narration backend failure"})
	}
	return c.JSON(http.StatusOK, map[string]string{"response": text})
}

func (h *Handler) RollOracle(c echo.Context) error {
	var opts oracle.RollOptions
	if raw := c.QueryParam("fixedRoll"); raw != "" {
		fixed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "fixedRoll must be an integer"})
		}
		opts.FixedRoll = &fixed
	}

	result, err := h.Oracles.Roll(c.Request().Context(), c.Param("oracleId"), opts)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) RollMove(c echo.Context) error {
	var input move.Input
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	result, err := h.Moves.Roll(c.Request().Context(), c.Param("moveId"), input)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateCampaign(c echo.Context) error {
	var input campaign.CreateInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if input.CampaignID == "" || input.Name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "campaignId and name are required"})
	}

	created, err := h.Campaigns.Create(c.Request().Context(), input)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *Handler) GetCampaign(c echo.Context) error {
	found, err := h.Campaigns.Get(c.Request().Context(), c.Param("campaignId"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

func (h *Handler) AddCharacter(c echo.Context) error {
	var ch campaign.Character
	if err := c.Bind(&ch); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	updated, err := h.Campaigns.AddCharacter(c.Request().Context(), c.Param("campaignId"), ch)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) UpdateCharacter(c echo.Context) error {
	var patch campaign.CharacterPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	updated, err := h.Campaigns.UpdateCharacter(c.Request().Context(), c.Param("campaignId"), c.Param("characterId"), patch)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) AppendLog(c echo.Context) error {
	var entry campaign.SessionLogEntry
	if err := c.Bind(&entry); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if entry.Summary == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "summary is required"})
	}

	updated, err := h.Campaigns.AppendLogEntry(c.Request().Context(), c.Param("campaignId"), entry)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) SetHexMap(c echo.Context) error {
	var hexes []campaign.Hex
	if err := c.Bind(&hexes); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	updated, err := h.Campaigns.SetHexMap(c.Request().Context(), c.Param("campaignId"), hexes)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) CreateEntity(c echo.Context) error {
	var e entity.Entity
	if err := c.Bind(&e); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	e.CampaignID = c.Param("campaignId")
	if e.Name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
	}

	created, err := h.Entities.Create(c.Request().Context(), e)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *Handler) ListEntities(c echo.Context) error {
	entities, err := h.Entities.List(c.Request().Context(), c.Param("campaignId"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, entities)
}

type revealRequest struct {
	X        *int  `json:"x"`
	Y        *int  `json:"y"`
	AllowPOI *bool `json:"allowPoi"`
}

func (h *Handler) RevealArea(c echo.Context) error {
	var req revealRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.X == nil || req.Y == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "x and y must be numbers"})
	}

	allowPOI := true
	if req.AllowPOI != nil {
		allowPOI = *req.AllowPOI
	}

	result, err := h.Reveal.RevealArea(c.Request().Context(), reveal.Input{
		CampaignID: c.Param("campaignId"),
		X:          *req.X,
		Y:          *req.Y,
		AllowPOI:   allowPOI,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type generateRequest struct {
	CampaignID string           `json:"campaignId"`
	Hex        *campaign.HexRef `json:"hex"`
}

func (h *Handler) GenerateNPC(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	ctx := c.Request().Context()
	npc, origins, err := h.Generator.NPC(ctx, req.Hex)
	if err != nil {
		return mapError(c, err)
	}

	resp := map[string]any{"npc": npc}
	if req.CampaignID != "" {
		updated, err := h.Campaigns.AddNPC(ctx, req.CampaignID, npc)
		if err != nil {
			return mapError(c, err)
		}
		if _, err := h.Entities.Create(ctx, entity.Entity{
			CampaignID: req.CampaignID,
			Type:       entity.TypeNPC,
			Name:       npc.Name,
			Role:       npc.Role,
			Tags:       npc.Descriptors,
			Summary:    npc.Description,
			Origin:     &entity.Origin{CreatedFromOracles: origins},
		}); err != nil {
			return mapError(c, err)
		}
		resp["campaign"] = updated
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GenerateLocation(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.CampaignID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "campaignId is required to generate a location"})
	}
	if req.Hex == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "hex is required to generate a location"})
	}

	ctx := c.Request().Context()
	loc, origins, err := h.Generator.Location(ctx, *req.Hex)
	if err != nil {
		return mapError(c, err)
	}

	updated, err := h.Campaigns.AddLocation(ctx, req.CampaignID, loc)
	if err != nil {
		return mapError(c, err)
	}
	if _, err := h.Entities.Create(ctx, entity.Entity{
		CampaignID: req.CampaignID,
		Type:       entity.TypeLocation,
		Name:       loc.Name,
		Tags:       loc.Tags,
		Summary:    loc.Summary,
		Origin:     &entity.Origin{CreatedFromOracles: origins},
	}); err != nil {
		return mapError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"location": loc, "campaign": updated})
}

// mapError translates domain sentinels into HTTP status codes.
func mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, campaign.ErrNotFound),
		errors.Is(err, campaign.ErrCharacterNotFound),
		errors.Is(err, oracle.ErrNotFound),
		errors.Is(err, move.ErrNotFound),
		errors.Is(err, entity.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, oracle.ErrRollOutOfRange),
		errors.Is(err, move.ErrInvalidManualRolls),
		errors.Is(err, entity.ErrInvalidType):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, campaign.ErrConflict),
		errors.Is(err, entity.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, oracle.ErrNoMatch),
		errors.Is(err, oracle.ErrCircularFallback):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
