package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/talgya/forgesworn/internal/api"
	"github.com/talgya/forgesworn/internal/campaign"
	"github.com/talgya/forgesworn/internal/entity"
	"github.com/talgya/forgesworn/internal/move"
	"github.com/talgya/forgesworn/internal/namegen"
	"github.com/talgya/forgesworn/internal/oracle"
	"github.com/talgya/forgesworn/internal/reveal"
)

type memCampaigns struct {
	campaigns map[string]*campaign.Campaign
}

func (s *memCampaigns) CampaignByID(_ context.Context, id string) (*campaign.Campaign, error) {
	return s.campaigns[id], nil
}

func (s *memCampaigns) SaveCampaign(_ context.Context, c *campaign.Campaign) error {
	s.campaigns[c.CampaignID] = c
	return nil
}

type memOracles map[string]*oracle.Table

func (m memOracles) OracleByID(_ context.Context, id string) (*oracle.Table, error) {
	return m[id], nil
}

type memMoves map[string]*move.Definition

func (m memMoves) MoveByKey(_ context.Context, key string) (*move.Definition, error) {
	return m[key], nil
}

type memEntities struct {
	byID map[string]*entity.Entity
}

func (s *memEntities) EntityByID(_ context.Context, id string) (*entity.Entity, error) {
	return s.byID[id], nil
}

func (s *memEntities) EntitiesByCampaign(_ context.Context, campaignID string) ([]entity.Entity, error) {
	var out []entity.Entity
	for _, e := range s.byID {
		if e.CampaignID == campaignID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memEntities) SaveEntity(_ context.Context, e *entity.Entity) error {
	copied := *e
	s.byID[e.EntityID] = &copied
	return nil
}

type scriptedRNG struct {
	values []int
	i      int
}

func (s *scriptedRNG) Intn(n int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v % n
}

func singleEntry(id, result string) *oracle.Table {
	return &oracle.Table{
		OracleID: id,
		Name:     id,
		Dice:     "1d100",
		Entries:  []oracle.Entry{{Min: 1, Max: 100, Result: result}},
	}
}

func testServer() *echo.Echo {
	oracles := memOracles{
		"ironsworn:name:ironlander_a":            singleEntry("ironsworn:name:ironlander_a", "Solana"),
		"ironsworn:name:ironlander_b":            singleEntry("ironsworn:name:ironlander_b", "Morter"),
		"ironsworn:character:role":               singleEntry("ironsworn:character:role", "Hunter"),
		"ironsworn:character:descriptor":         singleEntry("ironsworn:character:descriptor", "Weary"),
		"ironsworn:character:goal":               singleEntry("ironsworn:character:goal", "Find a person"),
		"ironsworn:place:region":                 singleEntry("ironsworn:place:region", "Havens"),
		"ironsworn:place:location":               singleEntry("ironsworn:place:location", "Village"),
		"ironsworn:place:descriptor":             singleEntry("ironsworn:place:descriptor", "Thriving"),
		"ironsworn:settlement:quick_name_prefix": singleEntry("ironsworn:settlement:quick_name_prefix", "Gray"),
		"ironsworn:settlement:quick_name_suffix": singleEntry("ironsworn:settlement:quick_name_suffix", "ford"),
	}
	moves := memMoves{
		"face_danger": {
			Key:      "face_danger",
			Name:     "Face Danger",
			Category: "adventure",
			RollType: move.RollAction,
			Text: move.TextBlock{
				Outcomes: move.Outcomes{StrongHit: "s", WeakHit: "w", Miss: "m"},
			},
		},
	}

	campaignStore := &memCampaigns{campaigns: map[string]*campaign.Campaign{}}
	rng := &scriptedRNG{values: []int{49}}
	oracleEngine := oracle.NewEngine(oracles, rng)
	gen := namegen.New(oracleEngine, &scriptedRNG{values: []int{0}})

	h := &api.Handler{
		Campaigns: campaign.NewService(campaignStore),
		Oracles:   oracleEngine,
		Moves:     move.NewEngine(moves, rng),
		Reveal:    reveal.New(campaignStore, gen, &scriptedRNG{values: []int{98}}),
		Generator: gen,
		Entities:  entity.NewService(&memEntities{byID: map[string]*entity.Entity{}}),
		Narration: nil,
	}

	e := echo.New()
	h.Register(e)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := testServer()
	rec := do(e, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestTestLLMDisabled(t *testing.T) {
	e := testServer()
	rec := do(e, http.MethodGet, "/api/test-llm", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when narration unconfigured", rec.Code)
	}
}

func TestOracleRoll(t *testing.T) {
	e := testServer()

	rec := do(e, http.MethodGet, "/api/oracles/ironsworn:character:role/roll?fixedRoll=42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var res oracle.RollResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Roll != 42 || res.Row.Result != "Hunter" {
		t.Errorf("result = %+v", res)
	}

	if rec := do(e, http.MethodGet, "/api/oracles/ironsworn:character:role/roll?fixedRoll=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("non-integer fixedRoll: status = %d, want 400", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/oracles/ironsworn:character:role/roll?fixedRoll=101", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range fixedRoll: status = %d, want 400", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/oracles/no:such:oracle/roll", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown oracle: status = %d, want 404", rec.Code)
	}
}

func TestMoveRoll(t *testing.T) {
	e := testServer()

	body := `{"statKey":"iron","statValue":2,"manualRolls":{"action":5,"challenge1":3,"challenge2":4}}`
	rec := do(e, http.MethodPost, "/api/moves/face_danger/roll", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var res move.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Outcome != move.StrongHit || res.ActionScore != 7 {
		t.Errorf("result = %+v", res)
	}

	bad := `{"manualRolls":{"action":9,"challenge1":3,"challenge2":4}}`
	if rec := do(e, http.MethodPost, "/api/moves/face_danger/roll", bad); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid manual rolls: status = %d, want 400", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/api/moves/no_such_move/roll", `{}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown move: status = %d, want 404", rec.Code)
	}
}

func TestCampaignLifecycle(t *testing.T) {
	e := testServer()

	rec := do(e, http.MethodPost, "/api/campaigns", `{"campaignId":"c1","name":"Iron Vows"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodPost, "/api/campaigns", `{"campaignId":"c1","name":"Again"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: status = %d, want 409", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/api/campaigns", `{"name":"No ID"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing id: status = %d, want 400", rec.Code)
	}

	if rec := do(e, http.MethodGet, "/api/campaigns/c1", ""); rec.Code != http.StatusOK {
		t.Errorf("get: status = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/campaigns/ghost", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get missing: status = %d, want 404", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/campaigns/c1/party", `{"name":"Brynn","iron":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add character: status = %d, body %s", rec.Code, rec.Body)
	}
	var c campaign.Campaign
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatal(err)
	}
	if len(c.Party) != 1 || c.Party[0].CharacterID == "" {
		t.Fatalf("party = %+v", c.Party)
	}

	patch := `{"health":2}`
	rec = do(e, http.MethodPatch, "/api/campaigns/c1/party/"+c.Party[0].CharacterID, patch)
	if rec.Code != http.StatusOK {
		t.Errorf("patch character: status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodPatch, "/api/campaigns/c1/party/ghost", patch); rec.Code != http.StatusNotFound {
		t.Errorf("patch missing character: status = %d, want 404", rec.Code)
	}

	if rec := do(e, http.MethodPost, "/api/campaigns/c1/log", `{"type":"note","summary":"We set out."}`); rec.Code != http.StatusOK {
		t.Errorf("append log: status = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/api/campaigns/c1/log", `{"type":"note"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("log without summary: status = %d, want 400", rec.Code)
	}
}

func TestRevealArea(t *testing.T) {
	e := testServer()

	if rec := do(e, http.MethodPost, "/api/campaigns", `{"campaignId":"c1","name":"Iron Vows"}`); rec.Code != http.StatusOK {
		t.Fatal("campaign create failed")
	}

	rec := do(e, http.MethodPost, "/api/hex/c1/reveal-area", `{"x":0,"y":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reveal: status = %d, body %s", rec.Code, rec.Body)
	}
	var res reveal.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Hexes) != 7 {
		t.Errorf("revealed %d hexes, want 7", len(res.Hexes))
	}

	if rec := do(e, http.MethodPost, "/api/hex/c1/reveal-area", `{"y":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing x: status = %d, want 400", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/api/hex/ghost/reveal-area", `{"x":0,"y":0}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown campaign: status = %d, want 404", rec.Code)
	}
}

func TestEntityRoutes(t *testing.T) {
	e := testServer()

	rec := do(e, http.MethodPost, "/api/campaigns/c1/entities", `{"type":"npc","name":"Keelan"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create entity: status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := do(e, http.MethodPost, "/api/campaigns/c1/entities", `{"type":"dragon","name":"Smog"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type: status = %d, want 400", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/campaigns/c1/entities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list entities: status = %d", rec.Code)
	}
	var list []entity.Entity
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Keelan" {
		t.Errorf("list = %+v", list)
	}
}

func TestGenerators(t *testing.T) {
	e := testServer()

	// Standalone NPC, no campaign attachment.
	rec := do(e, http.MethodPost, "/api/generators/npc", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("npc: status = %d, body %s", rec.Code, rec.Body)
	}
	var npcResp struct {
		NPC      campaign.NPC       `json:"npc"`
		Campaign *campaign.Campaign `json:"campaign"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &npcResp); err != nil {
		t.Fatal(err)
	}
	if npcResp.NPC.Name == "" {
		t.Error("npc has no name")
	}
	if npcResp.Campaign != nil {
		t.Error("standalone generation should not attach a campaign")
	}

	// Attached generation updates the campaign and records an entity.
	if rec := do(e, http.MethodPost, "/api/campaigns", `{"campaignId":"c1","name":"Iron Vows"}`); rec.Code != http.StatusOK {
		t.Fatal("campaign create failed")
	}
	rec = do(e, http.MethodPost, "/api/generators/npc", `{"campaignId":"c1","hex":{"x":1,"y":2}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("attached npc: status = %d, body %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &npcResp); err != nil {
		t.Fatal(err)
	}
	if npcResp.Campaign == nil || len(npcResp.Campaign.NPCs) != 1 {
		t.Errorf("campaign not updated: %+v", npcResp.Campaign)
	}

	rec = do(e, http.MethodGet, "/api/campaigns/c1/entities", "")
	var list []entity.Entity
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Type != entity.TypeNPC {
		t.Errorf("entity record = %+v", list)
	}
	if list[0].Origin == nil || len(list[0].Origin.CreatedFromOracles) != 4 {
		t.Errorf("entity origin not recorded: %+v", list[0].Origin)
	}

	// Locations require a campaign and a hex.
	if rec := do(e, http.MethodPost, "/api/generators/location", `{"campaignId":"c1"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("location without hex: status = %d, want 400", rec.Code)
	}
	rec = do(e, http.MethodPost, "/api/generators/location", `{"campaignId":"c1","hex":{"x":0,"y":0}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("location: status = %d, body %s", rec.Code, rec.Body)
	}
	var locResp struct {
		Location campaign.Location  `json:"location"`
		Campaign *campaign.Campaign `json:"campaign"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &locResp); err != nil {
		t.Fatal(err)
	}
	if locResp.Location.Name != "Grayford" {
		t.Errorf("location name = %q, want Grayford", locResp.Location.Name)
	}
	if locResp.Campaign == nil || len(locResp.Campaign.Locations) != 1 {
		t.Errorf("campaign locations = %+v", locResp.Campaign)
	}
}
