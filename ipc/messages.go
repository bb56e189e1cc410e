package ipc

import (
	"encoding/json"

	"github.com/nstehr/talos/model"
)

// These constants must stay in sync with the game-side bridge.
const (
	TypeHello     = "hello"
	TypeAck       = "ack"
	TypeGameState = "game_state"
)

// HelloMessage opens a session. It carries everything that is fixed for the
// whole match: the terrain and the prototype catalog.
type HelloMessage struct {
	Player     string          `json:"player"`
	Terrain    *TerrainData    `json:"terrain,omitempty"`
	Prototypes []PrototypeData `json:"prototypes"`
	Recipes    []RecipeData    `json:"recipes"`
}

// TerrainData is the map grid, row-major. Optional: without it the bot
// treats the map as unbounded land.
type TerrainData struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Tiles  []int `json:"tiles"`
}

// Grid converts the wire terrain into the model grid.
func (t *TerrainData) Grid() *model.TerrainGrid {
	if t == nil {
		return nil
	}
	g := &model.TerrainGrid{Width: t.Width, Height: t.Height, Tiles: make([]model.TerrainType, len(t.Tiles))}
	for i, v := range t.Tiles {
		g.Tiles[i] = model.TerrainType(v)
	}
	return g
}

type PrototypeData struct {
	ID   uint32          `json:"id"`
	Name string          `json:"name"`
	Type string          `json:"type"` // e.g. "Prototype.Construction"
	Data json.RawMessage `json:"data,omitempty"`
}

type RecipeData struct {
	ID      uint32   `json:"id"`
	Name    string   `json:"name"`
	Outputs []string `json:"outputs,omitempty"`
}

// GameStateMessage is sent once per simulation tick.
type GameStateMessage struct {
	Tick       int            `json:"tick"`
	Simulating bool           `json:"simulating"`
	Entities   []EntityData   `json:"entities"`
	Orders     map[uint32]int `json:"orders,omitempty"` // unit id → queued orders
}

type EntityData struct {
	ID           uint32  `json:"id"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Owned        bool    `json:"owned"`
	Policy       string  `json:"policy"`
	Proto        uint32  `json:"proto"`
	Unit         bool    `json:"unit,omitempty"`
	Construction bool    `json:"construction,omitempty"`
	Disabled     bool    `json:"disabled,omitempty"`
	Recipe       *uint32 `json:"recipe,omitempty"`
	Amount       *int    `json:"amount,omitempty"`
}

// Entity converts the wire form into a tagged model entity.
func (d EntityData) Entity() model.Entity {
	e := model.Entity{
		ID:     d.ID,
		Pos:    model.Position{X: d.X, Y: d.Y},
		Owned:  d.Owned,
		Policy: model.Policy(d.Policy),
		Proto:  d.Proto,
	}
	if d.Unit {
		e.Tags |= model.TagUnit
	}
	if d.Construction {
		e.Tags |= model.TagConstruction
	}
	if d.Disabled {
		e.Tags |= model.TagDisabled
	}
	if d.Recipe != nil {
		e = e.WithRecipe(*d.Recipe)
	}
	if d.Amount != nil {
		e = e.WithAmount(*d.Amount)
	}
	return e
}

type AckMessage struct {
	Status string `json:"status"`
	Tick   int    `json:"tick,omitempty"`
}
