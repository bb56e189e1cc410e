// Package hosttest provides in-memory host collaborators for tests.
package hosttest

import (
	"math"
	"slices"

	"github.com/nstehr/talos/model"
)

// World is a static entity list.
type World struct {
	List   []model.Entity
	Orders map[uint32]int
	Calls  int // number of Entities() calls
}

func (w *World) Entities() []model.Entity {
	w.Calls++
	return w.List
}

func (w *World) OrderCount(id uint32) int { return w.Orders[id] }

// Proto is one catalog entry.
type Proto struct {
	Name string
	Type string
	Blob string
}

// Catalog is an in-memory prototype catalog.
type Catalog struct {
	Protos   map[uint32]Proto
	Recipes  map[uint32]model.RecipeInfo
	AllCalls int
}

func NewCatalog() *Catalog {
	return &Catalog{Protos: make(map[uint32]Proto), Recipes: make(map[uint32]model.RecipeInfo)}
}

// Add registers a prototype and returns the catalog for chaining.
func (c *Catalog) Add(id uint32, name, typ, blob string) *Catalog {
	c.Protos[id] = Proto{Name: name, Type: typ, Blob: blob}
	return c
}

// AddRecipe registers a recipe producing the given outputs.
func (c *Catalog) AddRecipe(id uint32, name string, outputs ...string) *Catalog {
	c.Recipes[id] = model.RecipeInfo{ID: id, Name: name, Outputs: outputs}
	return c
}

func (c *Catalog) All() []uint32 {
	c.AllCalls++
	ids := make([]uint32, 0, len(c.Protos))
	for id := range c.Protos {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Catalog) Describe(id uint32) (string, string, []byte, bool) {
	p, ok := c.Protos[id]
	if !ok {
		return "", "", nil, false
	}
	return p.Name, p.Type, []byte(p.Blob), true
}

func (c *Catalog) Recipe(id uint32) (model.RecipeInfo, bool) {
	r, ok := c.Recipes[id]
	return r, ok
}

// Spatial is an unbounded open map. FindPlacement returns near+Offset
// unless Reject is set.
type Spatial struct {
	Offset    model.Position
	Reject    bool
	Occupants map[model.Position][]model.Entity
	Requests  []model.Position // every FindPlacement reference point
}

func (s *Spatial) Distance(a, b model.Position) float64 { return a.Dist(b) }

func (s *Spatial) FindPlacement(_ uint32, near model.Position) (model.Position, bool) {
	s.Requests = append(s.Requests, near)
	if s.Reject {
		return model.Position{}, false
	}
	return model.Position{X: near.X + s.Offset.X, Y: near.Y + s.Offset.Y}, true
}

// Neighbors returns every integer tile within radius, row-major.
func (s *Spatial) Neighbors(center model.Position, radius float64) []model.Position {
	r := int(math.Floor(radius))
	var out []model.Position
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			p := model.Position{X: x, Y: y}
			if p.Dist(center) <= radius {
				out = append(out, p)
			}
		}
	}
	return out
}

func (s *Spatial) EntitiesAt(p model.Position) []model.Entity { return s.Occupants[p] }

// Put places an entity in the occupancy index.
func (s *Spatial) Put(e model.Entity) {
	if s.Occupants == nil {
		s.Occupants = make(map[model.Position][]model.Entity)
	}
	s.Occupants[e.Pos] = append(s.Occupants[e.Pos], e)
}

// Command kinds recorded by Commands.
const (
	Place        = "place"
	Priority     = "priority"
	Recipe       = "recipe"
	SelfDestruct = "self_destruct"
	Fight        = "fight"
	Move         = "move"
	MoveToEntity = "move_entity"
)

type Command struct {
	Kind   string
	ID     uint32
	Target uint32
	Pos    model.Position
	Value  int
}

// Commands records every issued order.
type Commands struct {
	Log []Command
	Err error // returned from every call when set
}

func (c *Commands) record(cmd Command) error {
	c.Log = append(c.Log, cmd)
	return c.Err
}

func (c *Commands) PlaceConstruction(construction uint32, at model.Position) error {
	return c.record(Command{Kind: Place, ID: construction, Pos: at})
}

func (c *Commands) SetPriority(id uint32, priority int) error {
	return c.record(Command{Kind: Priority, ID: id, Value: priority})
}

func (c *Commands) SetRecipe(id, recipe uint32) error {
	return c.record(Command{Kind: Recipe, ID: id, Target: recipe})
}

func (c *Commands) SelfDestruct(id uint32) error {
	return c.record(Command{Kind: SelfDestruct, ID: id})
}

func (c *Commands) FightEntity(id, target uint32) error {
	return c.record(Command{Kind: Fight, ID: id, Target: target})
}

func (c *Commands) MoveTo(id uint32, at model.Position) error {
	return c.record(Command{Kind: Move, ID: id, Pos: at})
}

func (c *Commands) MoveToEntity(id, target uint32) error {
	return c.record(Command{Kind: MoveToEntity, ID: id, Target: target})
}

// OfKind returns the recorded commands of one kind, in issue order.
func (c *Commands) OfKind(kind string) []Command {
	var out []Command
	for _, cmd := range c.Log {
		if cmd.Kind == kind {
			out = append(out, cmd)
		}
	}
	return out
}

func (c *Commands) Reset() { c.Log = nil }
