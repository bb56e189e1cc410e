package ipc

import (
	"sort"

	"github.com/nstehr/talos/model"
)

// Catalog serves the prototype enumeration received in the hello frame.
type Catalog struct {
	protos  map[uint32]PrototypeData
	recipes map[uint32]model.RecipeInfo
}

func NewCatalog(hello HelloMessage) *Catalog {
	c := &Catalog{
		protos:  make(map[uint32]PrototypeData, len(hello.Prototypes)),
		recipes: make(map[uint32]model.RecipeInfo, len(hello.Recipes)),
	}
	for _, p := range hello.Prototypes {
		c.protos[p.ID] = p
	}
	for _, r := range hello.Recipes {
		c.recipes[r.ID] = model.RecipeInfo{ID: r.ID, Name: r.Name, Outputs: r.Outputs}
	}
	return c
}

func (c *Catalog) All() []uint32 {
	ids := make([]uint32, 0, len(c.protos))
	for id := range c.protos {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Catalog) Describe(id uint32) (string, string, []byte, bool) {
	p, ok := c.protos[id]
	if !ok {
		return "", "", nil, false
	}
	return p.Name, p.Type, p.Data, true
}

func (c *Catalog) Recipe(id uint32) (model.RecipeInfo, bool) {
	r, ok := c.recipes[id]
	return r, ok
}

// World holds the latest game_state frame.
type World struct {
	entities []model.Entity
	orders   map[uint32]int
}

// Update replaces the snapshot with a new frame.
func (w *World) Update(gs GameStateMessage) {
	w.entities = make([]model.Entity, len(gs.Entities))
	for i, d := range gs.Entities {
		w.entities[i] = d.Entity()
	}
	w.orders = gs.Orders
}

func (w *World) Entities() []model.Entity { return w.entities }

func (w *World) OrderCount(id uint32) int { return w.orders[id] }
