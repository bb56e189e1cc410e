// Package recipes picks production recipes for owned structures.
package recipes

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/nstehr/talos/config"
	"github.com/nstehr/talos/host"
	"github.com/nstehr/talos/inventory"
	"github.com/nstehr/talos/model"
)

// AnyDeposit in a table row matches a deposit of any resource.
const AnyDeposit = "deposit"

// Catalog resolves prototypes and recipes.
type Catalog interface {
	Lookup(id uint32) (model.PrototypeInfo, bool)
	Recipe(id uint32) (model.RecipeInfo, bool)
}

// Assigner walks the production structures and sets recipes.
type Assigner struct {
	spatial  host.Spatial
	catalog  Catalog
	commands host.Commands
	table    map[string][]config.RecipeChoice
	allow    []string
}

func NewAssigner(spatial host.Spatial, catalog Catalog, commands host.Commands, cfg config.Recipes) *Assigner {
	return &Assigner{
		spatial:  spatial,
		catalog:  catalog,
		commands: commands,
		table:    cfg.Table,
		allow:    cfg.AllowList,
	}
}

// Assign issues a set-recipe order for every structure whose chosen recipe
// differs from its current one. It returns the number of orders issued.
func (a *Assigner) Assign(inv *inventory.Inventory) int {
	names := make([]string, 0, len(inv.Structures))
	for name := range inv.Structures {
		names = append(names, name)
	}
	sort.Strings(names)

	issued := 0
	for _, name := range names {
		for _, e := range inv.Structures[name] {
			proto, ok := a.catalog.Lookup(e.Proto)
			if !ok || len(proto.Descriptor.Recipes) == 0 {
				continue
			}
			recipe, ok := a.Choose(e, proto)
			if !ok {
				continue
			}
			if current, has := e.Recipe(); has && current == recipe {
				continue
			}
			if err := a.commands.SetRecipe(e.ID, recipe); err != nil {
				slog.Warn("set recipe failed", "id", e.ID, "structure", name, "error", err)
				continue
			}
			slog.Debug("recipe set", "id", e.ID, "structure", name, "recipe", recipe)
			issued++
		}
	}
	return issued
}

// Choose runs the structure's table rows in order, then falls back to the
// first allowed recipe that appears in the allow-list.
func (a *Assigner) Choose(e model.Entity, proto model.PrototypeInfo) (uint32, bool) {
	allowed := proto.Descriptor.Recipes
	for _, row := range a.table[proto.Name] {
		if id, ok := a.chooseRow(e, allowed, row); ok {
			return id, true
		}
	}
	for _, id := range allowed {
		r, ok := a.catalog.Recipe(id)
		if ok && slices.Contains(a.allow, r.Name) {
			return id, true
		}
	}
	return 0, false
}

func (a *Assigner) chooseRow(e model.Entity, allowed []uint32, row config.RecipeChoice) (uint32, bool) {
	want := row.Recipe
	if row.Near != "" {
		neighbor, ok := a.near(e, row.Near, row.Radius)
		if !ok {
			return 0, false
		}
		if want == "" {
			res, ok := neighbor.DepositResource()
			if !ok {
				return 0, false
			}
			return a.producing(allowed, res)
		}
	}
	if want == "" {
		return 0, false
	}
	for _, id := range allowed {
		if r, ok := a.catalog.Recipe(id); ok && r.Name == want {
			return id, true
		}
	}
	return 0, false
}

// producing finds the allowed recipe whose output is resource.
func (a *Assigner) producing(allowed []uint32, resource string) (uint32, bool) {
	for _, id := range allowed {
		if r, ok := a.catalog.Recipe(id); ok && r.ResourceName() == resource {
			return id, true
		}
	}
	return 0, false
}

// near reports the first entity named name within radius of e, nearest
// tiles first.
func (a *Assigner) near(e model.Entity, name string, radius float64) (model.PrototypeInfo, bool) {
	tiles := a.spatial.Neighbors(e.Pos, radius)
	sort.SliceStable(tiles, func(i, j int) bool {
		return a.spatial.Distance(e.Pos, tiles[i]) < a.spatial.Distance(e.Pos, tiles[j])
	})
	for _, p := range tiles {
		for _, other := range a.spatial.EntitiesAt(p) {
			if other.ID == e.ID {
				continue
			}
			proto, ok := a.catalog.Lookup(other.Proto)
			if !ok {
				continue
			}
			if proto.Name == name {
				return proto, true
			}
			if _, dep := proto.DepositResource(); dep && name == AnyDeposit {
				return proto, true
			}
		}
	}
	return model.PrototypeInfo{}, false
}
