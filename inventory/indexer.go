package inventory

import (
	"log/slog"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/nstehr/talos/host"
	"github.com/nstehr/talos/model"
)

// Catalog resolves prototypes and recipes for classification.
type Catalog interface {
	Lookup(id uint32) (model.PrototypeInfo, bool)
	Recipe(id uint32) (model.RecipeInfo, bool)
}

// Indexer rebuilds an Inventory from the visible world.
type Indexer struct {
	world    host.World
	catalog  Catalog
	spatial  host.Spatial
	commands host.Commands
	roles    Roles
	home     string

	unclassified rate.Sometimes
}

func NewIndexer(world host.World, catalog Catalog, spatial host.Spatial, commands host.Commands, roles Roles, home string) *Indexer {
	return &Indexer{
		world:        world,
		catalog:      catalog,
		spatial:      spatial,
		commands:     commands,
		roles:        roles,
		home:         home,
		unclassified: rate.Sometimes{First: 10, Interval: 30 * time.Second},
	}
}

// Refresh walks every visible entity once and repopulates inv. Disabled
// constructions are activated as a side effect.
func (ix *Indexer) Refresh(inv *Inventory) {
	inv.reset()

	for _, e := range ix.world.Entities() {
		proto, ok := ix.catalog.Lookup(e.Proto)
		if !ok {
			// Not synced yet.
			continue
		}
		if e.Hostile() && e.Has(model.TagUnit) {
			inv.Hostiles = append(inv.Hostiles, e)
		}

		if !e.Owned && proto.Name == ix.home {
			inv.EnemyMains = append(inv.EnemyMains, e)
			continue
		}
		if res, ok := proto.DepositResource(); ok && !e.Owned {
			inv.noteDeposit(res, e)
			continue
		}
		if !e.Owned {
			continue
		}

		if proto.Category == model.CategoryConstruction {
			inv.UnderConstruction[proto.Name] = append(inv.UnderConstruction[proto.Name], e)
			if !e.Has(model.TagDisabled) {
				continue
			}
			if err := ix.commands.SetPriority(e.ID, 1); err != nil {
				slog.Debug("activate construction failed", "id", e.ID, "name", proto.Name, "error", err)
			}
			continue
		}

		if proto.Category == model.CategoryResource {
			amount, _ := e.Amount()
			inv.Resources[proto.Name] += amount
			continue
		}

		if proto.Combatant() && e.Has(model.TagUnit) {
			inv.Combat = append(inv.Combat, e)
		}

		if role, ok := ix.roles.RoleOf(proto.Name); ok {
			inv.Roles[role] = append(inv.Roles[role], e)
			continue
		}

		if proto.Structure() {
			inv.Structures[proto.Name] = append(inv.Structures[proto.Name], e)
			if rid, ok := e.Recipe(); ok {
				if rec, ok := ix.catalog.Recipe(rid); ok {
					inv.RecordExtraction(rec.ResourceName(), e.Pos)
				}
			}
			if inv.Main == nil && proto.Name == ix.home {
				main := e
				inv.Main = &main
				slog.Info("main structure found", "id", e.ID, "x", e.Pos.X, "y", e.Pos.Y)
			}
			continue
		}

		ix.unclassified.Do(func() {
			slog.Debug("unclassified entity", "id", e.ID, "name", proto.Name, "category", proto.Category)
		})
	}

	ix.sortDeposits(inv)
}

func (inv *Inventory) noteDeposit(resource string, e model.Entity) {
	if inv.depositIDs[e.ID] {
		return
	}
	inv.depositIDs[e.ID] = true
	inv.Deposits[resource] = append(inv.Deposits[resource], e)
}

// sortDeposits orders deposits nearest-first the first time both deposits
// and the main structure are known. Later discoveries are appended unsorted.
func (ix *Indexer) sortDeposits(inv *Inventory) {
	if inv.depositsSorted || inv.Main == nil || len(inv.Deposits) == 0 {
		return
	}
	main := inv.Main.Pos
	for res, ds := range inv.Deposits {
		sort.SliceStable(ds, func(i, j int) bool {
			return ix.spatial.Distance(main, ds[i].Pos) < ix.spatial.Distance(main, ds[j].Pos)
		})
		slog.Debug("deposits sorted", "resource", res, "count", len(ds))
	}
	inv.depositsSorted = true
}
