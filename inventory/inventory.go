// Package inventory holds the bot's view of its own assets, rebuilt from the
// world on every refresh.
package inventory

import (
	"slices"

	"github.com/nstehr/talos/model"
)

// Inventory is a point-in-time snapshot. Everything except the main structure
// and the deposit cache is replaced wholesale by Refresh.
type Inventory struct {
	Structures        map[string][]model.Entity   // discovery order
	UnderConstruction map[string][]model.Entity
	Extraction        map[string][]model.Position // keyed by resource worked
	Deposits          map[string][]model.Entity   // nearest to main first
	Resources         map[string]int
	Roles             map[string][]model.Entity
	Combat            []model.Entity // owned units with an offensive rating
	Hostiles          []model.Entity
	Main              *model.Entity
	EnemyMains        []model.Entity

	// Placed records sites ordered since the last refresh so the next
	// evaluation sees them before the host reports the construction.
	Placed map[string][]model.Position

	depositsSorted bool
	depositIDs     map[uint32]bool
}

func New() *Inventory {
	inv := &Inventory{
		Deposits:   make(map[string][]model.Entity),
		depositIDs: make(map[uint32]bool),
	}
	inv.reset()
	return inv
}

func (inv *Inventory) reset() {
	inv.Structures = make(map[string][]model.Entity)
	inv.UnderConstruction = make(map[string][]model.Entity)
	inv.Extraction = make(map[string][]model.Position)
	inv.Resources = make(map[string]int)
	inv.Roles = make(map[string][]model.Entity)
	inv.Placed = make(map[string][]model.Position)
	inv.Combat = nil
	inv.Hostiles = nil
	inv.EnemyMains = nil
}

// MainPos returns the main structure's position.
func (inv *Inventory) MainPos() (model.Position, bool) {
	if inv.Main == nil {
		return model.Position{}, false
	}
	return inv.Main.Pos, true
}

// RecordPlacement books a site optimistically under the construction's name.
func (inv *Inventory) RecordPlacement(name string, at model.Position) {
	inv.Placed[name] = append(inv.Placed[name], at)
}

// RecordExtraction books an extraction site for a resource.
func (inv *Inventory) RecordExtraction(resource string, at model.Position) {
	inv.Extraction[resource] = append(inv.Extraction[resource], at)
}

// Remove drops a structure from the snapshot after it was ordered destroyed.
// The next refresh would drop it anyway.
func (inv *Inventory) Remove(name string, id uint32) {
	inv.Structures[name] = slices.DeleteFunc(inv.Structures[name], func(e model.Entity) bool {
		return e.ID == id
	})
}

func positions(es []model.Entity) []model.Position {
	out := make([]model.Position, len(es))
	for i, e := range es {
		out[i] = e.Pos
	}
	return out
}
