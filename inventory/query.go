package inventory

import (
	"fmt"

	"github.com/nstehr/talos/model"
)

// Kind selects one Inventory collection for counting queries.
type Kind int

const (
	KindStructure Kind = iota
	KindConstruction
	KindRole
	KindExtraction
	KindDeposit
)

// ParseKind maps a rule-table name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "structure":
		return KindStructure, nil
	case "construction":
		return KindConstruction, nil
	case "role":
		return KindRole, nil
	case "extraction":
		return KindExtraction, nil
	case "deposit":
		return KindDeposit, nil
	}
	return 0, fmt.Errorf("unknown inventory kind %q", s)
}

// The queries below are pure functions of the snapshot.

func (inv *Inventory) Count(k Kind, name string) int {
	switch k {
	case KindStructure:
		return len(inv.Structures[name])
	case KindConstruction:
		return len(inv.UnderConstruction[name]) + len(inv.Placed[name])
	case KindRole:
		return len(inv.Roles[name])
	case KindExtraction:
		return len(inv.Extraction[name])
	case KindDeposit:
		return len(inv.Deposits[name])
	}
	return 0
}

func (inv *Inventory) HasAtLeast(k Kind, name string, n int) bool {
	return inv.Count(k, name) >= n
}

// HasConstructionOrBuilt counts built plus in-progress (including sites
// ordered since the last refresh).
func (inv *Inventory) HasConstructionOrBuilt(name string, n int) bool {
	return inv.Count(KindStructure, name)+inv.Count(KindConstruction, name) >= n
}

// Lacks gates "should build" decisions.
func (inv *Inventory) Lacks(name string, n int) bool {
	return !inv.HasConstructionOrBuilt(name, n)
}

func (inv *Inventory) HasResourceAtLeast(name string, amount int) bool {
	return inv.Resources[name] >= amount
}

func (inv *Inventory) HasRole(role string, n int) bool {
	return len(inv.Roles[role]) >= n
}

// Positions lists the positions of one collection.
func (inv *Inventory) Positions(k Kind, name string) []model.Position {
	switch k {
	case KindStructure:
		return positions(inv.Structures[name])
	case KindConstruction:
		out := positions(inv.UnderConstruction[name])
		return append(out, inv.Placed[name]...)
	case KindRole:
		return positions(inv.Roles[name])
	case KindExtraction:
		return append([]model.Position(nil), inv.Extraction[name]...)
	case KindDeposit:
		return positions(inv.Deposits[name])
	}
	return nil
}

// claimRadius is how close an extractor must be to a deposit to claim it.
const claimRadius = 1.5

// UnclaimedDeposits returns deposits of a resource with no extraction
// structure of the given kind on or next to them, nearest first.
func (inv *Inventory) UnclaimedDeposits(resource, extractor string) []model.Entity {
	claimed := inv.Positions(KindExtraction, resource)
	claimed = append(claimed, inv.Positions(KindStructure, extractor)...)
	claimed = append(claimed, inv.Positions(KindConstruction, extractor)...)

	var out []model.Entity
	for _, d := range inv.Deposits[resource] {
		taken := false
		for _, p := range claimed {
			if d.Pos.Dist(p) <= claimRadius {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, d)
		}
	}
	return out
}

// HostilesWithin returns hostile units within radius of p.
func (inv *Inventory) HostilesWithin(p model.Position, radius float64) []model.Entity {
	var out []model.Entity
	for _, h := range inv.Hostiles {
		if h.Pos.Dist(p) <= radius {
			out = append(out, h)
		}
	}
	return out
}
