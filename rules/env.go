package rules

import (
	"github.com/nstehr/talos/host"
	"github.com/nstehr/talos/inventory"
	"github.com/nstehr/talos/placement"
)

// Env wraps the inventory snapshot and exposes helper methods callable from
// expr conditions. Conditions only read; actions use Placer and Commands.
type Env struct {
	Tick     int
	Inv      *inventory.Inventory
	Placer   *placement.Engine
	Commands host.Commands
}

// HasAtLeast checks one inventory collection by kind name
// ("structure", "construction", "role", "extraction", "deposit").
func (e Env) HasAtLeast(kind, name string, n int) bool {
	k, err := inventory.ParseKind(kind)
	if err != nil {
		return false
	}
	return e.Inv.HasAtLeast(k, name, n)
}

func (e Env) Built(name string) int {
	return e.Inv.Count(inventory.KindStructure, name)
}

// Total counts built structures plus constructions in progress, including
// sites ordered since the last refresh.
func (e Env) Total(name string) int {
	return e.Built(name) + e.Inv.Count(inventory.KindConstruction, name)
}

func (e Env) Lacks(name string, n int) bool {
	return e.Inv.Lacks(name, n)
}

func (e Env) HasConstructionOrBuilt(name string, n int) bool {
	return e.Inv.HasConstructionOrBuilt(name, n)
}

func (e Env) ResourceAtLeast(name string, amount int) bool {
	return e.Inv.HasResourceAtLeast(name, amount)
}

func (e Env) HasRole(role string, n int) bool {
	return e.Inv.HasRole(role, n)
}

// Extractors counts extraction sites working a resource. Deposits occupied by
// an extractor that has no recipe yet still count.
func (e Env) Extractors(resource string) int {
	claimed := e.Inv.Count(inventory.KindDeposit, resource) - e.UnclaimedDeposits(resource)
	return max(claimed, e.Inv.Count(inventory.KindExtraction, resource))
}

func (e Env) UnclaimedDeposits(resource string) int {
	return len(e.Inv.UnclaimedDeposits(resource, placement.ExtractorFor(resource)))
}

func (e Env) HasMain() bool {
	return e.Inv.Main != nil
}

func (e Env) Resource(name string) int {
	return e.Inv.Resources[name]
}
