// Package combat orders the bot's fighting units each combat window.
package combat

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/nstehr/talos/config"
	"github.com/nstehr/talos/host"
	"github.com/nstehr/talos/inventory"
	"github.com/nstehr/talos/model"
)

// Mode is what the director decided for one window.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeScatter Mode = "scatter"
	ModeRegroup Mode = "regroup"
	ModeEngage  Mode = "engage"
)

type Director struct {
	world    host.World
	spatial  host.Spatial
	commands host.Commands
	rng      *rand.Rand
	cfg      config.Combat
}

func NewDirector(world host.World, spatial host.Spatial, commands host.Commands, rng *rand.Rand, cfg config.Combat) *Director {
	return &Director{world: world, spatial: spatial, commands: commands, rng: rng, cfg: cfg}
}

// Direct runs one combat window.
func (d *Director) Direct(inv *inventory.Inventory, tick int) Mode {
	main, ok := inv.MainPos()
	if !ok || len(inv.Combat) == 0 {
		return ModeIdle
	}

	if tick < d.cfg.SettleTicks || d.rng.Float64() < d.cfg.ScatterChance {
		d.scatter(inv.Combat)
		return ModeScatter
	}

	radius := d.cfg.EngageRadius
	if d.Aggressive(inv) {
		radius = d.cfg.AggressiveRadius
	}
	hostiles := inv.HostilesWithin(main, radius)
	if len(hostiles) == 0 {
		if d.rng.Float64() < d.cfg.RegroupScatterChance {
			d.scatter(inv.Combat)
			return ModeScatter
		}
		d.regroup(inv.Combat, main)
		return ModeRegroup
	}

	d.engage(inv.Combat, hostiles, main)
	return ModeEngage
}

// Aggressive reports whether every configured role minimum is met.
func (d *Director) Aggressive(inv *inventory.Inventory) bool {
	if len(d.cfg.AggressionRoles) == 0 {
		return false
	}
	for role, n := range d.cfg.AggressionRoles {
		if !inv.HasRole(role, n) {
			return false
		}
	}
	return true
}

func (d *Director) idle(u model.Entity) bool {
	return d.world.OrderCount(u.ID) == 0
}

// scatter sends every unit to a random tile around itself.
func (d *Director) scatter(units []model.Entity) {
	for _, u := range units {
		tiles := d.spatial.Neighbors(u.Pos, d.cfg.ScatterRadius)
		if len(tiles) == 0 {
			continue
		}
		to := tiles[d.rng.Intn(len(tiles))]
		if err := d.commands.MoveTo(u.ID, to); err != nil {
			slog.Warn("scatter order failed", "unit", u.ID, "error", err)
		}
	}
	slog.Debug("units scattering", "count", len(units))
}

func (d *Director) regroup(units []model.Entity, main model.Position) {
	n := 0
	for _, u := range units {
		if !d.idle(u) {
			continue
		}
		if err := d.commands.MoveTo(u.ID, main); err != nil {
			slog.Warn("regroup order failed", "unit", u.ID, "error", err)
			continue
		}
		n++
	}
	slog.Debug("units regrouping", "count", n)
}

func (d *Director) engage(units, hostiles []model.Entity, main model.Position) {
	n := 0
	for _, u := range units {
		if !d.cfg.AlwaysRetarget && !d.idle(u) {
			continue
		}
		from := main
		if d.cfg.TargetNearestToSelf {
			from = u.Pos
		}
		target := d.nearest(hostiles, from)
		if err := d.commands.FightEntity(u.ID, target.ID); err != nil {
			slog.Warn("fight order failed", "unit", u.ID, "target", target.ID, "error", err)
			continue
		}
		n++
	}
	slog.Info("engaging hostiles", "units", n, "hostiles", len(hostiles))
}

// nearest returns the hostile closest to from, ties broken by id.
func (d *Director) nearest(hostiles []model.Entity, from model.Position) model.Entity {
	sorted := append([]model.Entity(nil), hostiles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := d.spatial.Distance(from, sorted[i].Pos), d.spatial.Distance(from, sorted[j].Pos)
		if di != dj {
			return di < dj
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0]
}
