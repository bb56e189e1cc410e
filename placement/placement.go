// Package placement chooses construction sites.
package placement

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/nstehr/talos/host"
	"github.com/nstehr/talos/inventory"
	"github.com/nstehr/talos/model"
)

var (
	ErrNoAnchor            = errors.New("no anchor and no main structure")
	ErrUnknownConstruction = errors.New("unknown construction")
	ErrNoPlacement         = errors.New("no valid placement")
	ErrNoCandidates        = errors.New("no frontier candidates")
	ErrNoDeposit           = errors.New("no unclaimed deposit")
)

// Constructions resolves construction names to prototype ids.
type Constructions interface {
	ConstructionID(name string) (uint32, bool)
}

type Config struct {
	FrontierRadius     float64
	FrontierCandidates int
	DangerRadius       float64
	SafetyBuffer       float64
}

// Engine sites structures and issues the placement orders.
type Engine struct {
	spatial       host.Spatial
	commands      host.Commands
	constructions Constructions
	rng           *rand.Rand
	cfg           Config
}

func New(spatial host.Spatial, commands host.Commands, constructions Constructions, rng *rand.Rand, cfg Config) *Engine {
	return &Engine{
		spatial:       spatial,
		commands:      commands,
		constructions: constructions,
		rng:           rng,
		cfg:           cfg,
	}
}

// ExtractorFor names the extraction structure that works a resource.
func ExtractorFor(resource string) string {
	switch resource {
	case "metal", "crystals":
		return "drill"
	}
	return "pump"
}

// Anchors lists candidate anchor positions for a category, from the first
// non-empty source: built structures, constructions in progress, extraction
// sites, then raw deposits.
func Anchors(inv *inventory.Inventory, category string) []model.Position {
	for _, k := range []inventory.Kind{
		inventory.KindStructure,
		inventory.KindConstruction,
		inventory.KindExtraction,
		inventory.KindDeposit,
	} {
		if ps := inv.Positions(k, category); len(ps) > 0 {
			return ps
		}
	}
	return nil
}

// ResolveAnchor picks anchors[index]. Out-of-range indexes and empty
// categories degrade to the main structure.
func ResolveAnchor(inv *inventory.Inventory, category string, index int) (model.Position, error) {
	anchors := Anchors(inv, category)
	if index >= 0 && index < len(anchors) {
		return anchors[index], nil
	}
	if main, ok := inv.MainPos(); ok {
		return main, nil
	}
	return model.Position{}, fmt.Errorf("%w: %q", ErrNoAnchor, category)
}

// PlaceNear sites a construction next to the index-th anchor of a category.
func (e *Engine) PlaceNear(inv *inventory.Inventory, kind, category string, index int) (model.Position, error) {
	anchor, err := ResolveAnchor(inv, category, index)
	if err != nil {
		return model.Position{}, err
	}
	slog.Debug("placing near anchor", "kind", kind, "anchor", category, "index", index, "x", anchor.X, "y", anchor.Y)
	return e.place(inv, kind, anchor)
}

// PlaceExtractor sites the resource's extraction structure on the nearest
// unclaimed deposit.
func (e *Engine) PlaceExtractor(inv *inventory.Inventory, resource string) (model.Position, error) {
	kind := ExtractorFor(resource)
	free := inv.UnclaimedDeposits(resource, kind)
	if len(free) == 0 {
		return model.Position{}, fmt.Errorf("%w: %s", ErrNoDeposit, resource)
	}
	pos, err := e.place(inv, kind, free[0].Pos)
	if err != nil {
		return pos, err
	}
	inv.RecordExtraction(resource, pos)
	return pos, nil
}

// place asks the host for a valid site near ref, orders it, and books it.
func (e *Engine) place(inv *inventory.Inventory, kind string, ref model.Position) (model.Position, error) {
	id, ok := e.constructions.ConstructionID(kind)
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %q", ErrUnknownConstruction, kind)
	}
	pos, ok := e.spatial.FindPlacement(id, ref)
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %q near (%d,%d)", ErrNoPlacement, kind, ref.X, ref.Y)
	}
	if err := e.commands.PlaceConstruction(id, pos); err != nil {
		return model.Position{}, fmt.Errorf("place %q: %w", kind, err)
	}
	inv.RecordPlacement(kind, pos)
	slog.Info("construction placed", "kind", kind, "x", pos.X, "y", pos.Y)
	return pos, nil
}

// AcceptanceThreshold is the random draw a further candidate must beat.
// It is 0 with no existing structures and approaches 0.99 as they grow.
func AcceptanceThreshold(existing int) float64 {
	if existing < 0 {
		existing = 0
	}
	return 0.99 - 0.99/float64(existing+1)
}

// PlaceFrontier sites a defensive structure so the perimeter spreads out
// from the main structure. Under threat it sites towards the threat instead.
func (e *Engine) PlaceFrontier(inv *inventory.Inventory, kind string) (model.Position, error) {
	main, ok := inv.MainPos()
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %q", ErrNoAnchor, kind)
	}
	candidates := e.candidates(main)
	if len(candidates) == 0 {
		return model.Position{}, ErrNoCandidates
	}

	var site model.Position
	if threats := inv.HostilesWithin(main, e.cfg.DangerRadius); len(threats) > 0 {
		site = e.towardThreat(candidates, threats)
	} else {
		existing := inv.Positions(inventory.KindStructure, kind)
		existing = append(existing, inv.Positions(inventory.KindConstruction, kind)...)
		site = e.furthest(candidates, existing, main)
	}
	return e.place(inv, kind, site)
}

// candidates samples up to FrontierCandidates positions around center.
func (e *Engine) candidates(center model.Position) []model.Position {
	area := e.spatial.Neighbors(center, e.cfg.FrontierRadius)
	n := e.cfg.FrontierCandidates
	if n <= 0 || n >= len(area) {
		return area
	}
	out := make([]model.Position, len(area))
	copy(out, area)
	e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:n]
}

// furthest runs randomized furthest-point sampling. A candidate replaces the
// current best only when it is further from every existing structure and a
// random draw beats the acceptance threshold. With no acceptance a random
// candidate is used.
func (e *Engine) furthest(candidates, existing []model.Position, main model.Position) model.Position {
	threshold := AcceptanceThreshold(len(existing))
	fallback := candidates[e.rng.Intn(len(candidates))]

	best := -1
	bestDist := math.Inf(-1)
	for i, c := range candidates {
		d := e.minDist(c, existing, main)
		if d > bestDist && e.rng.Float64() >= threshold {
			best = i
			bestDist = d
		}
	}
	slog.Debug("frontier sampling", "existing", len(existing), "threshold", threshold, "accepted", best >= 0)
	if best < 0 {
		return fallback
	}
	return candidates[best]
}

// minDist is the distance from c to the closest existing structure. The
// first structure measures from the main structure instead.
func (e *Engine) minDist(c model.Position, existing []model.Position, main model.Position) float64 {
	if len(existing) == 0 {
		return e.spatial.Distance(c, main)
	}
	best := math.Inf(1)
	for _, p := range existing {
		best = min(best, e.spatial.Distance(c, p))
	}
	return best
}

// towardThreat picks the candidate nearest any threat while staying at least
// SafetyBuffer away from all of them.
func (e *Engine) towardThreat(candidates []model.Position, threats []model.Entity) model.Position {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		nearest := math.Inf(1)
		for _, t := range threats {
			nearest = min(nearest, e.spatial.Distance(c, t.Pos))
		}
		if nearest < e.cfg.SafetyBuffer {
			continue
		}
		if nearest < bestDist {
			best = i
			bestDist = nearest
		}
	}
	slog.Debug("threat siting", "threats", len(threats), "found", best >= 0)
	if best < 0 {
		return candidates[e.rng.Intn(len(candidates))]
	}
	return candidates[best]
}
