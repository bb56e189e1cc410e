package agent

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"github.com/nstehr/talos/combat"
	"github.com/nstehr/talos/config"
	"github.com/nstehr/talos/host"
	"github.com/nstehr/talos/inventory"
	"github.com/nstehr/talos/placement"
	"github.com/nstehr/talos/recipes"
	"github.com/nstehr/talos/registry"
	"github.com/nstehr/talos/rules"
	"github.com/nstehr/talos/trace"
)

// Host bundles the collaborators the engine consumes.
type Host struct {
	World    host.World
	Spatial  host.Spatial
	Commands host.Commands
}

// EngineState is everything carried from one tick to the next.
type EngineState struct {
	Tick     int
	Inv      *inventory.Inventory
	Registry *registry.Registry

	refreshedAt int
	prev        *stateSnapshot
	Events      []Event // detected on the latest refresh
	Faults      int     // ticks or phases that panicked
}

// Scheduler drives the decision cycle from the host's tick callback.
type Scheduler struct {
	cfg   config.Config
	host  Host
	state *EngineState

	indexer  *inventory.Indexer
	rules    *rules.Engine
	placer   *placement.Engine
	recipes  *recipes.Assigner
	director *combat.Director
	trace    trace.Recorder

	initLog rate.Sometimes
}

func NewScheduler(cfg config.Config, h Host, reg *registry.Registry, rng *rand.Rand, rec trace.Recorder) (*Scheduler, error) {
	engine, err := rules.NewEngine(rules.BuildOrder(rules.Settings{
		Home:        cfg.HomeStructure,
		Defense:     cfg.DefenseStructure,
		MaxDefenses: cfg.Placement.MaxDefenses,
	}))
	if err != nil {
		return nil, fmt.Errorf("build order: %w", err)
	}
	if rec == nil {
		rec = trace.Nop{}
	}
	return &Scheduler{
		cfg:  cfg,
		host: h,
		state: &EngineState{
			Inv:         inventory.New(),
			Registry:    reg,
			refreshedAt: -1,
		},
		indexer: inventory.NewIndexer(h.World, reg, h.Spatial, h.Commands, inventory.Roles(cfg.Roles), cfg.HomeStructure),
		rules:   engine,
		placer: placement.New(h.Spatial, h.Commands, reg, rng, placement.Config{
			FrontierRadius:     cfg.Placement.FrontierRadius,
			FrontierCandidates: cfg.Placement.FrontierCandidates,
			DangerRadius:       cfg.Placement.DangerRadius,
			SafetyBuffer:       cfg.Placement.SafetyBuffer,
		}),
		recipes:  recipes.NewAssigner(h.Spatial, reg, h.Commands, cfg.Recipes),
		director: combat.NewDirector(h.World, h.Spatial, h.Commands, rng, cfg.Combat),
		trace:    rec,
		initLog:  rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}, nil
}

func (s *Scheduler) State() *EngineState { return s.state }

// OnTick is the host's per-tick callback. A panic anywhere in the tick is
// logged and swallowed so the next tick runs normally.
func (s *Scheduler) OnTick(simulating bool) {
	if !simulating {
		return
	}
	s.state.Tick++
	tick := s.state.Tick

	defer func() {
		if r := recover(); r != nil {
			s.fault(tick, "tick", r)
		}
	}()

	if !s.ready(tick) {
		return
	}

	cad := s.cfg.Cadence
	if tick%cad.BuildEvery == cad.BuildOffset {
		s.runPhase(tick, "build", s.build)
	}
	if tick%cad.RecipesEvery == cad.RecipesOffset {
		s.runPhase(tick, "recipes", s.assignRecipes)
	}
	if tick >= cad.CombatStart && tick%cad.CombatEvery == cad.CombatOffset {
		s.runPhase(tick, "combat", s.fight)
	}
	if tick%cad.HeartbeatEvery == 0 {
		s.heartbeat(tick)
	}
}

// ready fills the registry during the init window and keeps retrying
// afterwards until the catalog is available.
func (s *Scheduler) ready(tick int) bool {
	reg := s.state.Registry
	if !reg.Ready() {
		if err := reg.Init(); err != nil {
			s.initLog.Do(func() {
				slog.Warn("prototype registry not ready", "tick", tick, "error", err)
			})
			return false
		}
	}
	return tick > s.cfg.Cadence.InitTicks
}

// runPhase refreshes the inventory at most once per tick, before the first
// phase that needs it, then runs the phase with its own fault isolation.
func (s *Scheduler) runPhase(tick int, phase string, fn func(tick int) trace.Record) {
	defer func() {
		if r := recover(); r != nil {
			s.fault(tick, phase, r)
		}
	}()
	s.refresh(tick)
	rec := fn(tick)
	rec.Tick = tick
	rec.Phase = phase
	s.record(rec)
}

func (s *Scheduler) refresh(tick int) {
	if s.state.refreshedAt == tick {
		return
	}
	s.indexer.Refresh(s.state.Inv)
	s.state.refreshedAt = tick

	s.state.Events = detectEvents(tick, s.state.Inv, s.state.prev)
	for _, e := range s.state.Events {
		slog.Warn("game event", "kind", e.Kind, "tick", e.Tick, "detail", e.Detail)
		s.record(trace.Record{Tick: tick, Phase: "event", Result: string(e.Kind)})
	}
	snap := takeSnapshot(s.state.Inv)
	s.state.prev = &snap

	s.record(trace.Record{Tick: tick, Phase: "refresh", Count: len(snap.structureIDs)})
}

func (s *Scheduler) build(tick int) trace.Record {
	fired := s.rules.Evaluate(rules.Env{
		Tick:     tick,
		Inv:      s.state.Inv,
		Placer:   s.placer,
		Commands: s.host.Commands,
	})
	return trace.Record{Result: fired}
}

func (s *Scheduler) assignRecipes(int) trace.Record {
	return trace.Record{Count: s.recipes.Assign(s.state.Inv)}
}

func (s *Scheduler) fight(tick int) trace.Record {
	mode := s.director.Direct(s.state.Inv, tick)
	return trace.Record{Result: string(mode), Count: len(s.state.Inv.Combat)}
}

func (s *Scheduler) heartbeat(tick int) {
	inv := s.state.Inv
	structures := 0
	for _, list := range inv.Structures {
		structures += len(list)
	}
	slog.Info("heartbeat",
		"tick", tick,
		"main", inv.Main != nil,
		"structures", structures,
		"combat", len(inv.Combat),
		"hostiles", len(inv.Hostiles),
		"faults", s.state.Faults,
	)
}

func (s *Scheduler) fault(tick int, phase string, r any) {
	s.state.Faults++
	slog.Error("tick failed", "tick", tick, "phase", phase, "panic", r, "stack", string(debug.Stack()))
	s.record(trace.Record{Tick: tick, Phase: phase, Error: fmt.Sprint(r)})
}

func (s *Scheduler) record(r trace.Record) {
	if err := s.trace.Write(r); err != nil {
		slog.Debug("trace write failed", "error", err)
	}
}
