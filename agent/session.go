package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/nstehr/talos/config"
	"github.com/nstehr/talos/ipc"
	"github.com/nstehr/talos/registry"
	"github.com/nstehr/talos/spatial"
	"github.com/nstehr/talos/trace"
)

// Session owns the decision-making for a single match.
type Session struct {
	ID     uuid.UUID
	Conn   *ipc.Connection
	Player string

	cfg     config.Config
	log     *slog.Logger
	world   *ipc.World
	spatial *spatial.Service
	sched   *Scheduler
	trace   trace.Recorder
}

func NewSession(conn *ipc.Connection, cfg config.Config) *Session {
	id := uuid.New()
	return &Session{
		ID:    id,
		Conn:  conn,
		cfg:   cfg,
		log:   slog.With("session", id.String()),
		world: &ipc.World{},
		trace: trace.Nop{},
	}
}

// HandleHello builds the match-wide collaborators from the catalog and
// terrain the bridge sends on connect.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	s.Player = hello.Player
	s.Conn.Player = hello.Player
	s.log = s.log.With("player", hello.Player)

	reg := registry.New(ipc.NewCatalog(hello))
	s.spatial = spatial.New(hello.Terrain.Grid(), reg)

	if s.cfg.TraceDir != "" {
		w, err := trace.Open(s.cfg.TraceDir, "talos-"+s.ID.String())
		if err != nil {
			s.log.Warn("decision trace disabled", "dir", s.cfg.TraceDir, "error", err)
		} else {
			s.trace = w
			s.log.Info("decision trace enabled", "path", w.Path())
		}
	}

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sched, err := NewScheduler(s.cfg, Host{
		World:    s.world,
		Spatial:  s.spatial,
		Commands: ipc.NewCommander(s.Conn),
	}, reg, rand.New(rand.NewSource(seed)), s.trace)
	if err != nil {
		return nil, err
	}
	s.sched = sched

	s.log.Info("player identified",
		"player", s.Player,
		"prototypes", len(hello.Prototypes),
		"recipes", len(hello.Recipes),
		"terrain", hello.Terrain != nil,
		"seed", seed,
	)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleGameState feeds one tick to the scheduler. Commands are sent while
// the tick runs; the ack closes the tick.
func (s *Session) HandleGameState(env ipc.Envelope) (*ipc.Envelope, error) {
	if s.sched == nil {
		return nil, fmt.Errorf("game_state before hello")
	}
	var gs ipc.GameStateMessage
	if err := json.Unmarshal(env.Data, &gs); err != nil {
		return nil, fmt.Errorf("unmarshal game_state: %w", err)
	}

	s.world.Update(gs)
	s.spatial.Update(s.world.Entities())
	s.sched.OnTick(gs.Simulating)

	s.log.Debug("game state handled",
		"host_tick", gs.Tick,
		"tick", s.sched.State().Tick,
		"entities", len(gs.Entities),
	)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Tick: gs.Tick})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// Close flushes the decision trace.
func (s *Session) Close() error {
	return s.trace.Close()
}
