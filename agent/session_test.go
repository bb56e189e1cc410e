package agent

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/nstehr/talos/config"
	"github.com/nstehr/talos/ipc"
)

// pipe is an in-memory connection that only collects what the bot writes.
type pipe struct{ out bytes.Buffer }

func (p *pipe) Read([]byte) (int, error)    { return 0, nil }
func (p *pipe) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *pipe) Close() error                { return nil }

func testHello() ipc.HelloMessage {
	return ipc.HelloMessage{
		Player: "p1",
		Terrain: &ipc.TerrainData{Width: 100, Height: 100, Tiles: make([]int, 100*100)},
		Prototypes: []ipc.PrototypeData{
			{ID: protoNucleus, Name: "nucleus", Type: "Prototype.Unit", Data: json.RawMessage(`{"buildRadius": 6, "radius": 2}`)},
			{ID: protoDrill, Name: "drill", Type: "Prototype.Unit", Data: json.RawMessage(`{"buildRadius": 1, "recipes": [100]}`)},
			{ID: protoDrillSite, Name: "drill", Type: "Prototype.Construction", Data: json.RawMessage(`{"radius": 0}`)},
			{ID: protoMetalDeposit, Name: "metal deposit", Type: "Prototype.Unit"},
		},
		Recipes: []ipc.RecipeData{{ID: 100, Name: "metal", Outputs: []string{"metal"}}},
	}
}

func testFrame(tick int) ipc.GameStateMessage {
	return ipc.GameStateMessage{
		Tick:       tick,
		Simulating: true,
		Entities: []ipc.EntityData{
			{ID: 1, X: 50, Y: 50, Owned: true, Policy: "self", Proto: protoNucleus, Unit: true},
			{ID: 2, X: 60, Y: 50, Policy: "neutral", Proto: protoMetalDeposit, Unit: true},
		},
	}
}

func envelope(t *testing.T, typ string, v any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(typ, v)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestSessionDrivesTicks(t *testing.T) {
	p := &pipe{}
	conn := ipc.NewConnection(p, nil)
	cfg := config.Default()
	cfg.Seed = 1
	cfg.TraceDir = filepath.Join(t.TempDir(), "trace")
	s := NewSession(conn, cfg)
	defer s.Close()

	ack, err := s.HandleHello(envelope(t, ipc.TypeHello, testHello()))
	if err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
	if ack.Type != ipc.TypeAck || conn.Player != "p1" {
		t.Errorf("hello reply %s, player %q", ack.Type, conn.Player)
	}

	for tick := 1; tick <= 20; tick++ {
		if _, err := s.HandleGameState(envelope(t, ipc.TypeGameState, testFrame(tick))); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
	}

	var places []ipc.PlaceConstructionCommand
	for p.out.Len() > 0 {
		env, err := ipc.ReadEnvelope(&p.out)
		if err != nil {
			t.Fatal(err)
		}
		if env.Type != ipc.TypePlaceConstruction {
			continue
		}
		var cmd ipc.PlaceConstructionCommand
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			t.Fatal(err)
		}
		places = append(places, cmd)
	}
	want := ipc.PlaceConstructionCommand{Construction: protoDrillSite, X: 60, Y: 50}
	if len(places) != 1 || places[0] != want {
		t.Errorf("placements = %+v, want %+v", places, want)
	}
}

func TestGameStateBeforeHello(t *testing.T) {
	s := NewSession(ipc.NewConnection(&pipe{}, nil), config.Default())
	if _, err := s.HandleGameState(envelope(t, ipc.TypeGameState, testFrame(1))); err == nil {
		t.Error("expected error for game_state before hello")
	}
}
