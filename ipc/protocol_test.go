package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net"
	"testing"

	"github.com/nstehr/talos/model"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	for tick := 0; tick < 3; tick++ {
		env, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", Tick: tick})
		if err != nil {
			t.Fatal(err)
		}
		if err := WriteEnvelope(&buf, env); err != nil {
			t.Fatal(err)
		}
	}
	for tick := 0; tick < 3; tick++ {
		env, err := ReadEnvelope(&buf)
		if err != nil {
			t.Fatalf("frame %d: %v", tick, err)
		}
		var ack AckMessage
		if err := json.Unmarshal(env.Data, &ack); err != nil {
			t.Fatal(err)
		}
		if env.Type != TypeAck || ack.Tick != tick {
			t.Errorf("frame %d = %s %+v", tick, env.Type, ack)
		}
	}
}

func TestReadEnvelopeRejectsBadLength(t *testing.T) {
	for _, n := range []uint32{0, MaxFrame + 1} {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, n)
		if _, err := ReadEnvelope(&buf); err == nil {
			t.Errorf("length %d accepted", n)
		}
	}
}

func TestReadEnvelopeTruncated(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(50))
	buf.WriteString(`{"type":"ack"`)
	if _, err := ReadEnvelope(&buf); err == nil {
		t.Error("truncated payload accepted")
	}
}

func TestEntityDataTags(t *testing.T) {
	recipe, amount := uint32(9), 40
	d := EntityData{ID: 3, X: 1, Y: 2, Owned: true, Policy: "self", Proto: 7, Unit: true, Recipe: &recipe, Amount: &amount}
	e := d.Entity()
	if !e.Has(model.TagUnit) || e.Has(model.TagConstruction) {
		t.Errorf("tags = %b", e.Tags)
	}
	if r, ok := e.Recipe(); !ok || r != 9 {
		t.Errorf("Recipe() = %d, %v", r, ok)
	}
	if a, ok := e.Amount(); !ok || a != 40 {
		t.Errorf("Amount() = %d, %v", a, ok)
	}

	bare := EntityData{ID: 4, Policy: "enemy"}.Entity()
	if _, ok := bare.Recipe(); ok {
		t.Error("entity without recipe reports one")
	}
	if !bare.Hostile() {
		t.Error("enemy entity should be hostile")
	}
}

func TestGameStateOrdersDecode(t *testing.T) {
	raw := `{"tick":5,"simulating":true,"entities":[{"id":1,"x":3,"y":4,"proto":2,"unit":true}],"orders":{"1":2}}`
	var gs GameStateMessage
	if err := json.Unmarshal([]byte(raw), &gs); err != nil {
		t.Fatal(err)
	}
	var w World
	w.Update(gs)
	if len(w.Entities()) != 1 || w.Entities()[0].Pos != (model.Position{X: 3, Y: 4}) {
		t.Errorf("entities = %+v", w.Entities())
	}
	if w.OrderCount(1) != 2 || w.OrderCount(99) != 0 {
		t.Errorf("order counts = %d, %d", w.OrderCount(1), w.OrderCount(99))
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(HelloMessage{
		Prototypes: []PrototypeData{
			{ID: 20, Name: "drill", Type: "Prototype.Construction"},
			{ID: 10, Name: "nucleus", Type: "Prototype.Unit", Data: json.RawMessage(`{"buildRadius":6}`)},
		},
		Recipes: []RecipeData{{ID: 5, Name: "metal", Outputs: []string{"metal"}}},
	})
	if ids := c.All(); len(ids) != 2 || ids[0] != 10 || ids[1] != 20 {
		t.Errorf("All() = %v", ids)
	}
	name, typ, blob, ok := c.Describe(10)
	if !ok || name != "nucleus" || typ != "Prototype.Unit" || string(blob) != `{"buildRadius":6}` {
		t.Errorf("Describe(10) = %q %q %s %v", name, typ, blob, ok)
	}
	if r, ok := c.Recipe(5); !ok || r.ResourceName() != "metal" {
		t.Errorf("Recipe(5) = %+v, %v", r, ok)
	}
}

func TestCommanderFrames(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewCommander(&bufferSender{&buf})
	if err := cmd.PlaceConstruction(4, model.Position{X: 7, Y: 8}); err != nil {
		t.Fatal(err)
	}
	if err := cmd.FightEntity(1, 2); err != nil {
		t.Fatal(err)
	}

	env, _ := ReadEnvelope(&buf)
	var place PlaceConstructionCommand
	json.Unmarshal(env.Data, &place)
	if env.Type != TypePlaceConstruction || place != (PlaceConstructionCommand{Construction: 4, X: 7, Y: 8}) {
		t.Errorf("first frame = %s %+v", env.Type, place)
	}
	env, _ = ReadEnvelope(&buf)
	if env.Type != TypeFightEntity {
		t.Errorf("second frame = %s", env.Type)
	}
	if cmd.Sent != 2 {
		t.Errorf("Sent = %d", cmd.Sent)
	}
}

func TestReadLoopReplies(t *testing.T) {
	server, client := net.Pipe()
	conn := NewConnection(server, map[string]Handler{
		TypeHello: func(env Envelope) (*Envelope, error) {
			ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
			return &ack, err
		},
	})
	done := make(chan struct{})
	go func() {
		conn.ReadLoop()
		close(done)
	}()

	hello, _ := NewEnvelope(TypeHello, HelloMessage{Player: "p1"})
	go WriteEnvelope(client, hello)
	env, err := ReadEnvelope(client)
	if err != nil {
		t.Fatal(err)
	}
	if env.Type != TypeAck {
		t.Errorf("reply type = %s", env.Type)
	}
	client.Close()
	<-done
}

type bufferSender struct{ buf *bytes.Buffer }

func (b *bufferSender) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return WriteEnvelope(b.buf, env)
}
