package combat

import (
	"math/rand"
	"testing"

	"github.com/nstehr/talos/config"
	"github.com/nstehr/talos/host/hosttest"
	"github.com/nstehr/talos/inventory"
	"github.com/nstehr/talos/model"
)

func testConfig() config.Combat {
	c := config.Default().Combat
	c.SettleTicks = 0
	c.ScatterChance = 0
	c.RegroupScatterChance = 0
	return c
}

func unit(id uint32, x, y int) model.Entity {
	return model.Entity{ID: id, Owned: true, Policy: model.PolicySelf, Tags: model.TagUnit, Pos: model.Position{X: x, Y: y}}
}

func hostile(id uint32, x, y int) model.Entity {
	return model.Entity{ID: id, Policy: model.PolicyEnemy, Tags: model.TagUnit, Pos: model.Position{X: x, Y: y}}
}

func setup(cfg config.Combat) (*Director, *inventory.Inventory, *hosttest.World, *hosttest.Commands) {
	world := &hosttest.World{Orders: map[uint32]int{}}
	cmds := &hosttest.Commands{}
	d := NewDirector(world, &hosttest.Spatial{}, cmds, rand.New(rand.NewSource(1)), cfg)
	inv := inventory.New()
	inv.Main = &model.Entity{ID: 1, Owned: true, Pos: model.Position{X: 100, Y: 100}}
	inv.Combat = []model.Entity{unit(10, 110, 100), unit(11, 90, 100), unit(12, 100, 120)}
	return d, inv, world, cmds
}

func TestRegroupWhenNoThreat(t *testing.T) {
	d, inv, world, cmds := setup(testConfig())
	world.Orders[12] = 2 // busy
	inv.Hostiles = []model.Entity{hostile(50, 500, 500)}

	if got := d.Direct(inv, 5000); got != ModeRegroup {
		t.Fatalf("mode = %s, want regroup", got)
	}
	if n := len(cmds.OfKind(hosttest.Fight)); n != 0 {
		t.Errorf("issued %d fight orders while regrouping", n)
	}
	moves := cmds.OfKind(hosttest.Move)
	if len(moves) != 2 {
		t.Fatalf("moves = %+v, want the two idle units", moves)
	}
	for _, m := range moves {
		if m.Pos != inv.Main.Pos {
			t.Errorf("unit %d sent to %v, want main", m.ID, m.Pos)
		}
		if m.ID == 12 {
			t.Error("busy unit was regrouped")
		}
	}
}

func TestRegroupNeverFightsAcrossSeeds(t *testing.T) {
	cfg := config.Default().Combat
	cfg.SettleTicks = 0
	cfg.ScatterChance = 0
	for seed := int64(0); seed < 50; seed++ {
		d, inv, _, cmds := setup(cfg)
		d.rng = rand.New(rand.NewSource(seed))
		d.Direct(inv, 5000)
		if n := len(cmds.OfKind(hosttest.Fight)); n != 0 {
			t.Fatalf("seed %d: %d fight orders with no hostiles", seed, n)
		}
	}
}

func TestEngageNearestToMain(t *testing.T) {
	d, inv, _, cmds := setup(testConfig())
	inv.Hostiles = []model.Entity{hostile(51, 140, 100), hostile(50, 120, 100), hostile(52, 80, 100)}

	if got := d.Direct(inv, 5000); got != ModeEngage {
		t.Fatalf("mode = %s, want engage", got)
	}
	fights := cmds.OfKind(hosttest.Fight)
	if len(fights) != 3 {
		t.Fatalf("fights = %+v", fights)
	}
	// 50 and 52 are both 20 from main; the lower id wins.
	for _, f := range fights {
		if f.Target != 50 {
			t.Errorf("unit %d targets %d, want 50", f.ID, f.Target)
		}
	}
}

func TestEngageNearestToSelf(t *testing.T) {
	cfg := testConfig()
	cfg.TargetNearestToSelf = true
	d, inv, _, cmds := setup(cfg)
	inv.Hostiles = []model.Entity{hostile(50, 120, 100), hostile(52, 80, 100)}

	d.Direct(inv, 5000)
	want := map[uint32]uint32{10: 50, 11: 52}
	for _, f := range cmds.OfKind(hosttest.Fight) {
		if w, ok := want[f.ID]; ok && f.Target != w {
			t.Errorf("unit %d targets %d, want %d", f.ID, f.Target, w)
		}
	}
}

func TestEngageSkipsBusyUnlessRetargeting(t *testing.T) {
	for _, always := range []bool{false, true} {
		cfg := testConfig()
		cfg.AlwaysRetarget = always
		d, inv, world, cmds := setup(cfg)
		world.Orders[10] = 1
		inv.Hostiles = []model.Entity{hostile(50, 120, 100)}

		d.Direct(inv, 5000)
		want := 2
		if always {
			want = 3
		}
		if n := len(cmds.OfKind(hosttest.Fight)); n != want {
			t.Errorf("always=%v: %d fights, want %d", always, n, want)
		}
	}
}

func TestAggressionWidensRadius(t *testing.T) {
	d, inv, _, cmds := setup(testConfig())
	inv.Hostiles = []model.Entity{hostile(50, 300, 100)} // 200 from main

	if got := d.Direct(inv, 5000); got != ModeRegroup {
		t.Fatalf("without heavies: mode = %s, want regroup", got)
	}

	cmds.Reset()
	for i := 0; i < 6; i++ {
		inv.Roles["heavy-a"] = append(inv.Roles["heavy-a"], unit(uint32(60+i), 100, 100))
	}
	if !d.Aggressive(inv) {
		t.Fatal("six heavies should be aggressive")
	}
	if got := d.Direct(inv, 5000); got != ModeEngage {
		t.Errorf("with heavies: mode = %s, want engage", got)
	}
}

func TestSettleWindowForcesScatter(t *testing.T) {
	cfg := testConfig()
	cfg.SettleTicks = 3000
	d, inv, _, cmds := setup(cfg)
	inv.Hostiles = []model.Entity{hostile(50, 110, 100)}

	if got := d.Direct(inv, 2500); got != ModeScatter {
		t.Fatalf("mode = %s, want scatter", got)
	}
	if n := len(cmds.OfKind(hosttest.Fight)); n != 0 {
		t.Errorf("%d fights during settle window", n)
	}
	moves := cmds.OfKind(hosttest.Move)
	if len(moves) != len(inv.Combat) {
		t.Fatalf("moves = %d, want %d", len(moves), len(inv.Combat))
	}
	for i, m := range moves {
		if m.Pos.Dist(inv.Combat[i].Pos) > cfg.ScatterRadius {
			t.Errorf("unit %d scattered to %v, beyond radius", m.ID, m.Pos)
		}
	}
}

func TestIdleWithoutMainOrUnits(t *testing.T) {
	d, inv, _, cmds := setup(testConfig())
	inv.Main = nil
	if got := d.Direct(inv, 5000); got != ModeIdle {
		t.Errorf("no main: mode = %s", got)
	}
	_, inv2, _, _ := setup(testConfig())
	inv2.Combat = nil
	if got := d.Direct(inv2, 5000); got != ModeIdle {
		t.Errorf("no units: mode = %s", got)
	}
	if len(cmds.Log) != 0 {
		t.Errorf("issued %d commands", len(cmds.Log))
	}
}
