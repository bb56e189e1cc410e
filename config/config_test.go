package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talos.yaml")
	raw := `
log_level: debug
seed: 7
cadence:
  build_every: 5
  combat_start: 100
roles:
  worker: [harvester]
combat:
  aggression_roles:
    heavy-b: 3
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Seed != 7 || c.Level() != slog.LevelDebug {
		t.Errorf("seed/level not applied: %d %v", c.Seed, c.Level())
	}
	if c.Cadence.BuildEvery != 5 || c.Cadence.CombatStart != 100 {
		t.Errorf("cadence not applied: %+v", c.Cadence)
	}
	// Untouched keys keep their defaults.
	if c.Cadence.RecipesEvery != 10 || c.HomeStructure != "nucleus" {
		t.Errorf("defaults lost: %+v", c)
	}
	// Maps from the file replace the defaults.
	if len(c.Combat.AggressionRoles) != 1 || c.Combat.AggressionRoles["heavy-b"] != 3 {
		t.Errorf("aggression roles = %v", c.Combat.AggressionRoles)
	}
	if len(c.Roles) != 1 || len(c.Roles["worker"]) != 1 || c.Roles["worker"][0] != "harvester" {
		t.Errorf("roles = %v", c.Roles)
	}
	if len(c.Recipes.Table) != len(Default().Recipes.Table) {
		t.Errorf("recipe table without a file entry = %v", c.Recipes.Table)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("cadence: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateClamps(t *testing.T) {
	c := Default()
	c.Cadence.BuildEvery = 0
	c.Cadence.CombatOffset = 13
	c.Combat.ScatterChance = 4
	c.Combat.EngageRadius = 100
	c.Combat.AggressiveRadius = 10
	c.Placement.FrontierCandidates = -3
	c.Validate()

	if c.Cadence.BuildEvery != 1 {
		t.Errorf("BuildEvery = %d, want 1", c.Cadence.BuildEvery)
	}
	if c.Cadence.CombatOffset != 3 {
		t.Errorf("CombatOffset = %d, want 3", c.Cadence.CombatOffset)
	}
	if c.Combat.ScatterChance != 1 {
		t.Errorf("ScatterChance = %f, want 1", c.Combat.ScatterChance)
	}
	if c.Combat.AggressiveRadius != 100 {
		t.Errorf("AggressiveRadius = %f, want >= engage radius", c.Combat.AggressiveRadius)
	}
	if c.Placement.FrontierCandidates != 1 {
		t.Errorf("FrontierCandidates = %d, want 1", c.Placement.FrontierCandidates)
	}
}

func TestLevelDefault(t *testing.T) {
	c := Config{LogLevel: "chatty"}
	if c.Level() != slog.LevelInfo {
		t.Errorf("Level() = %v, want info", c.Level())
	}
}

func TestLoadRecipeTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talos.yaml")
	raw := `
recipes:
  table:
    smelter:
      - near: generator
        radius: 3
        recipe: alloy
      - recipe: ingot
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rows := c.Recipes.Table["smelter"]
	if len(rows) != 2 || rows[0].Near != "generator" || rows[0].Recipe != "alloy" {
		t.Fatalf("smelter rows = %+v", rows)
	}
	if rows[1].Radius != c.Recipes.Radius {
		t.Errorf("unset radius = %f, want default %f", rows[1].Radius, c.Recipes.Radius)
	}
	if len(c.Recipes.Table) != 1 {
		t.Errorf("table = %+v, want only the smelter rows", c.Recipes.Table)
	}
}
