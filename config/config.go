// Package config loads the bot's tuning file.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SocketPath string `yaml:"socket_path"`
	LogLevel   string `yaml:"log_level"`
	Seed       int64  `yaml:"seed"`      // 0 picks a time-derived seed
	TraceDir   string `yaml:"trace_dir"` // empty disables the decision trace

	HomeStructure    string              `yaml:"home_structure"`
	DefenseStructure string              `yaml:"defense_structure"`
	Roles            map[string][]string `yaml:"roles"`

	Cadence   Cadence   `yaml:"cadence"`
	Placement Placement `yaml:"placement"`
	Combat    Combat    `yaml:"combat"`
	Recipes   Recipes   `yaml:"recipes"`
}

// Cadence sets which ticks run which phase: a phase runs when
// tick % every == offset.
type Cadence struct {
	InitTicks      int `yaml:"init_ticks"`
	BuildEvery     int `yaml:"build_every"`
	BuildOffset    int `yaml:"build_offset"`
	RecipesEvery   int `yaml:"recipes_every"`
	RecipesOffset  int `yaml:"recipes_offset"`
	CombatEvery    int `yaml:"combat_every"`
	CombatOffset   int `yaml:"combat_offset"`
	CombatStart    int `yaml:"combat_start"`
	HeartbeatEvery int `yaml:"heartbeat_every"`
}

type Placement struct {
	FrontierRadius     float64 `yaml:"frontier_radius"`
	FrontierCandidates int     `yaml:"frontier_candidates"`
	DangerRadius       float64 `yaml:"danger_radius"`
	SafetyBuffer       float64 `yaml:"safety_buffer"`
	MaxDefenses        int     `yaml:"max_defenses"`
}

type Combat struct {
	EngageRadius         float64        `yaml:"engage_radius"`
	AggressiveRadius     float64        `yaml:"aggressive_radius"`
	AggressionRoles      map[string]int `yaml:"aggression_roles"`
	SettleTicks          int            `yaml:"settle_ticks"`
	ScatterChance        float64        `yaml:"scatter_chance"`
	RegroupScatterChance float64        `yaml:"regroup_scatter_chance"`
	ScatterRadius        float64        `yaml:"scatter_radius"`
	AlwaysRetarget       bool           `yaml:"always_retarget"`
	TargetNearestToSelf  bool           `yaml:"target_nearest_to_self"`
}

type Recipes struct {
	AllowList []string                  `yaml:"allow_list"`
	Table     map[string][]RecipeChoice `yaml:"table"` // keyed by structure name
	Radius    float64                   `yaml:"radius"`
}

// RecipeChoice is one row of a structure's recipe table. The row applies when
// an entity named Near sits within Radius of the structure ("deposit" matches
// any deposit). An empty Recipe means "whatever the matched deposit yields".
type RecipeChoice struct {
	Near   string  `yaml:"near"`
	Radius float64 `yaml:"radius"`
	Recipe string  `yaml:"recipe"`
}

// Default returns a complete configuration for the standard rule set.
func Default() Config {
	return Config{
		SocketPath:       "/tmp/talos.sock",
		LogLevel:         "info",
		HomeStructure:    "nucleus",
		DefenseStructure: "talos",
		Roles: map[string][]string{
			"worker":  {"atv"},
			"heavy-a": {"juggernaut"},
			"heavy-b": {"plasma blaster"},
		},
		Cadence: Cadence{
			InitTicks:      10,
			BuildEvery:     10,
			BuildOffset:    0,
			RecipesEvery:   10,
			RecipesOffset:  3,
			CombatEvery:    10,
			CombatOffset:   2,
			CombatStart:    2000,
			HeartbeatEvery: 100,
		},
		Placement: Placement{
			FrontierRadius:     40,
			FrontierCandidates: 64,
			DangerRadius:       25,
			SafetyBuffer:       8,
			MaxDefenses:        12,
		},
		Combat: Combat{
			EngageRadius:         60,
			AggressiveRadius:     400,
			AggressionRoles:      map[string]int{"heavy-a": 6},
			SettleTicks:          3000,
			ScatterChance:        0.05,
			RegroupScatterChance: 0.1,
			ScatterRadius:        6,
		},
		Recipes: Recipes{
			AllowList: []string{"plasma blaster", "shield projector", "juggernaut"},
			Table: map[string][]RecipeChoice{
				"drill":         {{Near: "deposit", Radius: 2}},
				"pump":          {{Near: "deposit", Radius: 2}},
				"bot assembler": {{Near: "laboratory", Radius: 8, Recipe: "juggernaut"}},
			},
			Radius: 2,
		},
	}
}

// Load reads a YAML tuning file over the defaults. Keys absent from the file
// keep their default value. A map given in the file replaces the default map
// whole instead of merging into it.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	def := Default()
	c.Roles, c.Combat.AggressionRoles, c.Recipes.Table = nil, nil, nil
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return def, fmt.Errorf("%s: %w", path, err)
	}
	if c.Roles == nil {
		c.Roles = def.Roles
	}
	if c.Combat.AggressionRoles == nil {
		c.Combat.AggressionRoles = def.Combat.AggressionRoles
	}
	if c.Recipes.Table == nil {
		c.Recipes.Table = def.Recipes.Table
	}
	c.Validate()
	return c, nil
}

// Validate clamps every tunable to its usable range.
func (c *Config) Validate() {
	c.Cadence.InitTicks = clampInt(c.Cadence.InitTicks, 1, 1000)
	c.Cadence.BuildEvery = clampInt(c.Cadence.BuildEvery, 1, 10000)
	c.Cadence.RecipesEvery = clampInt(c.Cadence.RecipesEvery, 1, 10000)
	c.Cadence.CombatEvery = clampInt(c.Cadence.CombatEvery, 1, 10000)
	c.Cadence.HeartbeatEvery = clampInt(c.Cadence.HeartbeatEvery, 1, math.MaxInt32)
	c.Cadence.BuildOffset = mod(c.Cadence.BuildOffset, c.Cadence.BuildEvery)
	c.Cadence.RecipesOffset = mod(c.Cadence.RecipesOffset, c.Cadence.RecipesEvery)
	c.Cadence.CombatOffset = mod(c.Cadence.CombatOffset, c.Cadence.CombatEvery)
	c.Cadence.CombatStart = clampInt(c.Cadence.CombatStart, 0, math.MaxInt32)

	c.Placement.FrontierRadius = clamp(c.Placement.FrontierRadius, 1, 1000)
	c.Placement.FrontierCandidates = clampInt(c.Placement.FrontierCandidates, 1, 4096)
	c.Placement.DangerRadius = clamp(c.Placement.DangerRadius, 0, 1000)
	c.Placement.SafetyBuffer = clamp(c.Placement.SafetyBuffer, 0, c.Placement.FrontierRadius)
	c.Placement.MaxDefenses = clampInt(c.Placement.MaxDefenses, 0, 1000)

	c.Combat.EngageRadius = clamp(c.Combat.EngageRadius, 0, math.MaxFloat32)
	c.Combat.AggressiveRadius = clamp(c.Combat.AggressiveRadius, c.Combat.EngageRadius, math.MaxFloat32)
	c.Combat.SettleTicks = clampInt(c.Combat.SettleTicks, 0, math.MaxInt32)
	c.Combat.ScatterChance = clamp(c.Combat.ScatterChance, 0, 1)
	c.Combat.RegroupScatterChance = clamp(c.Combat.RegroupScatterChance, 0, 1)
	c.Combat.ScatterRadius = clamp(c.Combat.ScatterRadius, 1, 1000)

	c.Recipes.Radius = clamp(c.Recipes.Radius, 0, 100)
	for name, rows := range c.Recipes.Table {
		for i := range rows {
			if rows[i].Radius <= 0 {
				rows[i].Radius = c.Recipes.Radius
			}
			rows[i].Radius = clamp(rows[i].Radius, 0, 100)
		}
		c.Recipes.Table[name] = rows
	}
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func mod(v, m int) int {
	return ((v % m) + m) % m
}
