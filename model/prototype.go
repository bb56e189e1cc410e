package model

import (
	"encoding/json"
	"strings"
)

// Category classifies a prototype.
type Category string

const (
	CategoryConstruction Category = "construction"
	CategoryResource     Category = "resource"
	CategoryRecipe       Category = "recipe"
	CategoryOther        Category = "other"
)

// ParseCategory maps the host's prototype type string ("Prototype.Construction",
// "construction", ...) to a Category. Unknown strings become CategoryOther.
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimPrefix(s, "Prototype."))
	switch Category(s) {
	case CategoryConstruction, CategoryResource, CategoryRecipe:
		return Category(s)
	}
	return CategoryOther
}

// DepositSuffix marks neutral units that are resource deposits ("metal deposit").
const DepositSuffix = " deposit"

// Descriptor is the subset of a prototype's raw descriptor the bot reads.
type Descriptor struct {
	BuildRadius float64  `json:"buildRadius"`
	Radius      int      `json:"radius"`
	Recipes     []uint32 `json:"recipes"`
	DPS         float64  `json:"dps"`
}

type PrototypeInfo struct {
	ID         uint32
	Name       string
	Category   Category
	Descriptor Descriptor
	Raw        json.RawMessage
}

// DepositResource returns the resource a deposit yields ("metal deposit" → "metal").
func (p PrototypeInfo) DepositResource() (string, bool) {
	if !strings.HasSuffix(p.Name, DepositSuffix) {
		return "", false
	}
	return strings.TrimSuffix(p.Name, DepositSuffix), true
}

// Structure reports whether the prototype is a placed building.
func (p PrototypeInfo) Structure() bool { return p.Descriptor.BuildRadius > 0 }

// Combatant reports whether the prototype has an offensive rating.
func (p PrototypeInfo) Combatant() bool { return p.Descriptor.DPS > 0 }

type RecipeInfo struct {
	ID      uint32
	Name    string
	Outputs []string
}

// ResourceName is the resource a recipe produces, used to key extraction
// structures. Recipes without declared outputs fall back to their own name.
func (r RecipeInfo) ResourceName() string {
	if len(r.Outputs) > 0 {
		return r.Outputs[0]
	}
	return r.Name
}
