package model

import "math"

// Position is a map tile coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dist is the straight-line distance between two tiles.
func (p Position) Dist(q Position) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Policy is the diplomatic stance of an entity's owner towards us.
type Policy string

const (
	PolicyNone    Policy = ""
	PolicySelf    Policy = "self"
	PolicyAlly    Policy = "ally"
	PolicyNeutral Policy = "neutral"
	PolicyEnemy   Policy = "enemy"
)

// Tag is a capability bit carried by an entity. Accessors for optional
// attributes only answer when the matching tag is present.
type Tag uint16

const (
	TagUnit Tag = 1 << iota
	TagConstruction
	TagRecipe
	TagAmount
	TagDisabled
)

// Entity is a read-only view of one world object as reported by the host.
type Entity struct {
	ID     uint32
	Pos    Position
	Owned  bool
	Policy Policy
	Proto  uint32
	Tags   Tag

	recipe uint32
	amount int
}

func (e Entity) Has(t Tag) bool { return e.Tags&t == t }

// WithRecipe returns a copy carrying an active recipe.
func (e Entity) WithRecipe(id uint32) Entity {
	e.recipe = id
	e.Tags |= TagRecipe
	return e
}

// WithAmount returns a copy carrying a resource amount.
func (e Entity) WithAmount(n int) Entity {
	e.amount = n
	e.Tags |= TagAmount
	return e
}

// Recipe reports the active recipe, if any.
func (e Entity) Recipe() (uint32, bool) {
	if !e.Has(TagRecipe) {
		return 0, false
	}
	return e.recipe, true
}

// Amount reports the resource amount, if the entity carries one.
func (e Entity) Amount() (int, bool) {
	if !e.Has(TagAmount) {
		return 0, false
	}
	return e.amount, true
}

func (e Entity) Hostile() bool { return !e.Owned && e.Policy == PolicyEnemy }
