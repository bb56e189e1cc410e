// Package host declares the collaborators the decision engine calls into:
// the simulation's world view, its prototype catalog, spatial queries and
// command dispatch. All calls are synchronous and expected to return promptly.
package host

import "github.com/nstehr/talos/model"

// World enumerates what the bot can currently see.
type World interface {
	Entities() []model.Entity
	// OrderCount is the length of a unit's pending command queue.
	OrderCount(id uint32) int
}

// Prototypes is the one-shot catalog enumeration.
type Prototypes interface {
	All() []uint32
	// Describe returns the name, host type string and raw JSON descriptor.
	Describe(id uint32) (name, typ string, blob []byte, ok bool)
	Recipe(id uint32) (model.RecipeInfo, bool)
}

// Spatial answers map geometry questions.
type Spatial interface {
	Distance(a, b model.Position) float64
	// FindPlacement returns a valid site for the construction near the reference.
	FindPlacement(construction uint32, near model.Position) (model.Position, bool)
	// Neighbors lists positions within radius of center.
	Neighbors(center model.Position, radius float64) []model.Position
	EntitiesAt(p model.Position) []model.Entity
}

// Commands issues fire-and-forget orders. Errors only report local
// dispatch failures, never simulation outcomes.
type Commands interface {
	PlaceConstruction(construction uint32, at model.Position) error
	SetPriority(id uint32, priority int) error
	SetRecipe(id, recipe uint32) error
	SelfDestruct(id uint32) error
	FightEntity(id, target uint32) error
	MoveTo(id uint32, at model.Position) error
	MoveToEntity(id, target uint32) error
}
