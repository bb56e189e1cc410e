package ipc

import (
	"fmt"

	"github.com/nstehr/talos/model"
)

// Command type constants, must stay in sync with the game-side bridge.
const (
	TypePlaceConstruction = "place_construction"
	TypeSetPriority       = "set_priority"
	TypeSetRecipe         = "set_recipe"
	TypeSelfDestruct      = "self_destruct"
	TypeFightEntity       = "fight_entity"
	TypeMoveTo            = "move_to"
	TypeMoveToEntity      = "move_to_entity"
)

type PlaceConstructionCommand struct {
	Construction uint32 `json:"construction"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
}

type SetPriorityCommand struct {
	ActorID  uint32 `json:"actor_id"`
	Priority int    `json:"priority"`
}

type SetRecipeCommand struct {
	ActorID uint32 `json:"actor_id"`
	Recipe  uint32 `json:"recipe"`
}

type SelfDestructCommand struct {
	ActorID uint32 `json:"actor_id"`
}

type FightEntityCommand struct {
	ActorID  uint32 `json:"actor_id"`
	TargetID uint32 `json:"target_id"`
}

type MoveToCommand struct {
	ActorID uint32 `json:"actor_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

type MoveToEntityCommand struct {
	ActorID  uint32 `json:"actor_id"`
	TargetID uint32 `json:"target_id"`
}

// Sender is the outbound half of a Connection.
type Sender interface {
	Send(msgType string, data any) error
}

// Commander dispatches host orders as command envelopes.
type Commander struct {
	out  Sender
	Sent int
}

func NewCommander(out Sender) *Commander {
	return &Commander{out: out}
}

func (c *Commander) send(msgType string, data any) error {
	if err := c.out.Send(msgType, data); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	c.Sent++
	return nil
}

func (c *Commander) PlaceConstruction(construction uint32, at model.Position) error {
	return c.send(TypePlaceConstruction, PlaceConstructionCommand{Construction: construction, X: at.X, Y: at.Y})
}

func (c *Commander) SetPriority(id uint32, priority int) error {
	return c.send(TypeSetPriority, SetPriorityCommand{ActorID: id, Priority: priority})
}

func (c *Commander) SetRecipe(id, recipe uint32) error {
	return c.send(TypeSetRecipe, SetRecipeCommand{ActorID: id, Recipe: recipe})
}

func (c *Commander) SelfDestruct(id uint32) error {
	return c.send(TypeSelfDestruct, SelfDestructCommand{ActorID: id})
}

func (c *Commander) FightEntity(id, target uint32) error {
	return c.send(TypeFightEntity, FightEntityCommand{ActorID: id, TargetID: target})
}

func (c *Commander) MoveTo(id uint32, at model.Position) error {
	return c.send(TypeMoveTo, MoveToCommand{ActorID: id, X: at.X, Y: at.Y})
}

func (c *Commander) MoveToEntity(id, target uint32) error {
	return c.send(TypeMoveToEntity, MoveToEntityCommand{ActorID: id, TargetID: target})
}
