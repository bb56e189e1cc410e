package agent

import (
	"fmt"

	"github.com/nstehr/talos/inventory"
)

// EventKind identifies a significant change between two refreshes.
type EventKind string

const (
	EventStructureLost    EventKind = "structure_lost"
	EventMainLost         EventKind = "main_lost"
	EventArmyDevastated   EventKind = "army_devastated"
	EventFirstContact     EventKind = "first_contact"
	EventEnemyMainSighted EventKind = "enemy_main_sighted"
)

// Event is detected by diffing consecutive inventory snapshots. Events are
// logged and traced; the build order itself never reads them.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// stateSnapshot captures the diffable fields of one refresh.
type stateSnapshot struct {
	structureIDs map[uint32]string // id → name for owned structures
	mainID       uint32
	hasMain      bool
	combatCount  int
	hostilesSeen bool
	enemyMains   int
}

// criticalStructures are buildings whose loss stalls the build order.
var criticalStructures = map[string]bool{
	"bot assembler": true,
	"laboratory":    true,
	"arsenal":       true,
}

func takeSnapshot(inv *inventory.Inventory) stateSnapshot {
	snap := stateSnapshot{
		structureIDs: make(map[uint32]string),
		combatCount:  len(inv.Combat),
		hostilesSeen: len(inv.Hostiles) > 0,
		enemyMains:   len(inv.EnemyMains),
	}
	for name, list := range inv.Structures {
		for _, e := range list {
			snap.structureIDs[e.ID] = name
		}
	}
	if inv.Main != nil {
		snap.mainID = inv.Main.ID
		snap.hasMain = true
	}
	return snap
}

// detectEvents compares the inventory against the previous snapshot.
// Returns nil if prev is nil (first refresh).
func detectEvents(tick int, inv *inventory.Inventory, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	cur := takeSnapshot(inv)

	// 1. main_lost: the main structure stopped being reported
	mainLost := false
	if prev.hasMain {
		if _, ok := prev.structureIDs[prev.mainID]; ok {
			if _, still := cur.structureIDs[prev.mainID]; !still {
				mainLost = true
				events = append(events, Event{
					Kind:   EventMainLost,
					Tick:   tick,
					Detail: fmt.Sprintf("Main structure lost (id %d)", prev.mainID),
				})
			}
		}
	}

	// 2. structure_lost: a critical structure present last refresh is gone
	if !mainLost {
		for id, name := range prev.structureIDs {
			if !criticalStructures[name] {
				continue
			}
			if _, exists := cur.structureIDs[id]; !exists {
				events = append(events, Event{
					Kind:   EventStructureLost,
					Tick:   tick,
					Detail: fmt.Sprintf("Lost structure: %s (id %d)", name, id),
				})
				break // one event per refresh is enough
			}
		}
	}

	// 3. army_devastated: >50% combat units lost (floor of 6 to avoid early noise)
	if prev.combatCount >= 6 {
		lost := prev.combatCount - cur.combatCount
		if lost > 0 && float64(lost)/float64(prev.combatCount) > 0.5 {
			events = append(events, Event{
				Kind:   EventArmyDevastated,
				Tick:   tick,
				Detail: fmt.Sprintf("Army devastated: %d→%d combat units", prev.combatCount, cur.combatCount),
			})
		}
	}

	// 4. first_contact: hostiles visible for the first time
	if !prev.hostilesSeen && cur.hostilesSeen {
		events = append(events, Event{
			Kind:   EventFirstContact,
			Tick:   tick,
			Detail: fmt.Sprintf("First contact: %d hostiles visible", len(inv.Hostiles)),
		})
	}

	// 5. enemy_main_sighted
	if prev.enemyMains == 0 && cur.enemyMains > 0 {
		e := inv.EnemyMains[0]
		events = append(events, Event{
			Kind:   EventEnemyMainSighted,
			Tick:   tick,
			Detail: fmt.Sprintf("Enemy main structure at (%d,%d)", e.Pos.X, e.Pos.Y),
		})
	}

	return events
}
