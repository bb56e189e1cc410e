package rules

import (
	"fmt"
	"log/slog"
)

// PlaceExtractor sites the resource's drill or pump on the nearest free deposit.
func PlaceExtractor(resource string) ActionFunc {
	return func(env Env) error {
		pos, err := env.Placer.PlaceExtractor(env.Inv, resource)
		if err != nil {
			return fmt.Errorf("extractor for %s: %w", resource, err)
		}
		slog.Debug("extractor ordered", "resource", resource, "x", pos.X, "y", pos.Y)
		return nil
	}
}

// PlaceNear sites kind next to the index-th anchor of a category.
func PlaceNear(kind, anchor string, index int) ActionFunc {
	return func(env Env) error {
		if _, err := env.Placer.PlaceNear(env.Inv, kind, anchor, index); err != nil {
			return fmt.Errorf("%s near %s[%d]: %w", kind, anchor, index, err)
		}
		return nil
	}
}

// PlaceFrontier grows the defensive perimeter by one structure.
func PlaceFrontier(kind string) ActionFunc {
	return func(env Env) error {
		if _, err := env.Placer.PlaceFrontier(env.Inv, kind); err != nil {
			return fmt.Errorf("%s on frontier: %w", kind, err)
		}
		return nil
	}
}

// Demolish self-destructs the first structure of a type, freeing the resource
// slot it occupies.
func Demolish(name string) ActionFunc {
	return func(env Env) error {
		list := env.Inv.Structures[name]
		if len(list) == 0 {
			return nil
		}
		target := list[0]
		slog.Info("demolishing structure", "name", name, "id", target.ID)
		if err := env.Commands.SelfDestruct(target.ID); err != nil {
			return fmt.Errorf("self-destruct %s: %w", name, err)
		}
		env.Inv.Remove(name, target.ID)
		return nil
	}
}
