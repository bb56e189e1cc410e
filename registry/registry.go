// Package registry caches the match's prototype catalog.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/nstehr/talos/host"
	"github.com/nstehr/talos/model"
)

// ErrEmptyCatalog is returned when the host enumerates no prototypes yet.
var ErrEmptyCatalog = errors.New("prototype catalog is empty")

// descriptorSchema is the minimum shape a descriptor must have for the bot to
// trust the fields it reads.
const descriptorSchema = `{
  "type": "object",
  "properties": {
    "buildRadius": {"type": "number", "minimum": 0},
    "radius": {"type": "integer", "minimum": 0},
    "dps": {"type": "number", "minimum": 0},
    "recipes": {"type": "array", "items": {"type": "integer", "minimum": 0}}
  }
}`

var schema = jsonschema.MustCompileString("descriptor.schema.json", descriptorSchema)

// Registry resolves prototype ids to descriptors. It is filled once per match
// and is read-only afterwards.
type Registry struct {
	src           host.Prototypes
	byID          map[uint32]model.PrototypeInfo
	constructions map[string]uint32
	recipes       map[uint32]model.RecipeInfo
	skipLog       rate.Sometimes
}

func New(src host.Prototypes) *Registry {
	return &Registry{
		src:           src,
		byID:          make(map[uint32]model.PrototypeInfo),
		constructions: make(map[string]uint32),
		recipes:       make(map[uint32]model.RecipeInfo),
		skipLog:       rate.Sometimes{First: 5, Interval: 10 * time.Second},
	}
}

// Init enumerates the catalog. It is a no-op once the registry holds data,
// so callers may invoke it every tick until it succeeds.
func (r *Registry) Init() error {
	if len(r.byID) > 0 {
		return nil
	}
	ids := r.src.All()
	if len(ids) == 0 {
		return ErrEmptyCatalog
	}
	for _, id := range ids {
		name, typ, blob, ok := r.src.Describe(id)
		if !ok {
			continue
		}
		info, err := decode(id, name, typ, blob)
		if err != nil {
			r.skipLog.Do(func() {
				slog.Debug("skipping prototype", "id", id, "name", name, "error", err)
			})
			continue
		}
		r.byID[id] = info
		if info.Category == model.CategoryConstruction {
			r.constructions[name] = id
		}
	}
	if len(r.byID) == 0 {
		return ErrEmptyCatalog
	}
	slog.Info("prototype registry ready", "prototypes", len(r.byID), "constructions", len(r.constructions))
	return nil
}

func decode(id uint32, name, typ string, blob []byte) (model.PrototypeInfo, error) {
	info := model.PrototypeInfo{ID: id, Name: name, Category: model.ParseCategory(typ), Raw: blob}
	if len(blob) == 0 {
		return info, nil
	}
	var doc any
	if err := json.Unmarshal(blob, &doc); err != nil {
		return info, fmt.Errorf("decode descriptor: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return info, fmt.Errorf("validate descriptor: %w", err)
	}
	if err := json.Unmarshal(blob, &info.Descriptor); err != nil {
		return info, fmt.Errorf("decode descriptor: %w", err)
	}
	return info, nil
}

func (r *Registry) Ready() bool { return len(r.byID) > 0 }
func (r *Registry) Len() int    { return len(r.byID) }

// Lookup returns the descriptor for a prototype id.
func (r *Registry) Lookup(id uint32) (model.PrototypeInfo, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// ConstructionID maps a construction name ("drill") to its prototype id.
func (r *Registry) ConstructionID(name string) (uint32, bool) {
	id, ok := r.constructions[name]
	return id, ok
}

// Recipe resolves a recipe id, consulting the host on first use.
func (r *Registry) Recipe(id uint32) (model.RecipeInfo, bool) {
	if rec, ok := r.recipes[id]; ok {
		return rec, true
	}
	rec, ok := r.src.Recipe(id)
	if !ok {
		return model.RecipeInfo{}, false
	}
	r.recipes[id] = rec
	return rec, true
}
