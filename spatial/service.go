// Package spatial answers distance, placement and neighborhood queries from
// the map's terrain grid and the latest entity snapshot.
package spatial

import (
	"math"
	"sort"

	"github.com/nstehr/talos/model"
)

// DefaultSearchRadius bounds the placement spiral.
const DefaultSearchRadius = 32

// Catalog resolves footprints.
type Catalog interface {
	Lookup(id uint32) (model.PrototypeInfo, bool)
}

// Service implements host.Spatial. A nil grid is an unbounded all-land map.
type Service struct {
	grid         *model.TerrainGrid
	catalog      Catalog
	searchRadius int

	occupants map[model.Position][]model.Entity
	blocked   map[model.Position]bool
	reserved  map[model.Position]bool
}

func New(grid *model.TerrainGrid, catalog Catalog) *Service {
	return &Service{
		grid:         grid,
		catalog:      catalog,
		searchRadius: DefaultSearchRadius,
		occupants:    make(map[model.Position][]model.Entity),
		blocked:      make(map[model.Position]bool),
		reserved:     make(map[model.Position]bool),
	}
}

// Update reindexes occupancy from a fresh snapshot. Reservations made by
// FindPlacement are dropped: by now the host reports those sites itself.
func (s *Service) Update(entities []model.Entity) {
	clear(s.occupants)
	clear(s.blocked)
	clear(s.reserved)
	for _, e := range entities {
		s.occupants[e.Pos] = append(s.occupants[e.Pos], e)
		proto, ok := s.catalog.Lookup(e.Proto)
		if !ok || !(proto.Structure() || proto.Category == model.CategoryConstruction) {
			continue
		}
		for _, p := range footprint(e.Pos, proto.Descriptor.Radius) {
			s.blocked[p] = true
		}
	}
}

func (s *Service) Distance(a, b model.Position) float64 {
	return a.Dist(b)
}

// FindPlacement spirals out from near until the construction's footprint fits
// on free buildable tiles, then reserves it.
func (s *Service) FindPlacement(construction uint32, near model.Position) (model.Position, bool) {
	radius := 0
	if proto, ok := s.catalog.Lookup(construction); ok {
		radius = proto.Descriptor.Radius
	}
	for d := 0; d <= s.searchRadius; d++ {
		for _, p := range ring(near, d) {
			if !s.fits(p, radius) {
				continue
			}
			for _, t := range footprint(p, radius) {
				s.reserved[t] = true
			}
			return p, true
		}
	}
	return model.Position{}, false
}

// Neighbors lists on-map tiles within radius of center, row-major.
func (s *Service) Neighbors(center model.Position, radius float64) []model.Position {
	r := int(math.Floor(radius))
	var out []model.Position
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			p := model.Position{X: x, Y: y}
			if p.Dist(center) > radius || !s.onMap(p) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) EntitiesAt(p model.Position) []model.Entity {
	return s.occupants[p]
}

func (s *Service) onMap(p model.Position) bool {
	return s.grid == nil || s.grid.InBounds(p)
}

func (s *Service) buildable(p model.Position) bool {
	return s.grid == nil || s.grid.Buildable(p)
}

func (s *Service) fits(center model.Position, radius int) bool {
	for _, p := range footprint(center, radius) {
		if !s.buildable(p) || s.blocked[p] || s.reserved[p] {
			return false
		}
	}
	return true
}

// footprint is the square of tiles a structure of the given radius covers.
func footprint(center model.Position, radius int) []model.Position {
	out := make([]model.Position, 0, (2*radius+1)*(2*radius+1))
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			out = append(out, model.Position{X: x, Y: y})
		}
	}
	return out
}

// ring returns the tiles at Chebyshev distance d from c, nearest first.
func ring(c model.Position, d int) []model.Position {
	if d == 0 {
		return []model.Position{c}
	}
	out := make([]model.Position, 0, 8*d)
	for y := c.Y - d; y <= c.Y+d; y++ {
		for x := c.X - d; x <= c.X+d; x++ {
			if y != c.Y-d && y != c.Y+d && x != c.X-d && x != c.X+d {
				continue
			}
			out = append(out, model.Position{X: x, Y: y})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Dist(c) < out[j].Dist(c)
	})
	return out
}
