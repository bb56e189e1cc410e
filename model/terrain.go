package model

// TerrainType classifies a map tile.
type TerrainType byte

const (
	Land    TerrainType = 0 // buildable ground
	Water   TerrainType = 1 // not buildable
	Cliff   TerrainType = 2 // impassable
	Blocked TerrainType = 3 // reserved by the map (spawn pads, edges)
)

// TerrainGrid is the per-tile terrain of the current map, row-major.
type TerrainGrid struct {
	Width  int
	Height int
	Tiles  []TerrainType // Tiles[y*Width + x]
}

// InBounds reports whether p lies on the map.
func (g *TerrainGrid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At returns the terrain at p. Out-of-bounds tiles read as Blocked.
func (g *TerrainGrid) At(p Position) TerrainType {
	if !g.InBounds(p) || len(g.Tiles) != g.Width*g.Height {
		return Blocked
	}
	return g.Tiles[p.Y*g.Width+p.X]
}

// Buildable reports whether a structure may occupy p.
func (g *TerrainGrid) Buildable(p Position) bool {
	return g.At(p) == Land
}
