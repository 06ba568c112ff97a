package model

// Terrain is a tile's base ground type.
type Terrain string

const (
	TerrainFreeLand  Terrain = "free_land"
	TerrainWater     Terrain = "water"
	TerrainRoad      Terrain = "road"
	TerrainDirtTrack Terrain = "dirt_track"
	TerrainTrees     Terrain = "trees"
)

// Unownable reports whether terrain of this kind can never carry an owner
// (spec.md §3: "water/road tiles are unownable").
func (t Terrain) Unownable() bool {
	return t == TerrainWater || t == TerrainRoad
}

// Buyable reports whether terrain of this kind is eligible for the Buy
// Land action (spec.md §4.3: free_land, trees, dirt_track).
func (t Terrain) Buyable() bool {
	switch t {
	case TerrainFreeLand, TerrainTrees, TerrainDirtTrack:
		return true
	default:
		return false
	}
}

// SpecialBuilding is one of the at-most-one-per-map fixed structures.
type SpecialBuilding string

const (
	SpecialTemple        SpecialBuilding = "temple"
	SpecialBank          SpecialBuilding = "bank"
	SpecialPoliceStation SpecialBuilding = "police_station"
	SpecialCasino        SpecialBuilding = "casino"
)

// Coordinate identifies a tile within a Map.
type Coordinate struct {
	X int
	Y int
}

// Neighbors returns the 8 neighboring coordinates of c, without filtering
// for map bounds — callers must bounds-check against the map dimensions.
// Off-map neighbors are treated as empty per spec.md §8.
func (c Coordinate) Neighbors() []Coordinate {
	out := make([]Coordinate, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, Coordinate{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}

// Tile is one cell of a Map (spec.md §3).
type Tile struct {
	MapID      string
	Coordinate Coordinate
	Terrain    Terrain
	Special    *SpecialBuilding
	OwnerID    *string // GameCompany ID, nil if unowned
}

// Ownable reports whether this tile may ever carry an owner: not water or
// road, and not a special-building tile.
func (t *Tile) Ownable() bool {
	if t.Terrain.Unownable() {
		return false
	}
	return t.Special == nil
}

// InBounds reports whether coordinate c lies within a width×height map.
func InBounds(c Coordinate, width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}
