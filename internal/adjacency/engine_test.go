package adjacency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"citytycoon-backend/internal/adjacency"
	"citytycoon-backend/internal/model"
)

func sampleInput() adjacency.Input {
	m := model.Map{ID: "map-1", Tier: model.TierTown, Width: 3, Height: 3}
	tiles := []model.Tile{
		{MapID: m.ID, Coordinate: model.Coordinate{X: 0, Y: 0}, Terrain: model.TerrainFreeLand},
		{MapID: m.ID, Coordinate: model.Coordinate{X: 1, Y: 0}, Terrain: model.TerrainRoad},
		{MapID: m.ID, Coordinate: model.Coordinate{X: 0, Y: 1}, Terrain: model.TerrainWater},
		{MapID: m.ID, Coordinate: model.Coordinate{X: 1, Y: 1}, Terrain: model.TerrainFreeLand},
	}
	buildings := []model.BuildingInstance{
		{ID: "b-1", MapID: m.ID, Coordinate: model.Coordinate{X: 1, Y: 1}, TypeID: model.BuildingRestaurant, OwnerCompanyID: "co-1"},
	}
	return adjacency.Input{
		Tile:         tiles[0],
		BuildingType: model.BuildingMotel,
		AllTiles:     tiles,
		AllBuildings: buildings,
		Map:          m,
		Catalog:      model.DefaultCatalog(),
		Profit:       adjacency.DefaultProfitCoefficients(),
		Value:        adjacency.DefaultValueCoefficients(),
	}
}

// spec.md §8 requires Compute to be a pure function: replaying it against
// an identical snapshot must yield identical output.
func TestCompute_IsDeterministic(t *testing.T) {
	in := sampleInput()

	first := adjacency.Compute(in)
	for i := 0; i < 25; i++ {
		again := adjacency.Compute(sampleInput())
		assert.Equal(t, first.FinalProfit, again.FinalProfit)
		assert.Equal(t, first.FinalValue, again.FinalValue)
		assert.Equal(t, first.ProfitBreakdown, again.ProfitBreakdown)
		assert.Equal(t, first.ValueBreakdown, again.ValueBreakdown)
	}
}

func TestCompute_OffMapNeighborsAreIgnored(t *testing.T) {
	in := sampleInput()
	in.Tile = model.Tile{MapID: in.Map.ID, Coordinate: model.Coordinate{X: 0, Y: 0}, Terrain: model.TerrainFreeLand}
	in.AllTiles = []model.Tile{in.Tile}
	in.AllBuildings = nil

	result := adjacency.Compute(in)
	bt := model.DefaultCatalog()[model.BuildingMotel]
	assert.Equal(t, model.Cents(bt.BaseProfit), result.FinalProfit)
}

func TestCompute_RoadAdjacencyIncreasesProfit(t *testing.T) {
	base := sampleInput()
	base.AllBuildings = nil
	withoutRoad := base
	withoutRoad.AllTiles = []model.Tile{
		{MapID: base.Map.ID, Coordinate: model.Coordinate{X: 0, Y: 0}, Terrain: model.TerrainFreeLand},
	}

	withRoad := base
	withRoad.AllTiles = []model.Tile{
		{MapID: base.Map.ID, Coordinate: model.Coordinate{X: 0, Y: 0}, Terrain: model.TerrainFreeLand},
		{MapID: base.Map.ID, Coordinate: model.Coordinate{X: 1, Y: 0}, Terrain: model.TerrainRoad},
	}

	resultWithout := adjacency.Compute(withoutRoad)
	resultWith := adjacency.Compute(withRoad)
	assert.Greater(t, resultWith.FinalProfit, resultWithout.FinalProfit)
}

func TestCompute_SameTypeSaturationPenalizesProfit(t *testing.T) {
	in := sampleInput()
	in.Tile = model.Tile{MapID: in.Map.ID, Coordinate: model.Coordinate{X: 0, Y: 0}, Terrain: model.TerrainFreeLand}
	in.BuildingType = model.BuildingRestaurant
	in.AllTiles = []model.Tile{
		in.Tile,
		{MapID: in.Map.ID, Coordinate: model.Coordinate{X: 1, Y: 0}, Terrain: model.TerrainFreeLand},
	}
	in.AllBuildings = []model.BuildingInstance{
		{ID: "b-1", MapID: in.Map.ID, Coordinate: model.Coordinate{X: 1, Y: 0}, TypeID: model.BuildingRestaurant},
	}

	result := adjacency.Compute(in)
	bt := model.DefaultCatalog()[model.BuildingRestaurant]
	assert.Less(t, result.FinalProfit, model.Cents(bt.BaseProfit))
}
