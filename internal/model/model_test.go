package model_test

import (
	"testing"

	"citytycoon-backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCoordinateNeighbors_CountsEight(t *testing.T) {
	c := model.Coordinate{X: 5, Y: 5}
	assert.Len(t, c.Neighbors(), 8)
}

func TestInBounds_EdgesAndOutside(t *testing.T) {
	assert.True(t, model.InBounds(model.Coordinate{X: 0, Y: 0}, 5, 5))
	assert.True(t, model.InBounds(model.Coordinate{X: 4, Y: 4}, 5, 5))
	assert.False(t, model.InBounds(model.Coordinate{X: -1, Y: 0}, 5, 5))
	assert.False(t, model.InBounds(model.Coordinate{X: 5, Y: 0}, 5, 5))
}

func TestTierOrdering(t *testing.T) {
	next, ok := model.TierTown.Next()
	assert.True(t, ok)
	assert.Equal(t, model.TierCity, next)

	next, ok = model.TierCity.Next()
	assert.True(t, ok)
	assert.Equal(t, model.TierCapital, next)

	_, ok = model.TierCapital.Next()
	assert.False(t, ok)

	assert.Greater(t, model.TierCapital.ProfitMultiplier(), model.TierCity.ProfitMultiplier())
	assert.Greater(t, model.TierCity.ProfitMultiplier(), model.TierTown.ProfitMultiplier())
}

func TestTierSet_UnlockTracking(t *testing.T) {
	var s model.TierSet
	assert.False(t, s.Has(model.TierCity))

	s = s.With(model.TierCity)
	assert.True(t, s.Has(model.TierCity))
	assert.False(t, s.Has(model.TierCapital))
}

func TestTerrain_BuyableAndUnownable(t *testing.T) {
	assert.True(t, model.TerrainFreeLand.Buyable())
	assert.True(t, model.TerrainTrees.Buyable())
	assert.False(t, model.TerrainWater.Buyable())
	assert.True(t, model.TerrainWater.Unownable())
	assert.True(t, model.TerrainRoad.Unownable())
	assert.False(t, model.TerrainFreeLand.Unownable())
}

func TestBuildingInstance_StateMachine(t *testing.T) {
	b := &model.BuildingInstance{}
	assert.Equal(t, model.StateHealthy, b.CurrentState())

	b.DamagePercent = 40
	assert.Equal(t, model.StateDamaged, b.CurrentState())

	b.Burning = true
	assert.Equal(t, model.StateBurning, b.CurrentState())

	b.Collapsed = true
	assert.Equal(t, model.StateCollapsed, b.CurrentState())
}
