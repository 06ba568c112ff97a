// Package adjacency implements the pure profit/valuation function of
// spec.md §4.1. The engine never reads the database; callers pass
// snapshots of the tiles and buildings on one map.
package adjacency

import (
	"math"

	"citytycoon-backend/internal/model"
)

// Input is a full, self-contained snapshot the engine needs to price one
// building-type-on-tile placement.
type Input struct {
	Tile         model.Tile
	BuildingType model.BuildingTypeID
	Variant      *string
	AllTiles     []model.Tile
	AllBuildings []model.BuildingInstance // non-collapsed only
	Map          model.Map
	Catalog      model.Catalog
	Profit       Coefficients
	Value        Coefficients
	// ResaleFloor is the current resale floor the valuation must never
	// drop below (spec.md §4.1 step 4). Zero means no floor.
	ResaleFloor model.Cents
}

// Result is the engine's deterministic output.
type Result struct {
	FinalProfit     model.Cents
	FinalValue      model.Cents
	ProfitBreakdown model.ProfitBreakdown
	ValueBreakdown  model.ProfitBreakdown
}

// index is a lookup of tiles and buildings by coordinate, built once per
// Compute call so every neighbor lookup is O(1).
type index struct {
	tiles     map[model.Coordinate]model.Tile
	buildings map[model.Coordinate]model.BuildingInstance
}

func buildIndex(in Input) index {
	idx := index{
		tiles:     make(map[model.Coordinate]model.Tile, len(in.AllTiles)),
		buildings: make(map[model.Coordinate]model.BuildingInstance, len(in.AllBuildings)),
	}
	for _, t := range in.AllTiles {
		idx.tiles[t.Coordinate] = t
	}
	for _, b := range in.AllBuildings {
		if b.Live() {
			idx.buildings[b.Coordinate] = b
		}
	}
	return idx
}

// Compute is the pure function of spec.md §4.1: for identical inputs it
// produces byte-identical output. Neighbor iteration order is fixed by
// model.Coordinate.Neighbors, so floating-point summation order is stable
// across calls.
func Compute(in Input) Result {
	idx := buildIndex(in)

	bt := in.Catalog[in.BuildingType]

	profitTotal, profitBreakdown := walk(in, idx, in.Profit, float64(bt.BaseProfit))
	valueTotal, valueBreakdown := walk(in, idx, in.Value, float64(bt.BaseCost))

	tierMult := in.Map.Tier.ProfitMultiplier()
	profitTotal *= tierMult
	valueTotal *= tierMult

	finalValue := model.Cents(math.Round(valueTotal))
	if finalValue < in.ResaleFloor {
		finalValue = in.ResaleFloor
	}

	return Result{
		FinalProfit:     model.Cents(math.Round(profitTotal)),
		FinalValue:      finalValue,
		ProfitBreakdown: profitBreakdown,
		ValueBreakdown:  valueBreakdown,
	}
}

// walk applies the eight-neighbor adjacency rules of spec.md §4.1 step 2
// using the supplied coefficient table, starting from base, and returns the
// running total plus the non-zero contributions recorded along the way.
func walk(in Input, idx index, coef Coefficients, base float64) (float64, model.ProfitBreakdown) {
	total := base
	breakdown := model.ProfitBreakdown{}

	for _, n := range in.Tile.Coordinate.Neighbors() {
		if !model.InBounds(n, in.Map.Width, in.Map.Height) {
			continue // off-map neighbors are treated as empty (spec.md §8)
		}

		tile, ok := idx.tiles[n]
		if !ok {
			continue
		}

		if tile.Special != nil {
			if delta, ok := coef.SpecialBonus[*tile.Special]; ok && delta != 0 {
				total += delta
				breakdown.Contributions = append(breakdown.Contributions, model.ProfitContribution{
					Source: "neighbor:" + string(*tile.Special),
					Delta:  delta,
					Reason: "special building adjacency",
				})
			}
			continue
		}

		if neighborBuilding, ok := idx.buildings[n]; ok {
			if neighborBuilding.TypeID == in.BuildingType {
				delta := coef.SameTypeSaturationPenalty
				if delta != 0 {
					total += delta
					breakdown.Contributions = append(breakdown.Contributions, model.ProfitContribution{
						Source: "neighbor:same_type",
						Delta:  delta,
						Reason: "saturation penalty",
					})
				}
				continue
			}

			if delta, ok := coef.pairDelta(in.BuildingType, neighborBuilding.TypeID); ok && delta != 0 {
				total += delta
				breakdown.Contributions = append(breakdown.Contributions, model.ProfitContribution{
					Source: "neighbor:" + string(neighborBuilding.TypeID),
					Delta:  delta,
					Reason: "building pairing",
				})
			}
			continue
		}

		// Bare terrain, no building, no special.
		var delta float64
		var source, reason string
		switch tile.Terrain {
		case model.TerrainRoad:
			delta, source, reason = coef.RoadAccessBonus, "neighbor:road", "access bonus"
		case model.TerrainDirtTrack:
			delta, source, reason = coef.DirtTrackAccessBonus, "neighbor:dirt_track", "access bonus"
		case model.TerrainWater:
			delta, source, reason = coef.WaterAmenityBonus, "neighbor:water", "amenity bonus"
		case model.TerrainTrees:
			delta, source, reason = coef.TreesAmenityBonus, "neighbor:trees", "amenity bonus"
		}
		if delta != 0 {
			total += delta
			breakdown.Contributions = append(breakdown.Contributions, model.ProfitContribution{
				Source: source,
				Delta:  delta,
				Reason: reason,
			})
		}
	}

	return total, breakdown
}
