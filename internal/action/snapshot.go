package action

import (
	"context"

	"citytycoon-backend/internal/adjacency"
	"citytycoon-backend/internal/model"
)

// mapSnapshot is the full tile/building state of one map, as the adjacency
// engine requires (it never reads the database itself).
type mapSnapshot struct {
	theMap    model.Map
	tiles     []model.Tile
	buildings []model.BuildingInstance
}

func (s *Service) snapshotMap(ctx context.Context, mapID string) (mapSnapshot, error) {
	m, err := s.maps.Get(ctx, mapID)
	if err != nil {
		return mapSnapshot{}, err
	}
	tiles, err := s.maps.ListTiles(ctx, mapID)
	if err != nil {
		return mapSnapshot{}, err
	}
	buildings, err := s.buildings.ListByMap(ctx, mapID)
	if err != nil {
		return mapSnapshot{}, err
	}
	return mapSnapshot{theMap: *m, tiles: tiles, buildings: buildings}, nil
}

// computeAdjacency prices a prospective building placement using the
// default coefficient tables (spec.md §9's Open Question on
// configuration-sourced coefficients is resolved as "default tables,
// overridable per deployment" — see DESIGN.md).
func computeAdjacency(tile *model.Tile, typeID model.BuildingTypeID, variant *string, snap mapSnapshot, catalog model.Catalog) adjacencyResult {
	result := adjacency.Compute(adjacency.Input{
		Tile: *tile, BuildingType: typeID, Variant: variant,
		AllTiles: snap.tiles, AllBuildings: snap.buildings, Map: snap.theMap, Catalog: catalog,
		Profit: adjacency.DefaultProfitCoefficients(), Value: adjacency.DefaultValueCoefficients(),
	})
	return adjacencyResult{
		profit: result.FinalProfit, value: result.FinalValue,
		profitBreakdown: result.ProfitBreakdown, valueBreakdown: result.ValueBreakdown,
	}
}
