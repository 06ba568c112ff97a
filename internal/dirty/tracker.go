// Package dirty implements the Dirty Tracker (spec.md §4.2): after any
// mutation that changes what occupies a tile, every building within the
// eight-tile neighborhood of the changed tile must have its
// needs_profit_recalc flag set. The Tick Processor is the only consumer;
// it clears the flag after recomputing (spec.md §4.5 pass 1).
package dirty

import (
	"context"

	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/repository"
)

// Tracker marks buildings dirty after a tile mutation.
type Tracker struct {
	buildings repository.BuildingRepository
}

// New builds a Tracker backed by the given building store.
func New(buildings repository.BuildingRepository) *Tracker {
	return &Tracker{buildings: buildings}
}

// MarkNeighborhood flags needs_profit_recalc on every live building within
// the eight-tile neighborhood of changed (including a building standing on
// changed itself, since its own inputs may have shifted — e.g. a variant
// swap or a neighbor's terrain repaint).
func (t *Tracker) MarkNeighborhood(ctx context.Context, mapID string, changed model.Coordinate) error {
	coords := append([]model.Coordinate{changed}, changed.Neighbors()...)
	for _, c := range coords {
		b, err := t.buildings.GetByTile(ctx, mapID, c)
		if err != nil {
			continue // no live building on this tile — nothing to dirty
		}
		if b.NeedsProfitRecalc {
			continue
		}
		b.NeedsProfitRecalc = true
		if err := t.buildings.Update(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
