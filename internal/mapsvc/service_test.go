package mapsvc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/mapsvc"
	"citytycoon-backend/internal/model"
)

type fakeMapRepository struct {
	maps  map[string]*model.Map
	tiles map[string]map[model.Coordinate]*model.Tile
}

func newFakeMapRepository() *fakeMapRepository {
	return &fakeMapRepository{
		maps:  make(map[string]*model.Map),
		tiles: make(map[string]map[model.Coordinate]*model.Tile),
	}
}

func (f *fakeMapRepository) Create(ctx context.Context, m *model.Map) error {
	f.maps[m.ID] = m
	return nil
}

func (f *fakeMapRepository) Get(ctx context.Context, id string) (*model.Map, error) {
	m, ok := f.maps[id]
	if !ok {
		return nil, gameerrors.NotFound("map", id)
	}
	return m, nil
}

func (f *fakeMapRepository) ListActive(ctx context.Context) ([]model.Map, error) {
	var out []model.Map
	for _, m := range f.maps {
		if m.Active {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMapRepository) CreateTiles(ctx context.Context, tiles []model.Tile) error {
	for i := range tiles {
		t := tiles[i]
		byCoord, ok := f.tiles[t.MapID]
		if !ok {
			byCoord = make(map[model.Coordinate]*model.Tile)
			f.tiles[t.MapID] = byCoord
		}
		tc := t
		byCoord[t.Coordinate] = &tc
	}
	return nil
}

func (f *fakeMapRepository) GetTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.Tile, error) {
	byCoord, ok := f.tiles[mapID]
	if !ok {
		return nil, gameerrors.NotFound("tile", "")
	}
	t, ok := byCoord[coord]
	if !ok {
		return nil, gameerrors.NotFound("tile", "")
	}
	return t, nil
}

func (f *fakeMapRepository) ListTiles(ctx context.Context, mapID string) ([]model.Tile, error) {
	var out []model.Tile
	for _, t := range f.tiles[mapID] {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeMapRepository) UpdateTile(ctx context.Context, t *model.Tile) error {
	byCoord, ok := f.tiles[t.MapID]
	if !ok {
		return gameerrors.NotFound("tile", "")
	}
	byCoord[t.Coordinate] = t
	return nil
}

func TestCreate_RejectsOutOfRangeDimensions(t *testing.T) {
	svc := mapsvc.NewService(newFakeMapRepository())
	_, err := svc.Create(context.Background(), mapsvc.CreateInput{Country: "US", Tier: model.TierTown, Width: 0, Height: 10})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), mapsvc.CreateInput{Country: "US", Tier: model.TierTown, Width: 101, Height: 10})
	assert.Error(t, err)
}

func TestCreate_RejectsUnknownTier(t *testing.T) {
	svc := mapsvc.NewService(newFakeMapRepository())
	_, err := svc.Create(context.Background(), mapsvc.CreateInput{Country: "US", Tier: model.Tier("province"), Width: 10, Height: 10})
	assert.Error(t, err)
}

func TestCreate_BatchInsertsFullTileGrid(t *testing.T) {
	repo := newFakeMapRepository()
	svc := mapsvc.NewService(repo)

	m, err := svc.Create(context.Background(), mapsvc.CreateInput{Country: "US", Tier: model.TierCity, Width: 4, Height: 3})
	require.NoError(t, err)

	tiles, err := repo.ListTiles(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, tiles, 12)
	assert.Equal(t, model.HeroThresholds{NetWorth: 20_000_000_00, Cash: 10_000_000_00, LandPercent: 8.0}, m.HeroThresholds)
}

func TestPaintTerrain_RefusesToOrphanOwnedTile(t *testing.T) {
	repo := newFakeMapRepository()
	svc := mapsvc.NewService(repo)

	owner := "company-1"
	require.NoError(t, repo.CreateTiles(context.Background(), []model.Tile{
		{MapID: "map-1", Coordinate: model.Coordinate{X: 0, Y: 0}, Terrain: model.TerrainFreeLand, OwnerID: &owner},
	}))

	_, err := svc.PaintTerrain(context.Background(), "map-1", model.Coordinate{X: 0, Y: 0}, model.TerrainWater, nil)
	assert.Error(t, err)
	ge := gameerrors.AsGameError(err)
	assert.Equal(t, gameerrors.KindPreconditionFailed, ge.Kind)
}

func TestPaintTerrain_AllowsRepaintOfUnownedTile(t *testing.T) {
	repo := newFakeMapRepository()
	svc := mapsvc.NewService(repo)

	require.NoError(t, repo.CreateTiles(context.Background(), []model.Tile{
		{MapID: "map-1", Coordinate: model.Coordinate{X: 0, Y: 0}, Terrain: model.TerrainFreeLand},
	}))

	tile, err := svc.PaintTerrain(context.Background(), "map-1", model.Coordinate{X: 0, Y: 0}, model.TerrainWater, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TerrainWater, tile.Terrain)
}
