package action_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citytycoon-backend/internal/action"
	"citytycoon-backend/internal/dirty"
	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

type fakeCompanies struct {
	byID map[string]*model.GameCompany
}

func newFakeCompanies() *fakeCompanies {
	return &fakeCompanies{byID: make(map[string]*model.GameCompany)}
}

func (f *fakeCompanies) Create(ctx context.Context, c *model.GameCompany) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}
func (f *fakeCompanies) Get(ctx context.Context, id string) (*model.GameCompany, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, gameerrors.NotFound("game_company", id)
	}
	cp := *c
	return &cp, nil
}
func (f *fakeCompanies) ListByOwner(ctx context.Context, userID string) ([]model.GameCompany, error) {
	return nil, nil
}
func (f *fakeCompanies) ListByMap(ctx context.Context, mapID string) ([]model.GameCompany, error) {
	return nil, nil
}
func (f *fakeCompanies) Update(ctx context.Context, c *model.GameCompany) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

type fakeMaps struct {
	maps  map[string]*model.Map
	tiles map[string]map[model.Coordinate]*model.Tile
}

func newFakeMaps() *fakeMaps {
	return &fakeMaps{maps: make(map[string]*model.Map), tiles: make(map[string]map[model.Coordinate]*model.Tile)}
}

func (f *fakeMaps) Create(ctx context.Context, m *model.Map) error {
	f.maps[m.ID] = m
	return nil
}
func (f *fakeMaps) Get(ctx context.Context, id string) (*model.Map, error) {
	m, ok := f.maps[id]
	if !ok {
		return nil, gameerrors.NotFound("map", id)
	}
	return m, nil
}
func (f *fakeMaps) ListActive(ctx context.Context) ([]model.Map, error) { return nil, nil }
func (f *fakeMaps) CreateTiles(ctx context.Context, tiles []model.Tile) error {
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
func (f *fakeMaps) GetTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.Tile, error) {
	byCoord, ok := f.tiles[mapID]
	if !ok {
		return nil, gameerrors.NotFound("tile", "")
	}
	t, ok := byCoord[coord]
	if !ok {
		return nil, gameerrors.NotFound("tile", "")
	}
	cp := *t
	return &cp, nil
}
func (f *fakeMaps) ListTiles(ctx context.Context, mapID string) ([]model.Tile, error) {
	var out []model.Tile
	for _, t := range f.tiles[mapID] {
		out = append(out, *t)
	}
	return out, nil
}
func (f *fakeMaps) UpdateTile(ctx context.Context, t *model.Tile) error {
	byCoord, ok := f.tiles[t.MapID]
	if !ok {
		return gameerrors.NotFound("tile", "")
	}
	cp := *t
	byCoord[t.Coordinate] = &cp
	return nil
}

type fakeBuildings struct {
	byID   map[string]*model.BuildingInstance
	byTile map[string]map[model.Coordinate]string
}

func newFakeBuildings() *fakeBuildings {
	return &fakeBuildings{byID: make(map[string]*model.BuildingInstance), byTile: make(map[string]map[model.Coordinate]string)}
}

func (f *fakeBuildings) Create(ctx context.Context, b *model.BuildingInstance) error {
	cp := *b
	f.byID[b.ID] = &cp
	byCoord, ok := f.byTile[b.MapID]
	if !ok {
		byCoord = make(map[model.Coordinate]string)
		f.byTile[b.MapID] = byCoord
	}
	byCoord[b.Coordinate] = b.ID
	return nil
}
func (f *fakeBuildings) Get(ctx context.Context, id string) (*model.BuildingInstance, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, gameerrors.NotFound("building", id)
	}
	cp := *b
	return &cp, nil
}
func (f *fakeBuildings) GetByTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.BuildingInstance, error) {
	byCoord, ok := f.byTile[mapID]
	if !ok {
		return nil, gameerrors.NotFound("building", "")
	}
	id, ok := byCoord[coord]
	if !ok {
		return nil, gameerrors.NotFound("building", "")
	}
	return f.Get(ctx, id)
}
func (f *fakeBuildings) ListByMap(ctx context.Context, mapID string) ([]model.BuildingInstance, error) {
	var out []model.BuildingInstance
	for coord, id := range f.byTile[mapID] {
		_ = coord
		out = append(out, *f.byID[id])
	}
	return out, nil
}
func (f *fakeBuildings) ListDirty(ctx context.Context, mapID string) ([]model.BuildingInstance, error) {
	var out []model.BuildingInstance
	for _, b := range f.byID {
		if b.MapID == mapID && b.NeedsProfitRecalc {
			out = append(out, *b)
		}
	}
	return out, nil
}
func (f *fakeBuildings) ListByOwner(ctx context.Context, companyID string) ([]model.BuildingInstance, error) {
	var out []model.BuildingInstance
	for _, b := range f.byID {
		if b.OwnerCompanyID == companyID {
			out = append(out, *b)
		}
	}
	return out, nil
}
func (f *fakeBuildings) CountByType(ctx context.Context, mapID string, typeID model.BuildingTypeID) (int, error) {
	count := 0
	for _, b := range f.byID {
		if b.MapID == mapID && b.TypeID == typeID && b.Live() {
			count++
		}
	}
	return count, nil
}
func (f *fakeBuildings) Update(ctx context.Context, b *model.BuildingInstance) error {
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}
func (f *fakeBuildings) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeSecurity struct{}

func (f *fakeSecurity) Get(ctx context.Context, buildingID string) (*model.BuildingSecurity, error) {
	return nil, gameerrors.NotFound("building_security", buildingID)
}
func (f *fakeSecurity) Upsert(ctx context.Context, s *model.BuildingSecurity) error { return nil }
func (f *fakeSecurity) Delete(ctx context.Context, buildingID string) error        { return nil }

type fakeMarket struct {
	byID map[string]*model.MarketListing
}

func newFakeMarket() *fakeMarket { return &fakeMarket{byID: make(map[string]*model.MarketListing)} }

func (f *fakeMarket) Create(ctx context.Context, l *model.MarketListing) error {
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}
func (f *fakeMarket) Get(ctx context.Context, id string) (*model.MarketListing, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, gameerrors.NotFound("market_listing", id)
	}
	cp := *l
	return &cp, nil
}
func (f *fakeMarket) GetActiveForSubject(ctx context.Context, mapID string, coord model.Coordinate) (*model.MarketListing, error) {
	for _, l := range f.byID {
		if l.MapID == mapID && l.Coordinate == coord && l.Status == model.ListingActive {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gameerrors.NotFound("market_listing", "")
}
func (f *fakeMarket) Update(ctx context.Context, l *model.MarketListing) error {
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

type fakeTxns struct {
	records []model.TransactionRecord
}

func (f *fakeTxns) Append(ctx context.Context, t *model.TransactionRecord) error {
	f.records = append(f.records, *t)
	return nil
}
func (f *fakeTxns) ListByCompany(ctx context.Context, companyID string, limit int) ([]model.TransactionRecord, error) {
	return f.records, nil
}

type fakeLevelChecker struct {
	calls []string
}

func (f *fakeLevelChecker) CheckLevelUp(ctx context.Context, companyID string) error {
	f.calls = append(f.calls, companyID)
	return nil
}

type harness struct {
	companies *fakeCompanies
	maps      *fakeMaps
	buildings *fakeBuildings
	security  *fakeSecurity
	market    *fakeMarket
	txns      *fakeTxns
	levels    *fakeLevelChecker
	svc       *action.Service
}

func newHarness() *harness {
	companies := newFakeCompanies()
	maps := newFakeMaps()
	buildings := newFakeBuildings()
	security := &fakeSecurity{}
	market := newFakeMarket()
	txns := &fakeTxns{}
	levels := &fakeLevelChecker{}
	tracker := dirty.New(buildings)

	svc := action.NewService(companies, maps, buildings, security, market, txns, tracker, levels,
		model.DefaultCatalog(), model.DefaultSecurityCatalog())

	return &harness{companies: companies, maps: maps, buildings: buildings, security: security,
		market: market, txns: txns, levels: levels, svc: svc}
}

func (h *harness) seedMap(mapID string, tier model.Tier, width, height int) {
	_ = h.maps.Create(context.Background(), &model.Map{ID: mapID, Tier: tier, Width: width, Height: height, Active: true})
}

func (h *harness) seedTile(mapID string, coord model.Coordinate, terrain model.Terrain) {
	_ = h.maps.CreateTiles(context.Background(), []model.Tile{{MapID: mapID, Coordinate: coord, Terrain: terrain}})
}

func (h *harness) seedCompany(id, mapID string, cash model.Cents) *model.GameCompany {
	c := &model.GameCompany{ID: id, OwnerUserID: "user-" + id, Cash: cash, Level: 5, MapID: &mapID, TierJoined: model.TierTown}
	_ = h.companies.Create(context.Background(), c)
	return c
}

func (h *harness) seedOwnedTile(mapID string, coord model.Coordinate, terrain model.Terrain, ownerID string) {
	owner := ownerID
	_ = h.maps.CreateTiles(context.Background(), []model.Tile{{MapID: mapID, Coordinate: coord, Terrain: terrain, OwnerID: &owner}})
}

func (h *harness) seedLiveBuilding(mapID string, coord model.Coordinate, ownerID string) *model.BuildingInstance {
	b := &model.BuildingInstance{ID: uuid.NewString(), MapID: mapID, Coordinate: coord, TypeID: model.BuildingMarketStall, OwnerCompanyID: ownerID}
	_ = h.buildings.Create(context.Background(), b)
	return b
}

// TestBuildAndEarn_BuyLandThenBuildThenSellToState exercises spec.md §8's
// "Build-and-earn" scenario end to end: a company buys a vacant tile,
// builds on it (pricing the new building via the adjacency engine), then
// liquidates it back to the state.
func TestBuildAndEarn_BuyLandThenBuildThenSellToState(t *testing.T) {
	h := newHarness()
	mapID := "map-1"
	coord := model.Coordinate{X: 2, Y: 2}
	h.seedMap(mapID, model.TierTown, 5, 5)
	h.seedTile(mapID, coord, model.TerrainFreeLand)
	company := h.seedCompany("co-1", mapID, 10_000_00)

	tile, err := h.svc.BuyLand(context.Background(), company.ID, coord)
	require.NoError(t, err)
	require.NotNil(t, tile.OwnerID)
	assert.Equal(t, company.ID, *tile.OwnerID)

	afterBuy, err := h.companies.Get(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Less(t, afterBuy.Cash, company.Cash)
	assert.Equal(t, 1, afterBuy.TotalActions)

	building, err := h.svc.Build(context.Background(), company.ID, coord, model.BuildingMarketStall, nil)
	require.NoError(t, err)
	assert.True(t, building.Live())
	assert.Equal(t, company.ID, building.OwnerCompanyID)

	afterBuild, err := h.companies.Get(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Less(t, afterBuild.Cash, afterBuy.Cash)
	assert.Equal(t, 2, afterBuild.TotalActions)

	payout, err := h.svc.SellToState(context.Background(), company.ID, coord)
	require.NoError(t, err)
	assert.Greater(t, payout, model.Cents(0))

	soldTile, err := h.maps.GetTile(context.Background(), mapID, coord)
	require.NoError(t, err)
	assert.Nil(t, soldTile.OwnerID)

	demolished, err := h.buildings.GetByTile(context.Background(), mapID, coord)
	require.NoError(t, err)
	assert.False(t, demolished.Live())

	assert.Len(t, h.txns.records, 3)
	assert.Equal(t, model.TxnBuyLand, h.txns.records[0].Type)
	assert.Equal(t, model.TxnBuild, h.txns.records[1].Type)
	assert.Equal(t, model.TxnSellToState, h.txns.records[2].Type)
	assert.Len(t, h.levels.calls, 3)
}

func TestBuyLand_RejectsAlreadyOwnedTile(t *testing.T) {
	h := newHarness()
	mapID := "map-1"
	coord := model.Coordinate{X: 0, Y: 0}
	h.seedMap(mapID, model.TierTown, 3, 3)
	h.seedTile(mapID, coord, model.TerrainFreeLand)
	a := h.seedCompany("co-a", mapID, 10_000_00)
	h.seedCompany("co-b", mapID, 10_000_00)

	_, err := h.svc.BuyLand(context.Background(), a.ID, coord)
	require.NoError(t, err)

	_, err = h.svc.BuyLand(context.Background(), "co-b", coord)
	assert.Error(t, err)
	ge := gameerrors.AsGameError(err)
	assert.Equal(t, gameerrors.KindPreconditionFailed, ge.Kind)
}

func TestBuyLand_RejectsInsufficientCash(t *testing.T) {
	h := newHarness()
	mapID := "map-1"
	coord := model.Coordinate{X: 0, Y: 0}
	h.seedMap(mapID, model.TierTown, 3, 3)
	h.seedTile(mapID, coord, model.TerrainFreeLand)
	company := h.seedCompany("co-1", mapID, 1)

	_, err := h.svc.BuyLand(context.Background(), company.ID, coord)
	assert.Error(t, err)
	ge := gameerrors.AsGameError(err)
	assert.Equal(t, gameerrors.KindPreconditionFailed, ge.Kind)
}

func TestBuild_RejectsWhenCompanyDoesNotOwnTile(t *testing.T) {
	h := newHarness()
	mapID := "map-1"
	coord := model.Coordinate{X: 0, Y: 0}
	h.seedMap(mapID, model.TierTown, 3, 3)
	h.seedTile(mapID, coord, model.TerrainFreeLand)
	company := h.seedCompany("co-1", mapID, 10_000_00)

	_, err := h.svc.Build(context.Background(), company.ID, coord, model.BuildingMarketStall, nil)
	assert.Error(t, err)
	ge := gameerrors.AsGameError(err)
	assert.Equal(t, gameerrors.KindPreconditionFailed, ge.Kind)
}

func TestListForSaleThenBuyProperty_TransfersOwnershipAndCash(t *testing.T) {
	h := newHarness()
	mapID := "map-1"
	coord := model.Coordinate{X: 1, Y: 1}
	h.seedMap(mapID, model.TierTown, 3, 3)
	h.seedTile(mapID, coord, model.TerrainFreeLand)
	seller := h.seedCompany("co-seller", mapID, 10_000_00)
	buyer := h.seedCompany("co-buyer", mapID, 10_000_00)

	_, err := h.svc.BuyLand(context.Background(), seller.ID, coord)
	require.NoError(t, err)

	listing, err := h.svc.ListForSale(context.Background(), seller.ID, coord, 5_000_00)
	require.NoError(t, err)
	assert.Equal(t, model.ListingActive, listing.Status)

	err = h.svc.BuyProperty(context.Background(), buyer.ID, listing.ID, 5_000_00)
	require.NoError(t, err)

	tile, err := h.maps.GetTile(context.Background(), mapID, coord)
	require.NoError(t, err)
	require.NotNil(t, tile.OwnerID)
	assert.Equal(t, buyer.ID, *tile.OwnerID)

	updatedBuyer, err := h.companies.Get(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.Cash-5_000_00, updatedBuyer.Cash)

	updatedSeller, err := h.companies.Get(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, seller.Cash-action.LandCost(model.TierTown, model.TerrainFreeLand, 0)+5_000_00, updatedSeller.Cash)

	updatedListing, err := h.market.Get(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingSold, updatedListing.Status)
}

// TestImprisonedCompany_BlockedFromEveryActionLayerOperation exercises
// spec.md §8 scenario 4: imprisonment blocks any subsequent Action-Layer
// call, not just Buy Land.
func TestImprisonedCompany_BlockedFromEveryActionLayerOperation(t *testing.T) {
	assertImprisoned := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		ge := gameerrors.AsGameError(err)
		assert.Equal(t, gameerrors.KindPreconditionFailed, ge.Kind)
	}

	t.Run("Build", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		company := h.seedCompany("co-1", mapID, 10_000_00)
		h.seedOwnedTile(mapID, coord, model.TerrainFreeLand, company.ID)
		company.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), company))

		_, err := h.svc.Build(context.Background(), company.ID, coord, model.BuildingMarketStall, nil)
		assertImprisoned(t, err)
	})

	t.Run("SellToState", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		company := h.seedCompany("co-1", mapID, 10_000_00)
		h.seedOwnedTile(mapID, coord, model.TerrainFreeLand, company.ID)
		company.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), company))

		_, err := h.svc.SellToState(context.Background(), company.ID, coord)
		assertImprisoned(t, err)
	})

	t.Run("ListForSale", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		company := h.seedCompany("co-1", mapID, 10_000_00)
		h.seedOwnedTile(mapID, coord, model.TerrainFreeLand, company.ID)
		company.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), company))

		_, err := h.svc.ListForSale(context.Background(), company.ID, coord, 1_000_00)
		assertImprisoned(t, err)
	})

	t.Run("CancelListing", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		company := h.seedCompany("co-1", mapID, 10_000_00)
		listing := &model.MarketListing{ID: uuid.NewString(), MapID: mapID, Coordinate: coord, SellerID: company.ID, AskingPrice: 1_000_00, Status: model.ListingActive}
		require.NoError(t, h.market.Create(context.Background(), listing))
		company.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), company))

		err := h.svc.CancelListing(context.Background(), company.ID, listing.ID)
		assertImprisoned(t, err)
	})

	t.Run("BuyProperty", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		seller := h.seedCompany("co-seller", mapID, 10_000_00)
		buyer := h.seedCompany("co-buyer", mapID, 10_000_00)
		h.seedOwnedTile(mapID, coord, model.TerrainFreeLand, seller.ID)
		listing := &model.MarketListing{ID: uuid.NewString(), MapID: mapID, Coordinate: coord, SellerID: seller.ID, AskingPrice: 1_000_00, Status: model.ListingActive}
		require.NoError(t, h.market.Create(context.Background(), listing))
		buyer.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), buyer))

		err := h.svc.BuyProperty(context.Background(), buyer.ID, listing.ID, 1_000_00)
		assertImprisoned(t, err)
	})

	t.Run("Demolish", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		company := h.seedCompany("co-1", mapID, 10_000_00)
		h.seedLiveBuilding(mapID, coord, company.ID)
		company.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), company))

		err := h.svc.Demolish(context.Background(), company.ID, coord)
		assertImprisoned(t, err)
	})

	t.Run("Takeover", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		owner := h.seedCompany("co-owner", mapID, 10_000_00)
		taker := h.seedCompany("co-taker", mapID, 10_000_00)
		h.seedLiveBuilding(mapID, coord, owner.ID)
		taker.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), taker))

		err := h.svc.Takeover(context.Background(), taker.ID, coord)
		assertImprisoned(t, err)
	})

	t.Run("PurchaseSecurity", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		company := h.seedCompany("co-1", mapID, 10_000_00)
		building := h.seedLiveBuilding(mapID, coord, company.ID)
		company.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), company))

		_, err := h.svc.PurchaseSecurity(context.Background(), company.ID, building.ID, 1)
		assertImprisoned(t, err)
	})

	t.Run("RemoveSecurity", func(t *testing.T) {
		h := newHarness()
		mapID := "map-1"
		coord := model.Coordinate{X: 0, Y: 0}
		h.seedMap(mapID, model.TierTown, 3, 3)
		company := h.seedCompany("co-1", mapID, 10_000_00)
		building := h.seedLiveBuilding(mapID, coord, company.ID)
		company.Imprisoned = true
		require.NoError(t, h.companies.Update(context.Background(), company))

		err := h.svc.RemoveSecurity(context.Background(), company.ID, building.ID)
		assertImprisoned(t, err)
	})
}
