package tick_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/hero"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/moderation"
	"citytycoon-backend/internal/repository"
	"citytycoon-backend/internal/tick"
)

type fakeMaps struct {
	m     *model.Map
	tiles []model.Tile
}

func (f *fakeMaps) Create(ctx context.Context, m *model.Map) error { return nil }
func (f *fakeMaps) Get(ctx context.Context, id string) (*model.Map, error) {
	if f.m == nil || f.m.ID != id {
		return nil, gameerrors.NotFound("map", id)
	}
	cp := *f.m
	return &cp, nil
}
func (f *fakeMaps) ListActive(ctx context.Context) ([]model.Map, error) {
	if f.m == nil {
		return nil, nil
	}
	return []model.Map{*f.m}, nil
}
func (f *fakeMaps) CreateTiles(ctx context.Context, tiles []model.Tile) error { return nil }
func (f *fakeMaps) GetTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.Tile, error) {
	return nil, gameerrors.NotFound("tile", "")
}
func (f *fakeMaps) ListTiles(ctx context.Context, mapID string) ([]model.Tile, error) {
	return f.tiles, nil
}
func (f *fakeMaps) UpdateTile(ctx context.Context, t *model.Tile) error { return nil }

type fakeBuildings struct {
	byID map[string]*model.BuildingInstance
}

func newFakeBuildings(bs ...*model.BuildingInstance) *fakeBuildings {
	f := &fakeBuildings{byID: make(map[string]*model.BuildingInstance)}
	for _, b := range bs {
		cp := *b
		f.byID[b.ID] = &cp
	}
	return f
}
func (f *fakeBuildings) Create(ctx context.Context, b *model.BuildingInstance) error {
	cp := *b
	f.byID[b.ID] = &cp
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
	for _, b := range f.byID {
		if b.MapID == mapID && b.Coordinate == coord {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gameerrors.NotFound("building", "")
}
func (f *fakeBuildings) ListByMap(ctx context.Context, mapID string) ([]model.BuildingInstance, error) {
	var out []model.BuildingInstance
	for _, b := range f.byID {
		if b.MapID == mapID {
			out = append(out, *b)
		}
	}
	return out, nil
}
func (f *fakeBuildings) ListDirty(ctx context.Context, mapID string) ([]model.BuildingInstance, error) {
	return nil, nil
}
func (f *fakeBuildings) ListByOwner(ctx context.Context, companyID string) ([]model.BuildingInstance, error) {
	return nil, nil
}
func (f *fakeBuildings) CountByType(ctx context.Context, mapID string, typeID model.BuildingTypeID) (int, error) {
	return 0, nil
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

type fakeCompanies struct {
	byID map[string]*model.GameCompany
}

func newFakeCompanies(cs ...*model.GameCompany) *fakeCompanies {
	f := &fakeCompanies{byID: make(map[string]*model.GameCompany)}
	for _, c := range cs {
		cp := *c
		f.byID[c.ID] = &cp
	}
	return f
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
	var out []model.GameCompany
	for _, c := range f.byID {
		if c.MapID != nil && *c.MapID == mapID {
			out = append(out, *c)
		}
	}
	return out, nil
}
func (f *fakeCompanies) Update(ctx context.Context, c *model.GameCompany) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

type fakeSecurity struct{}

func (f *fakeSecurity) Get(ctx context.Context, buildingID string) (*model.BuildingSecurity, error) {
	return nil, gameerrors.NotFound("security", buildingID)
}
func (f *fakeSecurity) Upsert(ctx context.Context, s *model.BuildingSecurity) error { return nil }
func (f *fakeSecurity) Delete(ctx context.Context, buildingID string) error        { return nil }

type fakeStats struct {
	rows []repository.CompanyStatistics
}

func (f *fakeStats) Upsert(ctx context.Context, s repository.CompanyStatistics) error {
	f.rows = append(f.rows, s)
	return nil
}
func (f *fakeStats) Latest(ctx context.Context, companyID, mapID string) (*repository.CompanyStatistics, error) {
	return nil, gameerrors.NotFound("statistics", companyID)
}

type fakeTxns struct{}

func (f *fakeTxns) Append(ctx context.Context, t *model.TransactionRecord) error { return nil }
func (f *fakeTxns) ListByCompany(ctx context.Context, companyID string, limit int) ([]model.TransactionRecord, error) {
	return nil, nil
}

type fakeGate struct{}

func (fakeGate) Moderate(ctx context.Context, category moderation.Category, text string) (moderation.Result, error) {
	return moderation.Result{Verdict: moderation.VerdictAllowed}, nil
}

type fakeTicks struct {
	current int64
	locks   int
}

func (f *fakeTicks) CurrentTick(ctx context.Context) (int64, error) { return f.current, nil }
func (f *fakeTicks) AdvanceTick(ctx context.Context, targetTick int64) (int64, error) {
	if targetTick > f.current {
		f.current = targetTick
	}
	return f.current, nil
}
func (f *fakeTicks) LockMap(ctx context.Context, mapID string) (func(), error) {
	f.locks++
	return func() {}, nil
}

func newHarness(m *model.Map, buildings *fakeBuildings, companies *fakeCompanies) (*tick.Processor, *fakeTicks, *fakeStats) {
	ticks := &fakeTicks{}
	stats := &fakeStats{}
	heroSvc := hero.NewService(companies, &fakeMaps{m: m}, buildings, stats, &fakeTxns{}, fakeGate{})
	p := tick.NewProcessor(&fakeMaps{m: m}, buildings, companies, &fakeSecurity{}, stats, ticks, heroSvc,
		model.DefaultCatalog(), time.Minute)
	return p, ticks, stats
}

func testMap(id string) *model.Map {
	return &model.Map{ID: id, Country: "testland", Tier: model.TierTown, Width: 4, Height: 4, Active: true}
}

func TestRun_EarningsAppliedOncePerTickInstant(t *testing.T) {
	m := testMap("map-1")
	company := &model.GameCompany{ID: "co-1", MapID: &m.ID, Cash: 1000}
	building := &model.BuildingInstance{
		ID: "b-1", MapID: m.ID, Coordinate: model.Coordinate{X: 0, Y: 0},
		TypeID: model.BuildingMarketStall, OwnerCompanyID: company.ID,
		CalculatedProfit: 500,
	}
	buildings := newFakeBuildings(building)
	companies := newFakeCompanies(company)
	p, ticks, _ := newHarness(m, buildings, companies)

	require.NoError(t, p.Run())
	afterFirst, err := companies.Get(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Greater(t, afterFirst.Cash, company.Cash, "earnings pass should have credited cash")

	firstTick := ticks.current

	require.NoError(t, p.Run())
	afterSecond, err := companies.Get(context.Background(), company.ID)
	require.NoError(t, err)

	assert.Equal(t, firstTick, ticks.current, "re-running within the same cadence window must name the same tick instant")
	assert.Equal(t, afterFirst.Cash, afterSecond.Cash, "a second Run for the same tick instant must not pay earnings twice")

	b, err := buildings.Get(context.Background(), building.ID)
	require.NoError(t, err)
	assert.Equal(t, firstTick, b.LastTickApplied)
}

func TestRun_DecayAppliedOncePerTickInstant(t *testing.T) {
	m := testMap("map-2")
	company := &model.GameCompany{ID: "co-2", MapID: &m.ID, Cash: 0}
	building := &model.BuildingInstance{
		ID: "b-2", MapID: m.ID, Coordinate: model.Coordinate{X: 1, Y: 1},
		TypeID: model.BuildingMarketStall, OwnerCompanyID: company.ID,
		DamagePercent: 10,
	}
	buildings := newFakeBuildings(building)
	companies := newFakeCompanies(company)
	p, _, _ := newHarness(m, buildings, companies)

	require.NoError(t, p.Run())
	afterFirst, err := buildings.Get(context.Background(), building.ID)
	require.NoError(t, err)
	assert.Greater(t, afterFirst.DamagePercent, building.DamagePercent)

	require.NoError(t, p.Run())
	afterSecond, err := buildings.Get(context.Background(), building.ID)
	require.NoError(t, err)
	assert.Equal(t, afterFirst.DamagePercent, afterSecond.DamagePercent, "a second Run for the same tick instant must not decay twice")
}

func TestRun_CollapseAtFullDamage(t *testing.T) {
	m := testMap("map-3")
	company := &model.GameCompany{ID: "co-3", MapID: &m.ID}
	building := &model.BuildingInstance{
		ID: "b-3", MapID: m.ID, Coordinate: model.Coordinate{X: 2, Y: 2},
		TypeID: model.BuildingMarketStall, OwnerCompanyID: company.ID,
		DamagePercent: 99, Burning: true,
	}
	buildings := newFakeBuildings(building)
	companies := newFakeCompanies(company)
	p, _, _ := newHarness(m, buildings, companies)

	require.NoError(t, p.Run())
	after, err := buildings.Get(context.Background(), building.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, after.DamagePercent)
	assert.True(t, after.Collapsed)

	require.NoError(t, p.Run())
	stillAfter, err := buildings.Get(context.Background(), building.ID)
	require.NoError(t, err)
	assert.True(t, stillAfter.Collapsed)
}

func TestRun_InactivityAndStatisticsAdvanceEveryCall(t *testing.T) {
	m := testMap("map-4")
	company := &model.GameCompany{ID: "co-4", MapID: &m.ID, TicksSinceAction: 0}
	companies := newFakeCompanies(company)
	buildings := newFakeBuildings()
	p, _, stats := newHarness(m, buildings, companies)

	require.NoError(t, p.Run())
	require.NoError(t, p.Run())

	after, err := companies.Get(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.TicksSinceAction, "inactivity pass is not gated on tick idempotence")
	assert.Len(t, stats.rows, 2, "statistics pass snapshots on every Run call")
}
