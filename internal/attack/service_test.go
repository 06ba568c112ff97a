package attack_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citytycoon-backend/internal/attack"
	"citytycoon-backend/internal/dirty"
	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/moderation"
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

type fakeBuildings struct {
	byID map[string]*model.BuildingInstance
}

func newFakeBuildings() *fakeBuildings {
	return &fakeBuildings{byID: make(map[string]*model.BuildingInstance)}
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
	return nil, nil
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

type fakeSecurity struct {
	byBuilding map[string]*model.BuildingSecurity
}

func newFakeSecurity() *fakeSecurity { return &fakeSecurity{byBuilding: make(map[string]*model.BuildingSecurity)} }
func (f *fakeSecurity) Get(ctx context.Context, buildingID string) (*model.BuildingSecurity, error) {
	s, ok := f.byBuilding[buildingID]
	if !ok {
		return nil, gameerrors.NotFound("building_security", buildingID)
	}
	return s, nil
}
func (f *fakeSecurity) Upsert(ctx context.Context, s *model.BuildingSecurity) error {
	f.byBuilding[s.BuildingID] = s
	return nil
}
func (f *fakeSecurity) Delete(ctx context.Context, buildingID string) error {
	delete(f.byBuilding, buildingID)
	return nil
}

type fakeAttacks struct {
	byID map[string]*model.Attack
}

func newFakeAttacks() *fakeAttacks { return &fakeAttacks{byID: make(map[string]*model.Attack)} }
func (f *fakeAttacks) Create(ctx context.Context, a *model.Attack) error {
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}
func (f *fakeAttacks) Get(ctx context.Context, id string) (*model.Attack, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, gameerrors.NotFound("attack", id)
	}
	return a, nil
}
func (f *fakeAttacks) ListPendingModeration(ctx context.Context) ([]model.Attack, error) { return nil, nil }
func (f *fakeAttacks) Update(ctx context.Context, a *model.Attack) error {
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}
func (f *fakeAttacks) LastAgainstTarget(ctx context.Context, attackerID, targetBuildingID string) (*model.Attack, error) {
	return nil, gameerrors.NotFound("attack", "")
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

type fakeGate struct {
	verdict moderation.Verdict
}

func (g fakeGate) Moderate(ctx context.Context, category moderation.Category, text string) (moderation.Result, error) {
	return moderation.Result{Verdict: g.verdict}, nil
}

type attackHarness struct {
	companies *fakeCompanies
	buildings *fakeBuildings
	security  *fakeSecurity
	attacks   *fakeAttacks
	txns      *fakeTxns
	svc       *attack.Service
}

func newAttackHarness(catalog model.TrickCatalog, gate moderation.Gate) *attackHarness {
	companies := newFakeCompanies()
	buildings := newFakeBuildings()
	security := newFakeSecurity()
	attacks := newFakeAttacks()
	txns := &fakeTxns{}
	tracker := dirty.New(buildings)

	svc := attack.NewService(companies, buildings, security, attacks, txns, tracker, gate, catalog)
	return &attackHarness{companies: companies, buildings: buildings, security: security, attacks: attacks, txns: txns, svc: svc}
}

func mustMapID(id string) *string { return &id }

// TestApplyTrick_SufficientDamageCollapsesUndefendedBuilding exercises
// spec.md §4.4's 8-step attack flow through to a collapse: no security
// attached, a trick definition whose base damage alone crosses 100%.
func TestApplyTrick_SufficientDamageCollapsesUndefendedBuilding(t *testing.T) {
	catalog := model.TrickCatalog{
		model.TrickArson: {Type: model.TrickArson, Cost: 1_000_00, BaseDamagePercent: 100, DetectionProbability: 0, SetsBurning: true},
	}
	h := newAttackHarness(catalog, fakeGate{verdict: moderation.VerdictAllowed})

	attacker := &model.GameCompany{ID: "co-attacker", Cash: 10_000_00, MapID: mustMapID("map-1")}
	owner := &model.GameCompany{ID: "co-owner", Cash: 10_000_00, MapID: mustMapID("map-1")}
	require.NoError(t, h.companies.Create(context.Background(), attacker))
	require.NoError(t, h.companies.Create(context.Background(), owner))

	target := &model.BuildingInstance{
		ID: "b-1", MapID: "map-1", Coordinate: model.Coordinate{X: 1, Y: 1},
		TypeID: model.BuildingMotel, OwnerCompanyID: owner.ID,
	}
	require.NoError(t, h.buildings.Create(context.Background(), target))

	result, err := h.svc.ApplyTrick(context.Background(), attacker.ID, target.ID, model.TrickArson, "burn it down")
	require.NoError(t, err)
	assert.False(t, result.Detected)
	assert.True(t, result.Collapsed)

	updatedTarget, err := h.buildings.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, updatedTarget.Collapsed)
	assert.True(t, updatedTarget.Burning)
	assert.False(t, updatedTarget.Live())

	updatedAttacker, err := h.companies.Get(context.Background(), attacker.ID)
	require.NoError(t, err)
	assert.Equal(t, attacker.Cash-1_000_00, updatedAttacker.Cash)
	assert.False(t, updatedAttacker.Imprisoned)

	require.Len(t, h.txns.records, 1)
	assert.Equal(t, model.TxnAttack, h.txns.records[0].Type)
}

// TestApplyTrick_SecurityResistanceBlocksCollapse shows installed security
// damage resistance scaling down a trick that would otherwise collapse the
// building.
func TestApplyTrick_SecurityResistanceBlocksCollapse(t *testing.T) {
	catalog := model.TrickCatalog{
		model.TrickVandalism: {Type: model.TrickVandalism, Cost: 500_00, BaseDamagePercent: 100, DetectionProbability: 0},
	}
	h := newAttackHarness(catalog, fakeGate{verdict: moderation.VerdictAllowed})

	attacker := &model.GameCompany{ID: "co-attacker", Cash: 10_000_00, MapID: mustMapID("map-1")}
	owner := &model.GameCompany{ID: "co-owner", Cash: 10_000_00, MapID: mustMapID("map-1")}
	require.NoError(t, h.companies.Create(context.Background(), attacker))
	require.NoError(t, h.companies.Create(context.Background(), owner))

	target := &model.BuildingInstance{
		ID: "b-1", MapID: "map-1", Coordinate: model.Coordinate{X: 1, Y: 1},
		TypeID: model.BuildingMotel, OwnerCompanyID: owner.ID,
	}
	require.NoError(t, h.buildings.Create(context.Background(), target))
	require.NoError(t, h.security.Upsert(context.Background(), &model.BuildingSecurity{
		BuildingID: target.ID, Level: 3, DamageResistance: 0.40,
	}))

	result, err := h.svc.ApplyTrick(context.Background(), attacker.ID, target.ID, model.TrickVandalism, "")
	require.NoError(t, err)
	assert.False(t, result.Collapsed)

	updatedTarget, err := h.buildings.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, updatedTarget.DamagePercent)
	assert.True(t, updatedTarget.Live())
}

// TestApplyTrick_RejectsAttackOnOwnBuilding covers the self-attack guard.
func TestApplyTrick_RejectsAttackOnOwnBuilding(t *testing.T) {
	h := newAttackHarness(model.DefaultTrickCatalog(), fakeGate{verdict: moderation.VerdictAllowed})

	company := &model.GameCompany{ID: "co-1", Cash: 10_000_00, MapID: mustMapID("map-1")}
	require.NoError(t, h.companies.Create(context.Background(), company))

	target := &model.BuildingInstance{ID: "b-1", MapID: "map-1", Coordinate: model.Coordinate{X: 0, Y: 0}, TypeID: model.BuildingMotel, OwnerCompanyID: company.ID}
	require.NoError(t, h.buildings.Create(context.Background(), target))

	_, err := h.svc.ApplyTrick(context.Background(), company.ID, target.ID, model.TrickVandalism, "")
	assert.Error(t, err)
	ge := gameerrors.AsGameError(err)
	assert.Equal(t, gameerrors.KindPreconditionFailed, ge.Kind)
}

// TestApplyTrick_RejectsWhenAttackerImprisoned covers the imprisonment
// precondition: an unpaid fine blocks any further attack.
func TestApplyTrick_RejectsWhenAttackerImprisoned(t *testing.T) {
	h := newAttackHarness(model.DefaultTrickCatalog(), fakeGate{verdict: moderation.VerdictAllowed})

	attacker := &model.GameCompany{ID: "co-attacker", Cash: 10_000_00, MapID: mustMapID("map-1"), Imprisoned: true, Fine: 1_000_00}
	owner := &model.GameCompany{ID: "co-owner", Cash: 10_000_00, MapID: mustMapID("map-1")}
	require.NoError(t, h.companies.Create(context.Background(), attacker))
	require.NoError(t, h.companies.Create(context.Background(), owner))

	target := &model.BuildingInstance{ID: "b-1", MapID: "map-1", Coordinate: model.Coordinate{X: 0, Y: 0}, TypeID: model.BuildingMotel, OwnerCompanyID: owner.ID}
	require.NoError(t, h.buildings.Create(context.Background(), target))

	_, err := h.svc.ApplyTrick(context.Background(), attacker.ID, target.ID, model.TrickVandalism, "")
	assert.Error(t, err)
}

// TestPayFine_RestoresActionRights covers the imprisonment/payFine cycle.
func TestPayFine_RestoresActionRights(t *testing.T) {
	h := newAttackHarness(model.DefaultTrickCatalog(), fakeGate{verdict: moderation.VerdictAllowed})

	company := &model.GameCompany{ID: "co-1", Cash: 10_000_00, MapID: mustMapID("map-1"), Imprisoned: true, Fine: 4_000_00}
	require.NoError(t, h.companies.Create(context.Background(), company))

	err := h.svc.PayFine(context.Background(), company.ID)
	require.NoError(t, err)

	updated, err := h.companies.Get(context.Background(), company.ID)
	require.NoError(t, err)
	assert.False(t, updated.Imprisoned)
	assert.Equal(t, model.Cents(0), updated.Fine)
	assert.Equal(t, company.Cash-4_000_00, updated.Cash)
}

// TestRepairBuilding_ClearsDamageAndBurning covers a cleanup operation
// paying in proportion to severity.
func TestRepairBuilding_ClearsDamageAndBurning(t *testing.T) {
	h := newAttackHarness(model.DefaultTrickCatalog(), fakeGate{verdict: moderation.VerdictAllowed})

	owner := &model.GameCompany{ID: "co-owner", Cash: 10_000_00, MapID: mustMapID("map-1")}
	require.NoError(t, h.companies.Create(context.Background(), owner))

	target := &model.BuildingInstance{
		ID: "b-1", MapID: "map-1", Coordinate: model.Coordinate{X: 0, Y: 0}, TypeID: model.BuildingMotel,
		OwnerCompanyID: owner.ID, DamagePercent: 40, Burning: true,
	}
	require.NoError(t, h.buildings.Create(context.Background(), target))

	require.NoError(t, h.svc.RepairBuilding(context.Background(), owner.ID, target.ID))

	updated, err := h.buildings.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.DamagePercent)
	assert.False(t, updated.Burning)

	updatedOwner, err := h.companies.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Less(t, updatedOwner.Cash, owner.Cash)
}

