package hero_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/hero"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/moderation"
)

type fakeCompanyRepo struct {
	byOwner map[string][]model.GameCompany
	byID    map[string]*model.GameCompany
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{byOwner: make(map[string][]model.GameCompany), byID: make(map[string]*model.GameCompany)}
}

func (f *fakeCompanyRepo) Create(ctx context.Context, c *model.GameCompany) error {
	f.byOwner[c.OwnerUserID] = append(f.byOwner[c.OwnerUserID], *c)
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}
func (f *fakeCompanyRepo) Get(ctx context.Context, id string) (*model.GameCompany, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, gameerrors.NotFound("game_company", id)
	}
	return c, nil
}
func (f *fakeCompanyRepo) ListByOwner(ctx context.Context, userID string) ([]model.GameCompany, error) {
	return f.byOwner[userID], nil
}
func (f *fakeCompanyRepo) ListByMap(ctx context.Context, mapID string) ([]model.GameCompany, error) {
	return nil, nil
}
func (f *fakeCompanyRepo) Update(ctx context.Context, c *model.GameCompany) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

type fakeGate struct {
	verdict moderation.Verdict
}

func (g fakeGate) Moderate(ctx context.Context, category moderation.Category, text string) (moderation.Result, error) {
	return moderation.Result{Verdict: g.verdict}, nil
}

func newHeroService(companies *fakeCompanyRepo, gate moderation.Gate) *hero.Service {
	return hero.NewService(companies, nil, nil, nil, nil, gate)
}

func TestCreateGameCompany_EnforcesPerUserCap(t *testing.T) {
	companies := newFakeCompanyRepo()
	svc := newHeroService(companies, fakeGate{verdict: moderation.VerdictAllowed})

	for i := 0; i < model.MaxGameCompaniesPerUser; i++ {
		_, err := svc.CreateGameCompany(context.Background(), "user-1", "Display", "Boss")
		require.NoError(t, err)
	}

	_, err := svc.CreateGameCompany(context.Background(), "user-1", "One Too Many", "Boss")
	assert.Error(t, err)
	ge := gameerrors.AsGameError(err)
	assert.Equal(t, gameerrors.KindPreconditionFailed, ge.Kind)
}

func TestCreateGameCompany_RejectsModeratedName(t *testing.T) {
	companies := newFakeCompanyRepo()
	svc := newHeroService(companies, fakeGate{verdict: moderation.VerdictRejected})

	_, err := svc.CreateGameCompany(context.Background(), "user-1", "Bad Name", "Boss")
	assert.Error(t, err)
}

func TestCreateGameCompany_BlocksOnPendingModeration(t *testing.T) {
	companies := newFakeCompanyRepo()
	svc := newHeroService(companies, fakeGate{verdict: moderation.VerdictPending})

	_, err := svc.CreateGameCompany(context.Background(), "user-1", "Display", "Boss")
	assert.Error(t, err)
}

func TestCreateGameCompany_SucceedsAndPersists(t *testing.T) {
	companies := newFakeCompanyRepo()
	svc := newHeroService(companies, fakeGate{verdict: moderation.VerdictAllowed})

	company, err := svc.CreateGameCompany(context.Background(), "user-1", "Display", "Boss")
	require.NoError(t, err)
	assert.Equal(t, 1, company.Level)
	assert.Equal(t, "user-1", company.OwnerUserID)

	stored, err := companies.Get(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Display", stored.DisplayName)
}
