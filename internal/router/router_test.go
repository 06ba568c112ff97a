package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citytycoon-backend/internal/auth"
	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/ratelimit"
	"citytycoon-backend/internal/router"
)

type fakeUsers struct {
	byID map[string]*model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: make(map[string]*model.User)} }

func (f *fakeUsers) Create(ctx context.Context, u *model.User) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}
func (f *fakeUsers) Get(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, gameerrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}
func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gameerrors.NotFound("user", "")
}
func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, gameerrors.NotFound("user", "")
}
func (f *fakeUsers) GetByInvitationToken(ctx context.Context, token string) (*model.User, error) {
	return nil, gameerrors.NotFound("user", "")
}
func (f *fakeUsers) GetByMagicLinkToken(ctx context.Context, token string) (*model.User, error) {
	return nil, gameerrors.NotFound("user", "")
}
func (f *fakeUsers) Update(ctx context.Context, u *model.User) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}
func (f *fakeUsers) SoftDelete(ctx context.Context, id string) error { return nil }
func (f *fakeUsers) ListByTenant(ctx context.Context, tenantID string) ([]model.User, error) {
	return nil, nil
}

type fakeCompanies struct{}

func newFakeCompanies() *fakeCompanies { return &fakeCompanies{} }

func (f *fakeCompanies) Create(ctx context.Context, c *model.GameCompany) error { return nil }
func (f *fakeCompanies) Get(ctx context.Context, id string) (*model.GameCompany, error) {
	return nil, gameerrors.NotFound("game_company", id)
}
func (f *fakeCompanies) ListByOwner(ctx context.Context, userID string) ([]model.GameCompany, error) {
	return []model.GameCompany{}, nil
}
func (f *fakeCompanies) ListByMap(ctx context.Context, mapID string) ([]model.GameCompany, error) {
	return nil, nil
}
func (f *fakeCompanies) Update(ctx context.Context, c *model.GameCompany) error { return nil }

func newTestEngine(t *testing.T) (*router.Deps, http.Handler) {
	t.Helper()
	tokens := auth.NewTokenIssuer("test-secret")
	d := &router.Deps{
		Tokens:               tokens,
		Users:                newFakeUsers(),
		AuthLimiter:          ratelimit.NoopLimiter{},
		AuthenticatedLimiter: ratelimit.NoopLimiter{},
		AnonymousLimiter:     ratelimit.NoopLimiter{},
	}
	return d, router.New(d)
}

func TestHealthEndpoint_ReturnsOK(t *testing.T) {
	_, engine := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestAuthenticatedRoute_RejectsMissingBearerToken(t *testing.T) {
	_, engine := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestAuthenticatedRoute_RejectsInvalidBearerToken(t *testing.T) {
	_, engine := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatedRoute_AcceptsValidBearerToken(t *testing.T) {
	d, engine := newTestEngine(t)
	d.Companies = newFakeCompanies()
	users := d.Users.(*fakeUsers)
	user := &model.User{ID: "user-1", Email: "a@b.com", Username: "alice", Role: model.RoleUser, TenantID: "tenant-1"}
	require.NoError(t, users.Create(context.Background(), user))

	token, _, err := d.Tokens.Issue(user, "", "session-1", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/game-companies", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoute_RejectsNonMasterAdmin(t *testing.T) {
	d, engine := newTestEngine(t)
	users := d.Users.(*fakeUsers)
	user := &model.User{ID: "user-1", Email: "a@b.com", Username: "alice", Role: model.RoleUser, TenantID: "tenant-1"}
	require.NoError(t, users.Create(context.Background(), user))

	token, _, err := d.Tokens.Issue(user, "", "session-1", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/invitations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
