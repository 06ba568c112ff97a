// Package repository declares the Data Store collaborator contracts
// (spec.md §6 C1): ACID storage of entities, uniqueness/foreign-key
// enforcement, parameterized queries. The interfaces are the seam between
// every other component and whatever relational store backs a deployment;
// internal/store/postgres provides the concrete implementation.
package repository

import (
	"context"

	"citytycoon-backend/internal/model"
)

// TenantRepository stores Tenants (organizational scope for Users).
type TenantRepository interface {
	Create(ctx context.Context, t *model.Tenant) error
	Get(ctx context.Context, id string) (*model.Tenant, error)
	Update(ctx context.Context, t *model.Tenant) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores Users.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByInvitationToken(ctx context.Context, token string) (*model.User, error)
	GetByMagicLinkToken(ctx context.Context, token string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	SoftDelete(ctx context.Context, id string) error
	ListByTenant(ctx context.Context, tenantID string) ([]model.User, error)
}

// SessionRepository stores Sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// MapRepository stores Maps and their Tiles.
type MapRepository interface {
	Create(ctx context.Context, m *model.Map) error
	Get(ctx context.Context, id string) (*model.Map, error)
	ListActive(ctx context.Context) ([]model.Map, error)

	// CreateTiles batch-inserts the initial width*height tiles for a newly
	// created map, chunked per spec.md §6's per-statement parameter cap.
	CreateTiles(ctx context.Context, tiles []model.Tile) error
	GetTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.Tile, error)
	ListTiles(ctx context.Context, mapID string) ([]model.Tile, error)
	UpdateTile(ctx context.Context, t *model.Tile) error
}

// BuildingRepository stores BuildingInstances.
type BuildingRepository interface {
	Create(ctx context.Context, b *model.BuildingInstance) error
	Get(ctx context.Context, id string) (*model.BuildingInstance, error)
	GetByTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.BuildingInstance, error)
	ListByMap(ctx context.Context, mapID string) ([]model.BuildingInstance, error)
	ListDirty(ctx context.Context, mapID string) ([]model.BuildingInstance, error)
	ListByOwner(ctx context.Context, companyID string) ([]model.BuildingInstance, error)
	CountByType(ctx context.Context, mapID string, typeID model.BuildingTypeID) (int, error)
	Update(ctx context.Context, b *model.BuildingInstance) error
	Delete(ctx context.Context, id string) error
}

// SecurityRepository stores BuildingSecurity attachments.
type SecurityRepository interface {
	Get(ctx context.Context, buildingID string) (*model.BuildingSecurity, error)
	Upsert(ctx context.Context, s *model.BuildingSecurity) error
	Delete(ctx context.Context, buildingID string) error
}

// GameCompanyRepository stores GameCompanies.
type GameCompanyRepository interface {
	Create(ctx context.Context, c *model.GameCompany) error
	Get(ctx context.Context, id string) (*model.GameCompany, error)
	ListByOwner(ctx context.Context, userID string) ([]model.GameCompany, error)
	ListByMap(ctx context.Context, mapID string) ([]model.GameCompany, error)
	Update(ctx context.Context, c *model.GameCompany) error
}

// AttackRepository stores Attacks.
type AttackRepository interface {
	Create(ctx context.Context, a *model.Attack) error
	Get(ctx context.Context, id string) (*model.Attack, error)
	ListPendingModeration(ctx context.Context) ([]model.Attack, error)
	Update(ctx context.Context, a *model.Attack) error
	LastAgainstTarget(ctx context.Context, attackerID, targetBuildingID string) (*model.Attack, error)
}

// MarketRepository stores MarketListings.
type MarketRepository interface {
	Create(ctx context.Context, l *model.MarketListing) error
	Get(ctx context.Context, id string) (*model.MarketListing, error)
	GetActiveForSubject(ctx context.Context, mapID string, coord model.Coordinate) (*model.MarketListing, error)
	Update(ctx context.Context, l *model.MarketListing) error
}

// TransactionRepository is the append-only audit log of economic actions
// (spec.md §3 "Transaction"). Named distinctly from package transaction's
// Operation/Transaction types, which model atomic commit, not audit rows.
type TransactionRepository interface {
	Append(ctx context.Context, t *model.TransactionRecord) error
	ListByCompany(ctx context.Context, companyID string, limit int) ([]model.TransactionRecord, error)
}

// AuditLogRepository stores the security AuditLog trail.
type AuditLogRepository interface {
	Append(ctx context.Context, a *model.AuditLog) error
	ListDisplay(ctx context.Context, tenantID string, limit int) ([]model.AuditLogDisplay, error)
}

// AuthzRepository stores custom roles, page grants, and per-user overrides
// (spec.md §4.9).
type AuthzRepository interface {
	CreateCustomRole(ctx context.Context, r *model.CustomRole) error
	GetCustomRole(ctx context.Context, tenantID, name string) (*model.CustomRole, error)
	ListCustomRoles(ctx context.Context, tenantID string) ([]model.CustomRole, error)
	DeleteCustomRole(ctx context.Context, id string) error

	GrantRolePage(ctx context.Context, g model.RolePageAccess) error
	RevokeRolePage(ctx context.Context, g model.RolePageAccess) error
	ListRolePages(ctx context.Context, tenantID, roleName string) ([]model.Page, error)

	GetTenantPages(ctx context.Context, tenantID string) (model.CompanyAvailablePages, error)
	SetTenantPages(ctx context.Context, p model.CompanyAvailablePages) error

	ListUserPermissions(ctx context.Context, userID string) ([]model.UserPermission, error)
	SetUserPermission(ctx context.Context, p model.UserPermission) error
}

// CompanyStatistics is the per-tick snapshot row upserted in the tick
// processor's statistics pass (spec.md §4.5 pass 7).
type CompanyStatistics struct {
	CompanyID   string
	MapID       string
	TickNumber  int64
	Cash        model.Cents
	NetWorth    model.Cents
	TilesOwned  int
	BuildingsOwned int
}

// StatisticsRepository stores per-tick CompanyStatistics snapshots.
type StatisticsRepository interface {
	Upsert(ctx context.Context, s CompanyStatistics) error
	Latest(ctx context.Context, companyID, mapID string) (*CompanyStatistics, error)
}

// DonationRepository stores temple Donations and serves the global
// leaderboard query (spec.md §4.12).
type DonationRepository interface {
	Create(ctx context.Context, d *model.Donation) error
	Leaderboard(ctx context.Context, limit int) ([]model.DonationLeaderboardEntry, error)
}

// ChatRepository stores map-scoped ChatMessages.
type ChatRepository interface {
	Create(ctx context.Context, m *model.ChatMessage) error
	ListRecent(ctx context.Context, mapID string, limit int) ([]model.ChatMessage, error)
}

// HeroMessageRepository stores HeroMessages attached to hero-out
// celebrations.
type HeroMessageRepository interface {
	Create(ctx context.Context, m *model.HeroMessage) error
	ListRecent(ctx context.Context, limit int) ([]model.HeroMessage, error)
}

// CasinoRepository stores CasinoHand rows for both single-shot roulette
// spins and multi-step blackjack hands.
type CasinoRepository interface {
	Create(ctx context.Context, h *model.CasinoHand) error
	Get(ctx context.Context, id string) (*model.CasinoHand, error)
	Update(ctx context.Context, h *model.CasinoHand) error
}

// TickRepository tracks tick idempotence (spec.md §4.6): the current tick
// number and a per-map advisory lock.
type TickRepository interface {
	CurrentTick(ctx context.Context) (int64, error)

	// AdvanceTick moves the global tick counter forward to targetTick,
	// derived by the caller from the actual scheduled tick boundary (not a
	// bare auto-increment), and returns the counter's resulting value.
	// Calling it again with the same or an older targetTick is a no-op that
	// returns the counter unchanged — the property spec.md §4.6 requires so
	// a re-run for the same tick instant is idempotent.
	AdvanceTick(ctx context.Context, targetTick int64) (int64, error)

	// LockMap acquires a per-map advisory lock that is held until the
	// returned unlock is called; the Postgres store uses a session-level
	// pg_advisory_lock on a dedicated connection.
	LockMap(ctx context.Context, mapID string) (unlock func(), err error)
}
