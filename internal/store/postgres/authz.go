package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// AuthzRepository implements repository.AuthzRepository.
type AuthzRepository struct{ *Store }

func NewAuthzRepository(s *Store) *AuthzRepository { return &AuthzRepository{s} }

func (r *AuthzRepository) CreateCustomRole(ctx context.Context, role *model.CustomRole) error {
	if role.ID == "" {
		role.ID = newID()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO custom_roles (id, tenant_id, name) VALUES ($1,$2,$3)
	`, role.ID, role.TenantID, role.Name)
	if isUniqueViolation(err) {
		return gameerrors.Conflict("a custom role named %q already exists for this tenant", role.Name)
	}
	return err
}

func (r *AuthzRepository) GetCustomRole(ctx context.Context, tenantID, name string) (*model.CustomRole, error) {
	var role model.CustomRole
	err := r.DB.GetContext(ctx, &role, `
		SELECT id, tenant_id, name FROM custom_roles WHERE tenant_id = $1 AND name = $2
	`, tenantID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("custom_role", name)
	}
	return &role, err
}

func (r *AuthzRepository) ListCustomRoles(ctx context.Context, tenantID string) ([]model.CustomRole, error) {
	var roles []model.CustomRole
	err := r.DB.SelectContext(ctx, &roles, `SELECT id, tenant_id, name FROM custom_roles WHERE tenant_id = $1`, tenantID)
	return roles, err
}

func (r *AuthzRepository) DeleteCustomRole(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM custom_roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "custom_role", id)
}

func (r *AuthzRepository) GrantRolePage(ctx context.Context, g model.RolePageAccess) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO role_page_access (tenant_id, role_name, page) VALUES ($1,$2,$3)
		ON CONFLICT DO NOTHING
	`, g.TenantID, g.RoleName, string(g.Page))
	return err
}

func (r *AuthzRepository) RevokeRolePage(ctx context.Context, g model.RolePageAccess) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM role_page_access WHERE tenant_id = $1 AND role_name = $2 AND page = $3
	`, g.TenantID, g.RoleName, string(g.Page))
	return err
}

func (r *AuthzRepository) ListRolePages(ctx context.Context, tenantID, roleName string) ([]model.Page, error) {
	var pages []string
	err := r.DB.SelectContext(ctx, &pages, `
		SELECT page FROM role_page_access WHERE tenant_id = $1 AND role_name = $2
	`, tenantID, roleName)
	if err != nil {
		return nil, err
	}
	out := make([]model.Page, len(pages))
	for i, p := range pages {
		out[i] = model.Page(p)
	}
	return out, nil
}

func (r *AuthzRepository) GetTenantPages(ctx context.Context, tenantID string) (model.CompanyAvailablePages, error) {
	var raw []byte
	err := r.DB.GetContext(ctx, &raw, `SELECT pages FROM company_available_pages WHERE tenant_id = $1`, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CompanyAvailablePages{TenantID: tenantID, Pages: map[model.Page]bool{}}, nil
	}
	if err != nil {
		return model.CompanyAvailablePages{}, err
	}
	pages := map[model.Page]bool{}
	if err := json.Unmarshal(raw, &pages); err != nil {
		return model.CompanyAvailablePages{}, err
	}
	return model.CompanyAvailablePages{TenantID: tenantID, Pages: pages}, nil
}

func (r *AuthzRepository) SetTenantPages(ctx context.Context, p model.CompanyAvailablePages) error {
	raw, err := json.Marshal(p.Pages)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO company_available_pages (tenant_id, pages) VALUES ($1,$2)
		ON CONFLICT (tenant_id) DO UPDATE SET pages = $2
	`, p.TenantID, raw)
	return err
}

type userPermissionRow struct {
	UserID    string       `db:"user_id"`
	Name      string       `db:"name"`
	Granted   bool         `db:"granted"`
	ExpiresAt sql.NullTime `db:"expires_at"`
}

func (r *AuthzRepository) ListUserPermissions(ctx context.Context, userID string) ([]model.UserPermission, error) {
	var rows []userPermissionRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT user_id, name, granted, expires_at FROM user_permissions WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserPermission, len(rows))
	for i, row := range rows {
		out[i] = model.UserPermission{UserID: row.UserID, Name: row.Name, Granted: row.Granted, ExpiresAt: fromNullTime(row.ExpiresAt)}
	}
	return out, nil
}

func (r *AuthzRepository) SetUserPermission(ctx context.Context, p model.UserPermission) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_permissions (user_id, name, granted, expires_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, name) DO UPDATE SET granted = $3, expires_at = $4
	`, p.UserID, p.Name, p.Granted, nullTime(p.ExpiresAt))
	return err
}
