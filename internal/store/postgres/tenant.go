package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"citytycoon-backend/internal/model"
	gameerrors "citytycoon-backend/internal/errors"
)

// TenantRepository implements repository.TenantRepository.
type TenantRepository struct{ *Store }

func NewTenantRepository(s *Store) *TenantRepository { return &TenantRepository{s} }

func (r *TenantRepository) Create(ctx context.Context, t *model.Tenant) error {
	if t.ID == "" {
		t.ID = newID()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tenants (id, name, admin_user_id, retention_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.Name, t.AdminUserID, t.RetentionDays, t.Active, t.CreatedAt, t.UpdatedAt)
	return err
}

// tenantRow mirrors the tenants table; sqlx scans into it by column name,
// then toModel converts to the persistence-agnostic model.Tenant.
type tenantRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	AdminUserID   string    `db:"admin_user_id"`
	RetentionDays int       `db:"retention_days"`
	Active        bool      `db:"active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row tenantRow) toModel() *model.Tenant {
	return &model.Tenant{
		ID: row.ID, Name: row.Name, AdminUserID: row.AdminUserID,
		RetentionDays: row.RetentionDays, Active: row.Active,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

func (r *TenantRepository) Get(ctx context.Context, id string) (*model.Tenant, error) {
	var row tenantRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT id, name, admin_user_id, retention_days, active, created_at, updated_at
		FROM tenants WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("tenant", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *TenantRepository) Update(ctx context.Context, t *model.Tenant) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tenants SET name = $1, admin_user_id = $2, retention_days = $3, active = $4, updated_at = $5
		WHERE id = $6
	`, t.Name, t.AdminUserID, t.RetentionDays, t.Active, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "tenant", t.ID)
}

// Delete cascades deletion of the tenant's admin user before the tenant row
// itself, per spec.md §3's invariant on Tenant.
func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var adminUserID string
	if err := tx.GetContext(ctx, &adminUserID, `SELECT admin_user_id FROM tenants WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gameerrors.NotFound("tenant", id)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, adminUserID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return gameerrors.NotFound(resource, id)
	}
	return nil
}
