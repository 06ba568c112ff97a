package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// UserRepository implements repository.UserRepository.
type UserRepository struct{ *Store }

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{s} }

type userRow struct {
	ID                string         `db:"id"`
	Email             string         `db:"email"`
	Username          string         `db:"username"`
	HashedPassword    string         `db:"hashed_password"`
	Role              string         `db:"role"`
	CustomRoleID      sql.NullString `db:"custom_role_id"`
	TenantID          string         `db:"tenant_id"`
	MagicLinkToken    sql.NullString `db:"magic_link_token"`
	MagicLinkCode     sql.NullString `db:"magic_link_code"`
	MagicLinkExpiry   sql.NullTime   `db:"magic_link_expiry"`
	TOTPSecret        sql.NullString `db:"totp_secret"`
	TOTPRecoveryCodes pq.StringArray `db:"totp_recovery_codes"`
	TOTPEnabled       bool           `db:"totp_enabled"`
	InvitationToken   sql.NullString `db:"invitation_token"`
	InvitationExpiry  sql.NullTime   `db:"invitation_expiry"`
	Verified          bool           `db:"verified"`
	DeletedAt         sql.NullTime   `db:"deleted_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func (row userRow) toModel() *model.User {
	return &model.User{
		ID: row.ID, Email: row.Email, Username: row.Username,
		HashedPassword: row.HashedPassword, Role: model.Role(row.Role),
		CustomRoleID: fromNullString(row.CustomRoleID), TenantID: row.TenantID,
		MagicLinkToken: fromNullString(row.MagicLinkToken), MagicLinkCode: fromNullString(row.MagicLinkCode),
		MagicLinkExpiry: fromNullTime(row.MagicLinkExpiry),
		TOTPSecret: fromNullString(row.TOTPSecret), TOTPRecoveryCodes: []string(row.TOTPRecoveryCodes),
		TOTPEnabled: row.TOTPEnabled,
		InvitationToken: fromNullString(row.InvitationToken), InvitationExpiry: fromNullTime(row.InvitationExpiry),
		Verified: row.Verified, DeletedAt: fromNullTime(row.DeletedAt),
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

const userSelectColumns = `
	id, email, username, hashed_password, role, custom_role_id, tenant_id,
	magic_link_token, magic_link_code, magic_link_expiry,
	totp_secret, totp_recovery_codes, totp_enabled,
	invitation_token, invitation_expiry, verified, deleted_at, created_at, updated_at
`

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, username, hashed_password, role, custom_role_id, tenant_id,
			magic_link_token, magic_link_code, magic_link_expiry,
			totp_secret, totp_recovery_codes, totp_enabled,
			invitation_token, invitation_expiry, verified, deleted_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, u.ID, u.Email, u.Username, u.HashedPassword, string(u.Role), nullString(u.CustomRoleID), u.TenantID,
		nullString(u.MagicLinkToken), nullString(u.MagicLinkCode), nullTime(u.MagicLinkExpiry),
		nullString(u.TOTPSecret), pq.StringArray(u.TOTPRecoveryCodes), u.TOTPEnabled,
		nullString(u.InvitationToken), nullTime(u.InvitationExpiry), u.Verified, nullTime(u.DeletedAt),
		u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return gameerrors.Conflict("email or username already in use")
	}
	return err
}

func (r *UserRepository) get(ctx context.Context, where string, arg any) (*model.User, error) {
	var row userRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+userSelectColumns+" FROM users WHERE "+where+" AND deleted_at IS NULL", arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("user", "")
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, "lower(email) = lower($1)", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.get(ctx, "lower(username) = lower($1)", username)
}

func (r *UserRepository) GetByInvitationToken(ctx context.Context, token string) (*model.User, error) {
	return r.get(ctx, "invitation_token = $1", token)
}

func (r *UserRepository) GetByMagicLinkToken(ctx context.Context, token string) (*model.User, error) {
	return r.get(ctx, "magic_link_token = $1", token)
}

func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET email=$1, username=$2, hashed_password=$3, role=$4, custom_role_id=$5,
			magic_link_token=$6, magic_link_code=$7, magic_link_expiry=$8,
			totp_secret=$9, totp_recovery_codes=$10, totp_enabled=$11,
			invitation_token=$12, invitation_expiry=$13, verified=$14, deleted_at=$15, updated_at=$16
		WHERE id = $17
	`, u.Email, u.Username, u.HashedPassword, string(u.Role), nullString(u.CustomRoleID),
		nullString(u.MagicLinkToken), nullString(u.MagicLinkCode), nullTime(u.MagicLinkExpiry),
		nullString(u.TOTPSecret), pq.StringArray(u.TOTPRecoveryCodes), u.TOTPEnabled,
		nullString(u.InvitationToken), nullTime(u.InvitationExpiry), u.Verified, nullTime(u.DeletedAt),
		u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "user", u.ID)
}

func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET deleted_at = $1, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "user", id)
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string) ([]model.User, error) {
	var rows []userRow
	err := r.DB.SelectContext(ctx, &rows, "SELECT "+userSelectColumns+" FROM users WHERE tenant_id = $1 AND deleted_at IS NULL", tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, len(rows))
	for i, row := range rows {
		out[i] = *row.toModel()
	}
	return out, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), which the caller maps to a conflict GameError
// rather than an internal one.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
