package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// SessionRepository implements repository.SessionRepository.
type SessionRepository struct{ *Store }

func NewSessionRepository(s *Store) *SessionRepository { return &SessionRepository{s} }

type sessionRow struct {
	ID                string    `db:"id"`
	UserID            string    `db:"user_id"`
	Token             string    `db:"token"`
	IsMobile          bool      `db:"is_mobile"`
	ExpiresAt         time.Time `db:"expires_at"`
	DeviceFingerprint string    `db:"device_fingerprint"`
	SourceIP          string    `db:"source_ip"`
	CreatedAt         time.Time `db:"created_at"`
}

func (row sessionRow) toModel() *model.Session {
	return &model.Session{
		ID: row.ID, UserID: row.UserID, Token: row.Token, IsMobile: row.IsMobile,
		ExpiresAt: row.ExpiresAt, DeviceFingerprint: row.DeviceFingerprint,
		SourceIP: row.SourceIP, CreatedAt: row.CreatedAt,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	if s.ID == "" {
		s.ID = newID()
	}
	s.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, is_mobile, expires_at, device_fingerprint, source_ip, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, s.ID, s.UserID, s.Token, s.IsMobile, s.ExpiresAt, s.DeviceFingerprint, s.SourceIP, s.CreatedAt)
	return err
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var row sessionRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT id, user_id, token, is_mobile, expires_at, device_fingerprint, source_ip, created_at
		FROM sessions WHERE token = $1
	`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("session", "")
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}
