package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// CasinoRepository implements repository.CasinoRepository.
type CasinoRepository struct{ *Store }

func NewCasinoRepository(s *Store) *CasinoRepository {
	return &CasinoRepository{s}
}

type casinoHandRow struct {
	ID        string    `db:"id"`
	CompanyID string    `db:"company_id"`
	Game      string    `db:"game"`
	State     string    `db:"state"`
	Stake     int64     `db:"stake"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row casinoHandRow) toModel() (*model.CasinoHand, error) {
	payload := map[string]interface{}{}
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return nil, err
		}
	}
	return &model.CasinoHand{
		ID: row.ID, CompanyID: row.CompanyID, Game: model.CasinoGame(row.Game), State: row.State,
		Stake: model.Cents(row.Stake), Payload: payload, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *CasinoRepository) Create(ctx context.Context, h *model.CasinoHand) error {
	if h.ID == "" {
		h.ID = newID()
	}
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	payload, err := json.Marshal(h.Payload)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO casino_hands (id, company_id, game, state, stake, payload, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, h.ID, h.CompanyID, string(h.Game), h.State, int64(h.Stake), payload, h.CreatedAt, h.UpdatedAt)
	return err
}

func (r *CasinoRepository) Get(ctx context.Context, id string) (*model.CasinoHand, error) {
	var row casinoHandRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT id, company_id, game, state, stake, payload, created_at, updated_at
		FROM casino_hands WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("casino_hand", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (r *CasinoRepository) Update(ctx context.Context, h *model.CasinoHand) error {
	h.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(h.Payload)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		UPDATE casino_hands SET state = $2, payload = $3, updated_at = $4 WHERE id = $1
	`, h.ID, h.State, payload, h.UpdatedAt)
	return err
}
