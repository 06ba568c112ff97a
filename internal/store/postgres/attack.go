package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// AttackRepository implements repository.AttackRepository.
type AttackRepository struct{ *Store }

func NewAttackRepository(s *Store) *AttackRepository { return &AttackRepository{s} }

type attackRow struct {
	ID                string    `db:"id"`
	AttackerCompanyID string    `db:"attacker_company_id"`
	TargetBuildingID  string    `db:"target_building_id"`
	Trick             string    `db:"trick"`
	Message           string    `db:"message"`
	ModerationStatus  string    `db:"moderation_status"`
	Detected          bool      `db:"detected"`
	FineApplied       int64     `db:"fine_applied"`
	CreatedAt         time.Time `db:"created_at"`
}

func (row attackRow) toModel() *model.Attack {
	return &model.Attack{
		ID: row.ID, AttackerCompanyID: row.AttackerCompanyID, TargetBuildingID: row.TargetBuildingID,
		Trick: model.TrickType(row.Trick), Message: row.Message,
		ModerationStatus: model.ModerationStatus(row.ModerationStatus),
		Detected:         row.Detected, FineApplied: model.Cents(row.FineApplied), CreatedAt: row.CreatedAt,
	}
}

const attackSelectColumns = `
	id, attacker_company_id, target_building_id, trick, message, moderation_status, detected, fine_applied, created_at
`

func (r *AttackRepository) Create(ctx context.Context, a *model.Attack) error {
	if a.ID == "" {
		a.ID = newID()
	}
	a.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO attacks (id, attacker_company_id, target_building_id, trick, message, moderation_status, detected, fine_applied, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, a.ID, a.AttackerCompanyID, a.TargetBuildingID, string(a.Trick), a.Message,
		string(a.ModerationStatus), a.Detected, int64(a.FineApplied), a.CreatedAt)
	return err
}

func (r *AttackRepository) Get(ctx context.Context, id string) (*model.Attack, error) {
	var row attackRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+attackSelectColumns+" FROM attacks WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("attack", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *AttackRepository) ListPendingModeration(ctx context.Context) ([]model.Attack, error) {
	var rows []attackRow
	if err := r.DB.SelectContext(ctx, &rows, "SELECT "+attackSelectColumns+" FROM attacks WHERE moderation_status = 'pending'"); err != nil {
		return nil, err
	}
	out := make([]model.Attack, len(rows))
	for i, row := range rows {
		out[i] = *row.toModel()
	}
	return out, nil
}

func (r *AttackRepository) Update(ctx context.Context, a *model.Attack) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE attacks SET moderation_status = $1, detected = $2, fine_applied = $3 WHERE id = $4
	`, string(a.ModerationStatus), a.Detected, int64(a.FineApplied), a.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "attack", a.ID)
}

func (r *AttackRepository) LastAgainstTarget(ctx context.Context, attackerID, targetBuildingID string) (*model.Attack, error) {
	var row attackRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+attackSelectColumns+`
		FROM attacks WHERE attacker_company_id = $1 AND target_building_id = $2
		ORDER BY created_at DESC LIMIT 1
	`, attackerID, targetBuildingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}
