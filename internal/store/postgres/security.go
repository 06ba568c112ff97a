package postgres

import (
	"context"
	"database/sql"
	"errors"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// SecurityRepository implements repository.SecurityRepository.
type SecurityRepository struct{ *Store }

func NewSecurityRepository(s *Store) *SecurityRepository { return &SecurityRepository{s} }

type securityRow struct {
	BuildingID       string  `db:"building_id"`
	Level            int     `db:"level"`
	UpkeepPerTick    int64   `db:"upkeep_per_tick"`
	DamageResistance float64 `db:"damage_resistance"`
}

func (row securityRow) toModel() *model.BuildingSecurity {
	return &model.BuildingSecurity{
		BuildingID: row.BuildingID, Level: row.Level,
		UpkeepPerTick: model.Cents(row.UpkeepPerTick), DamageResistance: row.DamageResistance,
	}
}

func (r *SecurityRepository) Get(ctx context.Context, buildingID string) (*model.BuildingSecurity, error) {
	var row securityRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT building_id, level, upkeep_per_tick, damage_resistance FROM building_security WHERE building_id = $1
	`, buildingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("building_security", buildingID)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *SecurityRepository) Upsert(ctx context.Context, s *model.BuildingSecurity) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO building_security (building_id, level, upkeep_per_tick, damage_resistance)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (building_id) DO UPDATE SET level = $2, upkeep_per_tick = $3, damage_resistance = $4
	`, s.BuildingID, s.Level, int64(s.UpkeepPerTick), s.DamageResistance)
	return err
}

func (r *SecurityRepository) Delete(ctx context.Context, buildingID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM building_security WHERE building_id = $1`, buildingID)
	return err
}
