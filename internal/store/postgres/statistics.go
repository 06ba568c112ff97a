package postgres

import (
	"context"
	"database/sql"
	"errors"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/repository"
)

// StatisticsRepository implements repository.StatisticsRepository, backing
// the tick processor's statistics pass (spec.md §4.5 pass 7).
type StatisticsRepository struct{ *Store }

func NewStatisticsRepository(s *Store) *StatisticsRepository { return &StatisticsRepository{s} }

func (r *StatisticsRepository) Upsert(ctx context.Context, s repository.CompanyStatistics) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO company_statistics (company_id, map_id, tick_number, cash, net_worth, tiles_owned, buildings_owned)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (company_id, map_id) DO UPDATE SET
			tick_number = $3, cash = $4, net_worth = $5, tiles_owned = $6, buildings_owned = $7
	`, s.CompanyID, s.MapID, s.TickNumber, int64(s.Cash), int64(s.NetWorth), s.TilesOwned, s.BuildingsOwned)
	return err
}

func (r *StatisticsRepository) Latest(ctx context.Context, companyID, mapID string) (*repository.CompanyStatistics, error) {
	var row struct {
		CompanyID      string `db:"company_id"`
		MapID          string `db:"map_id"`
		TickNumber     int64  `db:"tick_number"`
		Cash           int64  `db:"cash"`
		NetWorth       int64  `db:"net_worth"`
		TilesOwned     int    `db:"tiles_owned"`
		BuildingsOwned int    `db:"buildings_owned"`
	}
	err := r.DB.GetContext(ctx, &row, `
		SELECT company_id, map_id, tick_number, cash, net_worth, tiles_owned, buildings_owned
		FROM company_statistics WHERE company_id = $1 AND map_id = $2
	`, companyID, mapID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("company_statistics", companyID)
	}
	if err != nil {
		return nil, err
	}
	return &repository.CompanyStatistics{
		CompanyID: row.CompanyID, MapID: row.MapID, TickNumber: row.TickNumber,
		Cash: model.Cents(row.Cash), NetWorth: model.Cents(row.NetWorth),
		TilesOwned: row.TilesOwned, BuildingsOwned: row.BuildingsOwned,
	}, nil
}
