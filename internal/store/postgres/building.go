package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// BuildingRepository implements repository.BuildingRepository.
type BuildingRepository struct{ *Store }

func NewBuildingRepository(s *Store) *BuildingRepository { return &BuildingRepository{s} }

type buildingRow struct {
	ID                string         `db:"id"`
	MapID             string         `db:"map_id"`
	X                 int            `db:"x"`
	Y                 int            `db:"y"`
	TypeID            string         `db:"type_id"`
	OwnerCompanyID    string         `db:"owner_company_id"`
	Variant           sql.NullString `db:"variant"`
	CalculatedProfit  int64          `db:"calculated_profit"`
	CalculatedValue   int64          `db:"calculated_value"`
	ProfitBreakdown   []byte         `db:"profit_breakdown"`
	ValueBreakdown    []byte         `db:"value_breakdown"`
	DamagePercent     float64        `db:"damage_percent"`
	Collapsed         bool           `db:"collapsed"`
	Burning           bool           `db:"burning"`
	NeedsProfitRecalc bool           `db:"needs_profit_recalc"`
	LastTickApplied   int64          `db:"last_tick_applied"`
	CreatedAt         time.Time      `db:"created_at"`
}

func (row buildingRow) toModel() (*model.BuildingInstance, error) {
	var profitBD, valueBD model.ProfitBreakdown
	if len(row.ProfitBreakdown) > 0 {
		if err := json.Unmarshal(row.ProfitBreakdown, &profitBD); err != nil {
			return nil, fmt.Errorf("unmarshal profit breakdown: %w", err)
		}
	}
	if len(row.ValueBreakdown) > 0 {
		if err := json.Unmarshal(row.ValueBreakdown, &valueBD); err != nil {
			return nil, fmt.Errorf("unmarshal value breakdown: %w", err)
		}
	}
	return &model.BuildingInstance{
		ID: row.ID, MapID: row.MapID, Coordinate: model.Coordinate{X: row.X, Y: row.Y},
		TypeID: model.BuildingTypeID(row.TypeID), OwnerCompanyID: row.OwnerCompanyID,
		Variant:          fromNullString(row.Variant),
		CalculatedProfit: model.Cents(row.CalculatedProfit), CalculatedValue: model.Cents(row.CalculatedValue),
		ProfitBreakdown: profitBD, ValueBreakdown: valueBD,
		DamagePercent: row.DamagePercent, Collapsed: row.Collapsed, Burning: row.Burning,
		NeedsProfitRecalc: row.NeedsProfitRecalc, LastTickApplied: row.LastTickApplied,
		CreatedAt: row.CreatedAt,
	}, nil
}

const buildingSelectColumns = `
	id, map_id, x, y, type_id, owner_company_id, variant,
	calculated_profit, calculated_value, profit_breakdown, value_breakdown,
	damage_percent, collapsed, burning, needs_profit_recalc, last_tick_applied, created_at
`

func (r *BuildingRepository) Create(ctx context.Context, b *model.BuildingInstance) error {
	if b.ID == "" {
		b.ID = newID()
	}
	b.CreatedAt = time.Now().UTC()
	profitBD, err := json.Marshal(b.ProfitBreakdown)
	if err != nil {
		return err
	}
	valueBD, err := json.Marshal(b.ValueBreakdown)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO buildings (id, map_id, x, y, type_id, owner_company_id, variant,
			calculated_profit, calculated_value, profit_breakdown, value_breakdown,
			damage_percent, collapsed, burning, needs_profit_recalc, last_tick_applied, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, b.ID, b.MapID, b.Coordinate.X, b.Coordinate.Y, string(b.TypeID), b.OwnerCompanyID, nullString(b.Variant),
		int64(b.CalculatedProfit), int64(b.CalculatedValue), profitBD, valueBD,
		b.DamagePercent, b.Collapsed, b.Burning, b.NeedsProfitRecalc, b.LastTickApplied, b.CreatedAt)
	return err
}

func (r *BuildingRepository) Get(ctx context.Context, id string) (*model.BuildingInstance, error) {
	var row buildingRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+buildingSelectColumns+" FROM buildings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("building", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (r *BuildingRepository) GetByTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.BuildingInstance, error) {
	var row buildingRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+buildingSelectColumns+` FROM buildings
		WHERE map_id = $1 AND x = $2 AND y = $3 AND collapsed = false AND type_id != 'demolished'
	`, mapID, coord.X, coord.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("building", fmt.Sprintf("%s (%d,%d)", mapID, coord.X, coord.Y))
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (r *BuildingRepository) listWhere(ctx context.Context, where string, arg any) ([]model.BuildingInstance, error) {
	var rows []buildingRow
	if err := r.DB.SelectContext(ctx, &rows, "SELECT "+buildingSelectColumns+" FROM buildings WHERE "+where, arg); err != nil {
		return nil, err
	}
	out := make([]model.BuildingInstance, 0, len(rows))
	for _, row := range rows {
		b, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *BuildingRepository) ListByMap(ctx context.Context, mapID string) ([]model.BuildingInstance, error) {
	return r.listWhere(ctx, "map_id = $1 AND collapsed = false", mapID)
}

func (r *BuildingRepository) ListDirty(ctx context.Context, mapID string) ([]model.BuildingInstance, error) {
	return r.listWhere(ctx, "map_id = $1 AND needs_profit_recalc = true", mapID)
}

func (r *BuildingRepository) ListByOwner(ctx context.Context, companyID string) ([]model.BuildingInstance, error) {
	return r.listWhere(ctx, "owner_company_id = $1 AND collapsed = false", companyID)
}

func (r *BuildingRepository) CountByType(ctx context.Context, mapID string, typeID model.BuildingTypeID) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `
		SELECT count(*) FROM buildings WHERE map_id = $1 AND type_id = $2 AND collapsed = false
	`, mapID, string(typeID))
	return n, err
}

func (r *BuildingRepository) Update(ctx context.Context, b *model.BuildingInstance) error {
	profitBD, err := json.Marshal(b.ProfitBreakdown)
	if err != nil {
		return err
	}
	valueBD, err := json.Marshal(b.ValueBreakdown)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE buildings SET type_id=$1, owner_company_id=$2, variant=$3,
			calculated_profit=$4, calculated_value=$5, profit_breakdown=$6, value_breakdown=$7,
			damage_percent=$8, collapsed=$9, burning=$10, needs_profit_recalc=$11, last_tick_applied=$12
		WHERE id = $13
	`, string(b.TypeID), b.OwnerCompanyID, nullString(b.Variant),
		int64(b.CalculatedProfit), int64(b.CalculatedValue), profitBD, valueBD,
		b.DamagePercent, b.Collapsed, b.Burning, b.NeedsProfitRecalc, b.LastTickApplied, b.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "building", b.ID)
}

func (r *BuildingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "building", id)
}
