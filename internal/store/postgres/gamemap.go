package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// MapRepository implements repository.MapRepository.
type MapRepository struct{ *Store }

func NewMapRepository(s *Store) *MapRepository { return &MapRepository{s} }

type mapRow struct {
	ID                    string  `db:"id"`
	Country               string  `db:"country"`
	Tier                  string  `db:"tier"`
	Width                 int     `db:"width"`
	Height                int     `db:"height"`
	HeroNetWorth          int64   `db:"hero_net_worth"`
	HeroCash              int64   `db:"hero_cash"`
	HeroLandPercent       float64 `db:"hero_land_percent"`
	PoliceStrikeDay       int     `db:"police_strike_day"`
	Active                bool    `db:"active"`
}

func (row mapRow) toModel() *model.Map {
	return &model.Map{
		ID: row.ID, Country: row.Country, Tier: model.Tier(row.Tier),
		Width: row.Width, Height: row.Height,
		HeroThresholds: model.HeroThresholds{
			NetWorth: model.Cents(row.HeroNetWorth), Cash: model.Cents(row.HeroCash), LandPercent: row.HeroLandPercent,
		},
		PoliceStrikeDay: row.PoliceStrikeDay, Active: row.Active,
	}
}

const mapSelectColumns = `id, country, tier, width, height, hero_net_worth, hero_cash, hero_land_percent, police_strike_day, active`

func (r *MapRepository) Create(ctx context.Context, m *model.Map) error {
	if m.ID == "" {
		m.ID = newID()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO maps (id, country, tier, width, height, hero_net_worth, hero_cash, hero_land_percent, police_strike_day, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, m.ID, m.Country, string(m.Tier), m.Width, m.Height,
		int64(m.HeroThresholds.NetWorth), int64(m.HeroThresholds.Cash), m.HeroThresholds.LandPercent,
		m.PoliceStrikeDay, m.Active)
	return err
}

func (r *MapRepository) Get(ctx context.Context, id string) (*model.Map, error) {
	var row mapRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+mapSelectColumns+" FROM maps WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("map", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *MapRepository) ListActive(ctx context.Context) ([]model.Map, error) {
	var rows []mapRow
	if err := r.DB.SelectContext(ctx, &rows, "SELECT "+mapSelectColumns+" FROM maps WHERE active = true"); err != nil {
		return nil, err
	}
	out := make([]model.Map, len(rows))
	for i, row := range rows {
		out[i] = *row.toModel()
	}
	return out, nil
}

type tileRow struct {
	MapID   string         `db:"map_id"`
	X       int            `db:"x"`
	Y       int            `db:"y"`
	Terrain string         `db:"terrain"`
	Special sql.NullString `db:"special"`
	OwnerID sql.NullString `db:"owner_id"`
}

func (row tileRow) toModel() model.Tile {
	var special *model.SpecialBuilding
	if row.Special.Valid {
		s := model.SpecialBuilding(row.Special.String)
		special = &s
	}
	return model.Tile{
		MapID:      row.MapID,
		Coordinate: model.Coordinate{X: row.X, Y: row.Y},
		Terrain:    model.Terrain(row.Terrain),
		Special:    special,
		OwnerID:    fromNullString(row.OwnerID),
	}
}

// CreateTiles batch-inserts tiles in chunks of MaxParamsPerStatement rows,
// the initial width×height fill performed at map creation (spec.md §6).
func (r *MapRepository) CreateTiles(ctx context.Context, tiles []model.Tile) error {
	for _, group := range chunk(tiles, MaxParamsPerStatement) {
		if err := r.insertTileChunk(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

func (r *MapRepository) insertTileChunk(ctx context.Context, tiles []model.Tile) error {
	const colsPerRow = 6
	values := make([]string, 0, len(tiles))
	args := make([]any, 0, len(tiles)*colsPerRow)
	for i, t := range tiles {
		base := i*colsPerRow + 1
		values = append(values, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4, base+5))
		var special sql.NullString
		if t.Special != nil {
			special = sql.NullString{String: string(*t.Special), Valid: true}
		}
		args = append(args, t.MapID, t.Coordinate.X, t.Coordinate.Y, string(t.Terrain), special, nullString(t.OwnerID))
	}
	query := "INSERT INTO tiles (map_id, x, y, terrain, special, owner_id) VALUES " + strings.Join(values, ",")
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *MapRepository) GetTile(ctx context.Context, mapID string, coord model.Coordinate) (*model.Tile, error) {
	var row tileRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT map_id, x, y, terrain, special, owner_id FROM tiles WHERE map_id = $1 AND x = $2 AND y = $3
	`, mapID, coord.X, coord.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("tile", fmt.Sprintf("%s (%d,%d)", mapID, coord.X, coord.Y))
	}
	if err != nil {
		return nil, err
	}
	t := row.toModel()
	return &t, nil
}

func (r *MapRepository) ListTiles(ctx context.Context, mapID string) ([]model.Tile, error) {
	var rows []tileRow
	if err := r.DB.SelectContext(ctx, &rows, `SELECT map_id, x, y, terrain, special, owner_id FROM tiles WHERE map_id = $1`, mapID); err != nil {
		return nil, err
	}
	out := make([]model.Tile, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

func (r *MapRepository) UpdateTile(ctx context.Context, t *model.Tile) error {
	var special sql.NullString
	if t.Special != nil {
		special = sql.NullString{String: string(*t.Special), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tiles SET terrain = $1, special = $2, owner_id = $3
		WHERE map_id = $4 AND x = $5 AND y = $6
	`, string(t.Terrain), special, nullString(t.OwnerID), t.MapID, t.Coordinate.X, t.Coordinate.Y)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "tile", fmt.Sprintf("%s (%d,%d)", t.MapID, t.Coordinate.X, t.Coordinate.Y))
}
