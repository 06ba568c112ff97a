package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// GameCompanyRepository implements repository.GameCompanyRepository.
type GameCompanyRepository struct{ *Store }

func NewGameCompanyRepository(s *Store) *GameCompanyRepository { return &GameCompanyRepository{s} }

type gameCompanyRow struct {
	ID                  string         `db:"id"`
	OwnerUserID         string         `db:"owner_user_id"`
	DisplayName         string         `db:"display_name"`
	BossName            string         `db:"boss_name"`
	Cash                int64          `db:"cash"`
	OffshoreSavings     int64          `db:"offshore_savings"`
	Level               int            `db:"level"`
	TotalActions        int            `db:"total_actions"`
	TicksSinceAction    int            `db:"ticks_since_action"`
	Imprisoned          bool           `db:"imprisoned"`
	Fine                int64          `db:"fine"`
	LandOwnershipStreak int            `db:"land_ownership_streak"`
	MapID               sql.NullString `db:"map_id"`
	TierJoined          string         `db:"tier_joined"`
	UnlockedTiers       int            `db:"unlocked_tiers"`
	CreatedAt           time.Time      `db:"created_at"`
}

func (row gameCompanyRow) toModel() *model.GameCompany {
	return &model.GameCompany{
		ID: row.ID, OwnerUserID: row.OwnerUserID, DisplayName: row.DisplayName, BossName: row.BossName,
		Cash: model.Cents(row.Cash), OffshoreSavings: model.Cents(row.OffshoreSavings),
		Level: row.Level, TotalActions: row.TotalActions, TicksSinceAction: row.TicksSinceAction,
		Imprisoned: row.Imprisoned, Fine: model.Cents(row.Fine), LandOwnershipStreak: row.LandOwnershipStreak,
		MapID: fromNullString(row.MapID), TierJoined: model.Tier(row.TierJoined),
		UnlockedTiers: model.TierSet(row.UnlockedTiers), CreatedAt: row.CreatedAt,
	}
}

const gameCompanySelectColumns = `
	id, owner_user_id, display_name, boss_name, cash, offshore_savings, level,
	total_actions, ticks_since_action, imprisoned, fine, land_ownership_streak,
	map_id, tier_joined, unlocked_tiers, created_at
`

func (r *GameCompanyRepository) Create(ctx context.Context, c *model.GameCompany) error {
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO game_companies (id, owner_user_id, display_name, boss_name, cash, offshore_savings, level,
			total_actions, ticks_since_action, imprisoned, fine, land_ownership_streak, map_id, tier_joined,
			unlocked_tiers, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, c.ID, c.OwnerUserID, c.DisplayName, c.BossName, int64(c.Cash), int64(c.OffshoreSavings), c.Level,
		c.TotalActions, c.TicksSinceAction, c.Imprisoned, int64(c.Fine), c.LandOwnershipStreak,
		nullString(c.MapID), string(c.TierJoined), int(c.UnlockedTiers), c.CreatedAt)
	return err
}

func (r *GameCompanyRepository) Get(ctx context.Context, id string) (*model.GameCompany, error) {
	var row gameCompanyRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+gameCompanySelectColumns+" FROM game_companies WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("game_company", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *GameCompanyRepository) ListByOwner(ctx context.Context, userID string) ([]model.GameCompany, error) {
	var rows []gameCompanyRow
	if err := r.DB.SelectContext(ctx, &rows, "SELECT "+gameCompanySelectColumns+" FROM game_companies WHERE owner_user_id = $1", userID); err != nil {
		return nil, err
	}
	out := make([]model.GameCompany, len(rows))
	for i, row := range rows {
		out[i] = *row.toModel()
	}
	return out, nil
}

func (r *GameCompanyRepository) ListByMap(ctx context.Context, mapID string) ([]model.GameCompany, error) {
	var rows []gameCompanyRow
	if err := r.DB.SelectContext(ctx, &rows, "SELECT "+gameCompanySelectColumns+" FROM game_companies WHERE map_id = $1", mapID); err != nil {
		return nil, err
	}
	out := make([]model.GameCompany, len(rows))
	for i, row := range rows {
		out[i] = *row.toModel()
	}
	return out, nil
}

func (r *GameCompanyRepository) Update(ctx context.Context, c *model.GameCompany) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE game_companies SET display_name=$1, boss_name=$2, cash=$3, offshore_savings=$4, level=$5,
			total_actions=$6, ticks_since_action=$7, imprisoned=$8, fine=$9, land_ownership_streak=$10,
			map_id=$11, tier_joined=$12, unlocked_tiers=$13
		WHERE id = $14
	`, c.DisplayName, c.BossName, int64(c.Cash), int64(c.OffshoreSavings), c.Level,
		c.TotalActions, c.TicksSinceAction, c.Imprisoned, int64(c.Fine), c.LandOwnershipStreak,
		nullString(c.MapID), string(c.TierJoined), int(c.UnlockedTiers), c.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "game_company", c.ID)
}
