package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// MarketRepository implements repository.MarketRepository.
type MarketRepository struct{ *Store }

func NewMarketRepository(s *Store) *MarketRepository { return &MarketRepository{s} }

type marketRow struct {
	ID          string    `db:"id"`
	MapID       string    `db:"map_id"`
	X           int       `db:"x"`
	Y           int       `db:"y"`
	Subject     string    `db:"subject"`
	SellerID    string    `db:"seller_id"`
	AskingPrice int64     `db:"asking_price"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row marketRow) toModel() *model.MarketListing {
	return &model.MarketListing{
		ID: row.ID, MapID: row.MapID, Coordinate: model.Coordinate{X: row.X, Y: row.Y},
		Subject: model.ListingSubject(row.Subject), SellerID: row.SellerID,
		AskingPrice: model.Cents(row.AskingPrice), Status: model.ListingStatus(row.Status), CreatedAt: row.CreatedAt,
	}
}

const marketSelectColumns = `id, map_id, x, y, subject, seller_id, asking_price, status, created_at`

func (r *MarketRepository) Create(ctx context.Context, l *model.MarketListing) error {
	if l.ID == "" {
		l.ID = newID()
	}
	l.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO market_listings (id, map_id, x, y, subject, seller_id, asking_price, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, l.ID, l.MapID, l.Coordinate.X, l.Coordinate.Y, string(l.Subject), l.SellerID, int64(l.AskingPrice),
		string(l.Status), l.CreatedAt)
	return err
}

func (r *MarketRepository) Get(ctx context.Context, id string) (*model.MarketListing, error) {
	var row marketRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+marketSelectColumns+" FROM market_listings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerrors.NotFound("market_listing", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *MarketRepository) GetActiveForSubject(ctx context.Context, mapID string, coord model.Coordinate) (*model.MarketListing, error) {
	var row marketRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+marketSelectColumns+`
		FROM market_listings WHERE map_id = $1 AND x = $2 AND y = $3 AND status = 'active'
	`, mapID, coord.X, coord.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *MarketRepository) Update(ctx context.Context, l *model.MarketListing) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE market_listings SET status = $1, asking_price = $2 WHERE id = $3`,
		string(l.Status), int64(l.AskingPrice), l.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "market_listing", l.ID)
}
