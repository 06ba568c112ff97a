package postgres

import (
	"context"
	"time"

	"citytycoon-backend/internal/model"
)

// DonationRepository implements repository.DonationRepository.
type DonationRepository struct{ *Store }

func NewDonationRepository(s *Store) *DonationRepository {
	return &DonationRepository{s}
}

func (r *DonationRepository) Create(ctx context.Context, d *model.Donation) error {
	if d.ID == "" {
		d.ID = newID()
	}
	d.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO temple_donations (id, company_id, map_id, amount, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, d.ID, d.CompanyID, d.MapID, int64(d.Amount), d.CreatedAt)
	return err
}

type leaderboardRow struct {
	CompanyID string `db:"company_id"`
	Total     int64  `db:"total"`
}

func (r *DonationRepository) Leaderboard(ctx context.Context, limit int) ([]model.DonationLeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []leaderboardRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT company_id, SUM(amount) AS total FROM temple_donations
		GROUP BY company_id ORDER BY total DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.DonationLeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.DonationLeaderboardEntry{CompanyID: row.CompanyID, Total: model.Cents(row.Total)})
	}
	return out, nil
}
