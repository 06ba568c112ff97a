package postgres

import (
	"context"
	"time"

	"citytycoon-backend/internal/model"
)

// HeroMessageRepository implements repository.HeroMessageRepository.
type HeroMessageRepository struct{ *Store }

func NewHeroMessageRepository(s *Store) *HeroMessageRepository {
	return &HeroMessageRepository{s}
}

type heroMessageRow struct {
	ID               string    `db:"id"`
	CompanyID        string    `db:"company_id"`
	Body             string    `db:"body"`
	ModerationStatus string    `db:"moderation_status"`
	CreatedAt        time.Time `db:"created_at"`
}

func (row heroMessageRow) toModel() model.HeroMessage {
	return model.HeroMessage{
		ID: row.ID, CompanyID: row.CompanyID, Body: row.Body,
		ModerationStatus: model.ModerationState(row.ModerationStatus), CreatedAt: row.CreatedAt,
	}
}

func (r *HeroMessageRepository) Create(ctx context.Context, m *model.HeroMessage) error {
	if m.ID == "" {
		m.ID = newID()
	}
	m.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO hero_messages (id, company_id, body, moderation_status, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, m.ID, m.CompanyID, m.Body, string(m.ModerationStatus), m.CreatedAt)
	return err
}

func (r *HeroMessageRepository) ListRecent(ctx context.Context, limit int) ([]model.HeroMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []heroMessageRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT id, company_id, body, moderation_status, created_at
		FROM hero_messages ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.HeroMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}
