package postgres

import (
	"context"
	"time"

	"citytycoon-backend/internal/model"
)

// ChatRepository implements repository.ChatRepository.
type ChatRepository struct{ *Store }

func NewChatRepository(s *Store) *ChatRepository {
	return &ChatRepository{s}
}

type chatMessageRow struct {
	ID               string    `db:"id"`
	MapID            string    `db:"map_id"`
	CompanyID        string    `db:"company_id"`
	Body             string    `db:"body"`
	ModerationStatus string    `db:"moderation_status"`
	CreatedAt        time.Time `db:"created_at"`
}

func (row chatMessageRow) toModel() model.ChatMessage {
	return model.ChatMessage{
		ID: row.ID, MapID: row.MapID, CompanyID: row.CompanyID, Body: row.Body,
		ModerationStatus: model.ModerationState(row.ModerationStatus), CreatedAt: row.CreatedAt,
	}
}

func (r *ChatRepository) Create(ctx context.Context, m *model.ChatMessage) error {
	if m.ID == "" {
		m.ID = newID()
	}
	m.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO chat_messages (id, map_id, company_id, body, moderation_status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, m.ID, m.MapID, m.CompanyID, m.Body, string(m.ModerationStatus), m.CreatedAt)
	return err
}

func (r *ChatRepository) ListRecent(ctx context.Context, mapID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []chatMessageRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT id, map_id, company_id, body, moderation_status, created_at
		FROM chat_messages WHERE map_id = $1 ORDER BY created_at DESC LIMIT $2
	`, mapID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.ChatMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}
