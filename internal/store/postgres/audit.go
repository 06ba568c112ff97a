package postgres

import (
	"context"
	"encoding/json"
	"time"

	"citytycoon-backend/internal/model"
)

// AuditLogRepository implements repository.AuditLogRepository.
type AuditLogRepository struct{ *Store }

func NewAuditLogRepository(s *Store) *AuditLogRepository { return &AuditLogRepository{s} }

func (r *AuditLogRepository) Append(ctx context.Context, a *model.AuditLog) error {
	if a.ID == "" {
		a.ID = newID()
	}
	a.CreatedAt = time.Now().UTC()
	detail, err := json.Marshal(a.Detail)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, tenant_id, action, category, outcome, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.ActorID, a.TenantID, a.Action, a.Category, a.Outcome, detail, a.CreatedAt)
	return err
}

type auditDisplayRow struct {
	ID               string    `db:"id"`
	ActorID          string    `db:"actor_id"`
	TenantID         string    `db:"tenant_id"`
	Action           string    `db:"action"`
	Category         string    `db:"category"`
	Outcome          string    `db:"outcome"`
	Detail           []byte    `db:"detail"`
	CreatedAt        time.Time `db:"created_at"`
	ActorDisplayName string    `db:"actor_display_name"`
	TenantName       string    `db:"tenant_name"`
}

func (r *AuditLogRepository) ListDisplay(ctx context.Context, tenantID string, limit int) ([]model.AuditLogDisplay, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []auditDisplayRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT al.id, al.actor_id, al.tenant_id, al.action, al.category, al.outcome, al.detail, al.created_at,
			coalesce(u.username, '') AS actor_display_name, coalesce(t.name, '') AS tenant_name
		FROM audit_logs al
		LEFT JOIN users u ON u.id = al.actor_id
		LEFT JOIN tenants t ON t.id = al.tenant_id
		WHERE al.tenant_id = $1
		ORDER BY al.created_at DESC LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.AuditLogDisplay, 0, len(rows))
	for _, row := range rows {
		detail := map[string]interface{}{}
		if len(row.Detail) > 0 {
			if err := json.Unmarshal(row.Detail, &detail); err != nil {
				return nil, err
			}
		}
		out = append(out, model.AuditLogDisplay{
			AuditLog: model.AuditLog{
				ID: row.ID, ActorID: row.ActorID, TenantID: row.TenantID, Action: row.Action,
				Category: row.Category, Outcome: row.Outcome, Detail: detail, CreatedAt: row.CreatedAt,
			},
			ActorDisplayName: row.ActorDisplayName,
			TenantName:       row.TenantName,
		})
	}
	return out, nil
}
