package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"citytycoon-backend/internal/model"
)

// TransactionRecordRepository implements repository.TransactionRepository.
// Named distinctly from the in-process internal/transaction package.
type TransactionRecordRepository struct{ *Store }

func NewTransactionRecordRepository(s *Store) *TransactionRecordRepository {
	return &TransactionRecordRepository{s}
}

type transactionRecordRow struct {
	ID               string         `db:"id"`
	Type             string         `db:"type"`
	CompanyID        string         `db:"company_id"`
	MapID            string         `db:"map_id"`
	TargetTileID     sql.NullString `db:"target_tile_id"`
	TargetBuildingID sql.NullString `db:"target_building_id"`
	Amount           int64          `db:"amount"`
	Details          []byte         `db:"details"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (row transactionRecordRow) toModel() (*model.TransactionRecord, error) {
	details := map[string]interface{}{}
	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &details); err != nil {
			return nil, err
		}
	}
	return &model.TransactionRecord{
		ID: row.ID, Type: model.TransactionType(row.Type), CompanyID: row.CompanyID, MapID: row.MapID,
		TargetTileID: fromNullString(row.TargetTileID), TargetBuildingID: fromNullString(row.TargetBuildingID),
		Amount: model.Cents(row.Amount), Details: details, CreatedAt: row.CreatedAt,
	}, nil
}

func (r *TransactionRecordRepository) Append(ctx context.Context, t *model.TransactionRecord) error {
	if t.ID == "" {
		t.ID = newID()
	}
	t.CreatedAt = time.Now().UTC()
	details, err := json.Marshal(t.Details)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO transaction_records (id, type, company_id, map_id, target_tile_id, target_building_id, amount, details, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, t.ID, string(t.Type), t.CompanyID, t.MapID, nullString(t.TargetTileID), nullString(t.TargetBuildingID),
		int64(t.Amount), details, t.CreatedAt)
	return err
}

func (r *TransactionRecordRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]model.TransactionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []transactionRecordRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT id, type, company_id, map_id, target_tile_id, target_building_id, amount, details, created_at
		FROM transaction_records WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		t, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}
