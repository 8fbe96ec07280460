package postgres

import (
	"context"
	"database/sql"

	"cat-feeder/internal/domain/audit"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, e audit.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, created_at, action, details, actor_user_id)
		VALUES ($1,$2,$3,$4,$5)
	`, e.ID, e.CreatedAt, e.Action, e.Details, e.ActorUserID)
	return err
}

func (r *AuditRepo) List(ctx context.Context, limit int) ([]audit.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, action, details, actor_user_id FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanAuditEntries(rows)
}

func (r *AuditRepo) ListByAction(ctx context.Context, action string, limit int) ([]audit.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, action, details, actor_user_id FROM audit_log
		WHERE action = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, action, limit)
	if err != nil {
		return nil, err
	}
	return scanAuditEntries(rows)
}

func scanAuditEntries(rows *sql.Rows) ([]audit.Entry, error) {
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Action, &e.Details, &e.ActorUserID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
