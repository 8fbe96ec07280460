package postgres

import (
	"context"
	"database/sql"

	"cat-feeder/internal/domain/push"
)

type PushRepo struct {
	db *sql.DB
}

func NewPushRepo(db *sql.DB) *PushRepo {
	return &PushRepo{db: db}
}

func (r *PushRepo) Upsert(ctx context.Context, sub push.Subscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO push_subscriptions (endpoint, p256dh, auth, user_id, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (endpoint) DO UPDATE SET
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			user_id = EXCLUDED.user_id
	`, sub.Endpoint, sub.P256dh, sub.Auth, sub.UserID, sub.CreatedAt)
	return err
}

func (r *PushRepo) List(ctx context.Context) ([]push.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT endpoint, p256dh, auth, user_id, created_at FROM push_subscriptions
		ORDER BY endpoint ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]push.Subscription, 0)
	for rows.Next() {
		var sub push.Subscription
		if err := rows.Scan(&sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.UserID, &sub.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *PushRepo) Delete(ctx context.Context, endpoint, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM push_subscriptions
		WHERE endpoint = $1 AND ($2 = '' OR user_id = $2)
	`, endpoint, userID)
	return err
}
