package postgres

import (
	"context"
	"database/sql"
	"time"

	"cat-feeder/internal/domain/weights"
)

type WeightsRepo struct {
	db *sql.DB
}

func NewWeightsRepo(db *sql.DB) *WeightsRepo {
	return &WeightsRepo{db: db}
}

func (r *WeightsRepo) Create(ctx context.Context, e weights.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weight_entries (id, pet_id, weight_kg, recorded_at)
		VALUES ($1,$2,$3,$4)
	`, e.ID, e.PetID, e.WeightKg, e.RecordedAt)
	return err
}

func (r *WeightsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]weights.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, weight_kg, recorded_at FROM weight_entries
		WHERE pet_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, petID, limit)
	if err != nil {
		return nil, err
	}
	return scanWeights(rows)
}

func (r *WeightsRepo) ListRange(ctx context.Context, petID string, start, end time.Time) ([]weights.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, weight_kg, recorded_at FROM weight_entries
		WHERE pet_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at ASC
	`, petID, start, end)
	if err != nil {
		return nil, err
	}
	return scanWeights(rows)
}

func scanWeights(rows *sql.Rows) ([]weights.Entry, error) {
	defer rows.Close()

	out := make([]weights.Entry, 0)
	for rows.Next() {
		var e weights.Entry
		if err := rows.Scan(&e.ID, &e.PetID, &e.WeightKg, &e.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
