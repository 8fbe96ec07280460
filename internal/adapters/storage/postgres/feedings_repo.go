package postgres

import (
	"context"
	"database/sql"
	"time"

	"cat-feeder/internal/domain/feedings"
)

type FeedingsRepo struct {
	db *sql.DB
}

func NewFeedingsRepo(db *sql.DB) *FeedingsRepo {
	return &FeedingsRepo{db: db}
}

func (r *FeedingsRepo) Create(ctx context.Context, e feedings.FeedingEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feeding_events (id, fed_at, amount_grams, diet_type, pet_id)
		VALUES ($1,$2,$3,$4,$5)
	`, e.ID, e.FedAt, e.AmountGrams, e.DietType, e.PetID)
	return err
}

// pet_id = '' en el WHERE significa "sin filtro": la condición
// ($3 = '' OR pet_id = $3) cubre ambos casos con una sola query.

func (r *FeedingsRepo) CountInWindow(ctx context.Context, start, end time.Time, petID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM feeding_events
		WHERE fed_at >= $1 AND fed_at < $2 AND ($3 = '' OR pet_id = $3)
	`, start, end, petID).Scan(&count)
	return count, err
}

func (r *FeedingsRepo) SumGramsInWindow(ctx context.Context, start, end time.Time, petID string) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_grams), 0) FROM feeding_events
		WHERE fed_at >= $1 AND fed_at < $2 AND ($3 = '' OR pet_id = $3)
	`, start, end, petID).Scan(&sum)
	return sum, err
}

// DailyTotals agrupa por día calendario UTC, explícito en la query para
// no depender del timezone de la sesión de Postgres.
func (r *FeedingsRepo) DailyTotals(ctx context.Context, start, end time.Time, petID string) (map[string]feedings.DayTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TO_CHAR(fed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(amount_grams), 0)
		FROM feeding_events
		WHERE fed_at >= $1 AND fed_at < $2 AND ($3 = '' OR pet_id = $3)
		GROUP BY 1
	`, start, end, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]feedings.DayTotal)
	for rows.Next() {
		var day string
		var t feedings.DayTotal
		if err := rows.Scan(&day, &t.Count, &t.Grams); err != nil {
			return nil, err
		}
		out[day] = t
	}
	return out, rows.Err()
}

func (r *FeedingsRepo) TotalGrams(ctx context.Context) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_grams), 0) FROM feeding_events`,
	).Scan(&sum)
	return sum, err
}

func (r *FeedingsRepo) Last(ctx context.Context, petID string) (feedings.FeedingEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, fed_at, amount_grams, diet_type, pet_id FROM feeding_events
		WHERE ($1 = '' OR pet_id = $1)
		ORDER BY fed_at DESC
		LIMIT 1
	`, petID)

	var e feedings.FeedingEvent
	err := row.Scan(&e.ID, &e.FedAt, &e.AmountGrams, &e.DietType, &e.PetID)
	if err == sql.ErrNoRows {
		return feedings.FeedingEvent{}, feedings.ErrNotFound
	}
	return e, err
}

func (r *FeedingsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]feedings.FeedingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fed_at, amount_grams, diet_type, pet_id FROM feeding_events
		WHERE pet_id = $1
		ORDER BY fed_at DESC
		LIMIT $2
	`, petID, limit)
	if err != nil {
		return nil, err
	}
	return scanFeedings(rows)
}

func (r *FeedingsRepo) ListRange(ctx context.Context, petID string, start, end time.Time) ([]feedings.FeedingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fed_at, amount_grams, diet_type, pet_id FROM feeding_events
		WHERE fed_at >= $1 AND fed_at < $2 AND ($3 = '' OR pet_id = $3)
		ORDER BY fed_at ASC
	`, start, end, petID)
	if err != nil {
		return nil, err
	}
	return scanFeedings(rows)
}

func (r *FeedingsRepo) ListAll(ctx context.Context) ([]feedings.FeedingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fed_at, amount_grams, diet_type, pet_id FROM feeding_events
		ORDER BY fed_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return scanFeedings(rows)
}

func (r *FeedingsRepo) CountByPet(ctx context.Context, petID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feeding_events WHERE pet_id = $1`, petID,
	).Scan(&count)
	return count, err
}

func (r *FeedingsRepo) DeleteByPet(ctx context.Context, petID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feeding_events WHERE pet_id = $1`, petID)
	return err
}

func (r *FeedingsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feeding_events`)
	return err
}

func scanFeedings(rows *sql.Rows) ([]feedings.FeedingEvent, error) {
	defer rows.Close()

	out := make([]feedings.FeedingEvent, 0)
	for rows.Next() {
		var e feedings.FeedingEvent
		if err := rows.Scan(&e.ID, &e.FedAt, &e.AmountGrams, &e.DietType, &e.PetID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
