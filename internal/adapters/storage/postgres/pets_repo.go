package postgres

import (
	"context"
	"database/sql"

	"cat-feeder/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, name, age_years, sex, diet_type, breed,
	last_vet_visit, estimated_weight_kg,
	photo_url, photo_blob, photo_mime,
	feed_time_1, feed_time_2,
	daily_limit_count, daily_grams_limit,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, name, age_years, sex, diet_type, breed,
			last_vet_visit, estimated_weight_kg,
			photo_url, photo_blob, photo_mime,
			feed_time_1, feed_time_2,
			daily_limit_count, daily_grams_limit,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		p.ID,
		p.Name,
		toNullInt(p.AgeYears),
		p.Sex,
		p.DietType,
		p.Breed,
		toNullDate(p.LastVetVisit),
		toNullFloat(p.EstimatedWeightKg),
		p.PhotoURL,
		p.PhotoBlob,
		p.PhotoMime,
		p.FeedTime1,
		p.FeedTime2,
		toNullInt(p.DailyLimitCount),
		toNullInt(p.DailyGramsLimit),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			age_years = $3,
			sex = $4,
			diet_type = $5,
			breed = $6,
			last_vet_visit = $7,
			estimated_weight_kg = $8,
			photo_url = $9,
			photo_blob = $10,
			photo_mime = $11,
			feed_time_1 = $12,
			feed_time_2 = $13,
			daily_limit_count = $14,
			daily_grams_limit = $15,
			updated_at = $16
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		toNullInt(p.AgeYears),
		p.Sex,
		p.DietType,
		p.Breed,
		toNullDate(p.LastVetVisit),
		toNullFloat(p.EstimatedWeightKg),
		p.PhotoURL,
		p.PhotoBlob,
		p.PhotoMime,
		p.FeedTime1,
		p.FeedTime2,
		toNullInt(p.DailyLimitCount),
		toNullInt(p.DailyGramsLimit),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err == sql.ErrNoRows {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT`+petColumns+` FROM pets ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pets`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var age, limitCount, gramsLimit sql.NullInt64
	var vet sql.NullTime
	var weight sql.NullFloat64
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&age,
		&p.Sex,
		&p.DietType,
		&p.Breed,
		&vet,
		&weight,
		&p.PhotoURL,
		&p.PhotoBlob,
		&p.PhotoMime,
		&p.FeedTime1,
		&p.FeedTime2,
		&limitCount,
		&gramsLimit,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.AgeYears = fromNullInt(age)
	p.DailyLimitCount = fromNullInt(limitCount)
	p.DailyGramsLimit = fromNullInt(gramsLimit)
	if vet.Valid {
		t := vet.Time
		p.LastVetVisit = &t
	}
	if weight.Valid {
		v := weight.Float64
		p.EstimatedWeightKg = &v
	}
	return p, nil
}
