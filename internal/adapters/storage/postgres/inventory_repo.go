package postgres

import (
	"context"
	"database/sql"

	"cat-feeder/internal/domain/inventory"
)

type InventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// remaining_grams no se persiste: sachet_count es la fuente de verdad
// y los gramos se derivan al leer.

func (r *InventoryRepo) Get(ctx context.Context, petID string) (inventory.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT pet_id, food_name, sachet_count, sachet_size_grams, updated_at
		FROM pet_food_inventory
		WHERE pet_id = $1
	`, petID)

	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return inventory.Item{}, inventory.ErrNotFound
	}
	return item, err
}

func (r *InventoryRepo) Upsert(ctx context.Context, item inventory.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_food_inventory (
			pet_id, food_name, sachet_count, sachet_size_grams, updated_at
		) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (pet_id) DO UPDATE SET
			food_name = EXCLUDED.food_name,
			sachet_count = EXCLUDED.sachet_count,
			sachet_size_grams = EXCLUDED.sachet_size_grams,
			updated_at = EXCLUDED.updated_at
	`,
		item.PetID, item.FoodName, item.SachetCount,
		item.SachetSizeGrams, item.UpdatedAt,
	)
	return err
}

func (r *InventoryRepo) ListLowStock(ctx context.Context, threshold int) ([]inventory.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pet_id, food_name, sachet_count, sachet_size_grams, updated_at
		FROM pet_food_inventory
		WHERE sachet_count <= $1
		ORDER BY pet_id ASC
	`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]inventory.Item, 0)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanInventoryItem(row rowScanner) (inventory.Item, error) {
	var item inventory.Item
	err := row.Scan(
		&item.PetID, &item.FoodName, &item.SachetCount,
		&item.SachetSizeGrams, &item.UpdatedAt,
	)
	if err != nil {
		return inventory.Item{}, err
	}
	item.RemainingGrams = item.SachetCount * item.SachetSizeGrams
	return item, nil
}
