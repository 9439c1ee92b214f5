package services

import (
	"context"

	"catering-menu/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// EnsureMenuItemsTable creates menu_items if missing (safety net when migrate was not run).
func EnsureMenuItemsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS menu_items (
			id          BIGINT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			category    TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_menu_items_category ON menu_items(category);
	`)
	return err
}

// PostgresCatalogSource reads the catalog from the menu_items table.
type PostgresCatalogSource struct {
	Pool *pgxpool.Pool
}

func (s PostgresCatalogSource) Load(ctx context.Context) ([]models.Dish, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, description, price::text, category, image
		FROM menu_items
		ORDER BY id`,
	)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, errors.Wrap(ErrCatalogNotFound, "menu_items")
		}
		return nil, readErrorf("query menu_items: %v", err)
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		var d models.Dish
		var price string
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &price, &d.Category, &d.Image); err != nil {
			return nil, readErrorf("scan menu_items: %v", err)
		}
		if d.Price, err = decimal.NewFromString(price); err != nil {
			return nil, readErrorf("menu item %d: invalid price %q", d.ID, price)
		}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return nil, errors.Wrap(ErrCatalogNotFound, "menu_items")
		}
		return nil, readErrorf("read menu_items: %v", err)
	}
	return dishes, nil
}

// SeedMenu upserts dishes by id in a single transaction and returns how many rows were written.
func SeedMenu(ctx context.Context, pool *pgxpool.Pool, dishes []models.Dish) (int, error) {
	if err := EnsureMenuItemsTable(ctx, pool); err != nil {
		return 0, errors.Wrap(err, "ensure menu_items")
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, d := range dishes {
		batch.Queue(`
			INSERT INTO menu_items (id, name, description, price, category, image, updated_at)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, now())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				category = EXCLUDED.category,
				image = EXCLUDED.image,
				updated_at = now()`,
			d.ID, d.Name, d.Description, d.Price.String(), d.Category, d.Image,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, errors.Wrap(err, "upsert menu_items")
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(dishes), nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
