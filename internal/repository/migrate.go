package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixitek/services-api/internal/model"
)

//go:embed schema.sql
var schema string

// Migrate creates missing tables and seeds the default service categories.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	for _, name := range model.DefaultCategories {
		_, err := pool.Exec(ctx,
			`INSERT INTO service_categories (name, created_at) VALUES ($1, NOW()) ON CONFLICT (name) DO NOTHING`, name,
		)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}
