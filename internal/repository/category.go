package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixitek/services-api/internal/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.ServiceCategory, error)
	GetByID(ctx context.Context, id int64) (*model.ServiceCategory, error)
	Create(ctx context.Context, c *model.ServiceCategory) error
	Update(ctx context.Context, c *model.ServiceCategory) error
	Delete(ctx context.Context, id int64) error
}

type pgCategoryRepo struct{ pool *pgxpool.Pool }

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &pgCategoryRepo{pool: pool}
}

func (r *pgCategoryRepo) List(ctx context.Context) ([]model.ServiceCategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, feature_image, created_at FROM service_categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.ServiceCategory
	for rows.Next() {
		var c model.ServiceCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.FeatureImage, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id int64) (*model.ServiceCategory, error) {
	c := &model.ServiceCategory{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, feature_image, created_at FROM service_categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.FeatureImage, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) Create(ctx context.Context, c *model.ServiceCategory) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO service_categories (name, description, feature_image, created_at)
		 VALUES ($1, $2, $3, NOW()) RETURNING id, created_at`,
		c.Name, c.Description, c.FeatureImage,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", mapError(err))
	}
	return nil
}

func (r *pgCategoryRepo) Update(ctx context.Context, c *model.ServiceCategory) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE service_categories SET name = $2, description = $3, feature_image = $4
		 WHERE id = $1 RETURNING created_at`,
		c.ID, c.Name, c.Description, c.FeatureImage,
	).Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update category: %w", mapError(err))
	}
	return nil
}

// Delete cascades to every service option in the category.
func (r *pgCategoryRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM service_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", mapError(err))
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
