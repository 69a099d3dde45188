package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixitek/services-api/internal/model"
)

var ErrUnknownTaxonomy = errors.New("unknown taxonomy")

// TaxonomyRepository serves every flat reference table; the table is
// picked per call.
type TaxonomyRepository interface {
	List(ctx context.Context, t model.Taxonomy) ([]model.Taxon, error)
	GetByID(ctx context.Context, t model.Taxonomy, id int64) (*model.Taxon, error)
	Create(ctx context.Context, t model.Taxonomy, taxon *model.Taxon) error
	Update(ctx context.Context, t model.Taxonomy, taxon *model.Taxon) error
	Delete(ctx context.Context, t model.Taxonomy, id int64) error
}

type pgTaxonomyRepo struct{ pool *pgxpool.Pool }

func NewTaxonomyRepository(pool *pgxpool.Pool) TaxonomyRepository {
	return &pgTaxonomyRepo{pool: pool}
}

func table(t model.Taxonomy) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTaxonomy, t)
	}
	return string(t), nil
}

func (r *pgTaxonomyRepo) List(ctx context.Context, t model.Taxonomy) ([]model.Taxon, error) {
	name, err := table(t)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT id, name, description, photo, created_at FROM %s ORDER BY name`, name),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	defer rows.Close()

	var out []model.Taxon
	for rows.Next() {
		var tx model.Taxon
		if err := rows.Scan(&tx.ID, &tx.Name, &tx.Description, &tx.Photo, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *pgTaxonomyRepo) GetByID(ctx context.Context, t model.Taxonomy, id int64) (*model.Taxon, error) {
	name, err := table(t)
	if err != nil {
		return nil, err
	}
	tx := &model.Taxon{}
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, name, description, photo, created_at FROM %s WHERE id = $1`, name), id,
	).Scan(&tx.ID, &tx.Name, &tx.Description, &tx.Photo, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return tx, nil
}

func (r *pgTaxonomyRepo) Create(ctx context.Context, t model.Taxonomy, taxon *model.Taxon) error {
	name, err := table(t)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, description, photo, created_at) VALUES ($1, $2, $3, NOW())
			RETURNING id, created_at`, name),
		taxon.Name, taxon.Description, taxon.Photo,
	).Scan(&taxon.ID, &taxon.CreatedAt)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, mapError(err))
	}
	return nil
}

func (r *pgTaxonomyRepo) Update(ctx context.Context, t model.Taxonomy, taxon *model.Taxon) error {
	name, err := table(t)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET name = $2, description = $3, photo = $4 WHERE id = $1 RETURNING created_at`, name),
		taxon.ID, taxon.Name, taxon.Description, taxon.Photo,
	).Scan(&taxon.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update %s: %w", name, mapError(err))
	}
	return nil
}

// Delete leaves referencing service options in place; their foreign key
// is set to NULL by the schema.
func (r *pgTaxonomyRepo) Delete(ctx context.Context, t model.Taxonomy, id int64) error {
	name, err := table(t)
	if err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, name), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, mapError(err))
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
