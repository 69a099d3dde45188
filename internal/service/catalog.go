package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
)

var (
	ErrTaxonNotFound    = errors.New("taxonomy entry not found")
	ErrCategoryNotFound = errors.New("service category not found")
)

// OptionCache is implemented by OptionService.
type OptionCache interface {
	PurgeCache(ctx context.Context) error
}

type TaxonomyService struct {
	repo  repository.TaxonomyRepository
	cache OptionCache
}

func NewTaxonomyService(repo repository.TaxonomyRepository, cache OptionCache) *TaxonomyService {
	return &TaxonomyService{repo: repo, cache: cache}
}

func (s *TaxonomyService) List(ctx context.Context, t model.Taxonomy) ([]model.Taxon, error) {
	return s.repo.List(ctx, t)
}

func (s *TaxonomyService) Get(ctx context.Context, t model.Taxonomy, id int64) (*model.Taxon, error) {
	taxon, err := s.repo.GetByID(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t, err)
	}
	if taxon == nil {
		return nil, ErrTaxonNotFound
	}
	return taxon, nil
}

func (s *TaxonomyService) Create(ctx context.Context, t model.Taxonomy, taxon *model.Taxon) error {
	if err := model.Validate(taxon); err != nil {
		return err
	}
	return s.repo.Create(ctx, t, taxon)
}

func (s *TaxonomyService) Update(ctx context.Context, t model.Taxonomy, taxon *model.Taxon) error {
	if err := model.Validate(taxon); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, t, taxon); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaxonNotFound
		}
		return err
	}
	return nil
}

// Delete clears the entry from options that reference it, so cached
// options are purged as well.
func (s *TaxonomyService) Delete(ctx context.Context, t model.Taxonomy, id int64) error {
	if err := s.repo.Delete(ctx, t, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaxonNotFound
		}
		return err
	}
	purge(ctx, s.cache)
	return nil
}

type CategoryService struct {
	repo  repository.CategoryRepository
	cache OptionCache
}

func NewCategoryService(repo repository.CategoryRepository, cache OptionCache) *CategoryService {
	return &CategoryService{repo: repo, cache: cache}
}

func (s *CategoryService) List(ctx context.Context) ([]model.ServiceCategory, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*model.ServiceCategory, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, c *model.ServiceCategory) error {
	if err := model.Validate(c); err != nil {
		return err
	}
	return s.repo.Create(ctx, c)
}

func (s *CategoryService) Update(ctx context.Context, c *model.ServiceCategory) error {
	if err := model.Validate(c); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// Delete removes the category and, through the foreign key, its options.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	purge(ctx, s.cache)
	return nil
}

// purge leaves a failed purge to the cache TTL; the delete itself succeeded.
func purge(ctx context.Context, cache OptionCache) {
	if cache == nil {
		return
	}
	if err := cache.PurgeCache(ctx); err != nil {
		slog.WarnContext(ctx, "purge option cache", "error", err)
	}
}
