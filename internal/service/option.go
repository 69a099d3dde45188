package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
)

var ErrOptionNotFound = errors.New("service option not found")

const defaultOptionCacheTTL = 60 * time.Second

type OptionService struct {
	optionRepo   repository.OptionRepository
	categoryRepo repository.CategoryRepository
	redisClient  *redis.Client
	cacheTTL     time.Duration
}

func NewOptionService(
	optionRepo repository.OptionRepository,
	categoryRepo repository.CategoryRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
) *OptionService {
	if cacheTTL <= 0 {
		cacheTTL = defaultOptionCacheTTL
	}
	return &OptionService{
		optionRepo:   optionRepo,
		categoryRepo: categoryRepo,
		redisClient:  redisClient,
		cacheTTL:     cacheTTL,
	}
}

func (s *OptionService) Create(ctx context.Context, opt model.ServiceOption) error {
	if err := s.check(ctx, opt); err != nil {
		return err
	}
	if err := s.optionRepo.Create(ctx, opt); err != nil {
		return fmt.Errorf("create option: %w", err)
	}
	return nil
}

func (s *OptionService) Get(ctx context.Context, ref model.Ref) (model.ServiceOption, error) {
	if cached := s.fromCache(ctx, ref); cached != nil {
		return cached, nil
	}

	opt, err := s.optionRepo.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get option: %w", err)
	}
	if opt == nil {
		return nil, ErrOptionNotFound
	}

	s.toCache(ctx, opt)
	return opt, nil
}

func (s *OptionService) List(ctx context.Context, kind model.Kind, filter repository.OptionFilter) ([]model.ServiceOption, error) {
	opts, err := s.optionRepo.List(ctx, kind, filter)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	return opts, nil
}

// ListByCategory returns the options of every kind filed under the category.
func (s *OptionService) ListByCategory(ctx context.Context, categoryID int64) ([]model.ServiceOption, error) {
	c, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}

	var all []model.ServiceOption
	for _, kind := range model.Kinds() {
		opts, err := s.optionRepo.List(ctx, kind, repository.OptionFilter{CategoryID: &categoryID})
		if err != nil {
			return nil, fmt.Errorf("list options: %w", err)
		}
		all = append(all, opts...)
	}
	return all, nil
}

func (s *OptionService) Update(ctx context.Context, opt model.ServiceOption) error {
	if err := s.check(ctx, opt); err != nil {
		return err
	}
	if err := s.optionRepo.Update(ctx, opt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOptionNotFound
		}
		return fmt.Errorf("update option: %w", err)
	}
	s.invalidateCache(ctx, model.RefOf(opt))
	return nil
}

func (s *OptionService) Delete(ctx context.Context, ref model.Ref) error {
	if err := s.optionRepo.Delete(ctx, ref); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOptionNotFound
		}
		return fmt.Errorf("delete option: %w", err)
	}
	s.invalidateCache(ctx, ref)
	return nil
}

func (s *OptionService) check(ctx context.Context, opt model.ServiceOption) error {
	if err := model.Validate(opt); err != nil {
		return err
	}
	c, err := s.categoryRepo.GetByID(ctx, opt.Base().CategoryID)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return model.NewValidationError("category_id", "exists", "category does not exist")
	}
	return nil
}

const cacheKeyPrefix = "option:"

func cacheKey(ref model.Ref) string { return cacheKeyPrefix + ref.String() }

func (s *OptionService) fromCache(ctx context.Context, ref model.Ref) model.ServiceOption {
	if s.redisClient == nil {
		return nil
	}
	cached, err := s.redisClient.Get(ctx, cacheKey(ref)).Bytes()
	if err != nil {
		return nil
	}
	opt, err := model.NewOption(ref.Kind)
	if err != nil || json.Unmarshal(cached, opt) != nil {
		return nil
	}
	return opt
}

func (s *OptionService) toCache(ctx context.Context, opt model.ServiceOption) {
	if s.redisClient == nil {
		return
	}
	if data, err := json.Marshal(opt); err == nil {
		s.redisClient.Set(ctx, cacheKey(model.RefOf(opt)), data, s.cacheTTL)
	}
}

// PurgeCache drops every cached option. Catalog deletes that cascade into
// option rows call it, since the affected ids are not known up front.
func (s *OptionService) PurgeCache(ctx context.Context) error {
	if s.redisClient == nil {
		return nil
	}
	iter := s.redisClient.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan option cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("purge option cache: %w", err)
	}
	return nil
}

func (s *OptionService) invalidateCache(ctx context.Context, ref model.Ref) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, cacheKey(ref))
	}
}
