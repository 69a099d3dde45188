package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
)

type mockOptionRepo struct {
	options map[model.Ref]model.ServiceOption
	nextID  int64
}

func newMockOptionRepo() *mockOptionRepo {
	return &mockOptionRepo{options: make(map[model.Ref]model.ServiceOption)}
}

func base(id, price int64, quantity int) model.BaseOption {
	return model.BaseOption{
		ID: id, CategoryID: 1,
		Price:           decimal.NewNullDecimal(decimal.NewFromInt(price)),
		Quantity:        quantity,
		NeedsMovingHelp: model.No,
	}
}

func (m *mockOptionRepo) put(opt model.ServiceOption) model.ServiceOption {
	m.options[model.RefOf(opt)] = opt
	return opt
}

func (m *mockOptionRepo) remove(ref model.Ref) { delete(m.options, ref) }

func (m *mockOptionRepo) Create(_ context.Context, opt model.ServiceOption) error {
	m.nextID++
	opt.Base().ID = m.nextID
	m.put(opt)
	return nil
}

func (m *mockOptionRepo) Get(_ context.Context, ref model.Ref) (model.ServiceOption, error) {
	return m.options[ref], nil
}

func (m *mockOptionRepo) GetMany(_ context.Context, refs []model.Ref) (map[model.Ref]model.ServiceOption, error) {
	out := make(map[model.Ref]model.ServiceOption, len(refs))
	for _, ref := range refs {
		if opt, ok := m.options[ref]; ok {
			out[ref] = opt
		}
	}
	return out, nil
}

func (m *mockOptionRepo) List(_ context.Context, kind model.Kind, filter repository.OptionFilter) ([]model.ServiceOption, error) {
	var out []model.ServiceOption
	for ref, opt := range m.options {
		if ref.Kind != kind {
			continue
		}
		if filter.CategoryID != nil && opt.Base().CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, opt)
	}
	return out, nil
}

func (m *mockOptionRepo) Update(_ context.Context, opt model.ServiceOption) error {
	if _, ok := m.options[model.RefOf(opt)]; !ok {
		return repository.ErrNotFound
	}
	m.put(opt)
	return nil
}

func (m *mockOptionRepo) Delete(_ context.Context, ref model.Ref) error {
	if _, ok := m.options[ref]; !ok {
		return repository.ErrNotFound
	}
	delete(m.options, ref)
	return nil
}

func newOptionService() (*OptionService, *mockOptionRepo, *mockCategoryRepo) {
	optionRepo := newMockOptionRepo()
	categoryRepo := newMockCategoryRepo()
	categoryRepo.categories[1] = &model.ServiceCategory{ID: 1, Name: "TV Mounting"}
	return NewOptionService(optionRepo, categoryRepo, nil, 0), optionRepo, categoryRepo
}

func TestOptionService_CreateAndGet(t *testing.T) {
	svc, _, _ := newOptionService()
	ctx := context.Background()

	opt, err := model.NewOption(model.KindTVMounting)
	require.NoError(t, err)
	opt.Base().CategoryID = 1
	opt.Base().Price = decimal.NewNullDecimal(decimal.NewFromInt(120))

	require.NoError(t, svc.Create(ctx, opt))
	assert.NotZero(t, opt.Base().ID)

	got, err := svc.Get(ctx, model.RefOf(opt))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(got.TotalPrice()))
}

func TestOptionService_Create_UnknownCategory(t *testing.T) {
	svc, _, _ := newOptionService()

	opt, err := model.NewOption(model.KindGazebo)
	require.NoError(t, err)
	opt.Base().CategoryID = 99

	var verr *model.ValidationError
	require.ErrorAs(t, svc.Create(context.Background(), opt), &verr)
	assert.Equal(t, "category_id", verr.Fields[0].Field)
}

func TestOptionService_Create_InvalidFields(t *testing.T) {
	svc, optionRepo, _ := newOptionService()

	opt, err := model.NewOption(model.KindInstallation)
	require.NoError(t, err)
	opt.Base().CategoryID = 1
	opt.Base().Quantity = 0

	var verr *model.ValidationError
	assert.ErrorAs(t, svc.Create(context.Background(), opt), &verr)
	assert.Empty(t, optionRepo.options)
}

func TestOptionService_Get_NotFound(t *testing.T) {
	svc, _, _ := newOptionService()

	_, err := svc.Get(context.Background(), model.Ref{Kind: model.KindFurnitureAssembly, ID: 5})
	assert.ErrorIs(t, err, ErrOptionNotFound)
}

func TestOptionService_UpdateDelete(t *testing.T) {
	svc, optionRepo, _ := newOptionService()
	ctx := context.Background()

	opt := optionRepo.put(&model.FurnitureAssemblyOption{BaseOption: base(3, 40, 1)})
	opt.Base().Price = decimal.NewNullDecimal(decimal.NewFromInt(45))
	require.NoError(t, svc.Update(ctx, opt))

	require.NoError(t, svc.Delete(ctx, model.RefOf(opt)))
	assert.ErrorIs(t, svc.Delete(ctx, model.RefOf(opt)), ErrOptionNotFound)
	assert.ErrorIs(t, svc.Update(ctx, opt), ErrOptionNotFound)
}

func TestOptionService_ListByCategory(t *testing.T) {
	svc, optionRepo, categoryRepo := newOptionService()
	categoryRepo.categories[2] = &model.ServiceCategory{ID: 2, Name: "Gazebo Assembly"}

	optionRepo.put(&model.TVMountingOption{BaseOption: base(1, 10, 1)})
	optionRepo.put(&model.GazeboServiceOption{BaseOption: base(1, 10, 1)})
	other := base(2, 10, 1)
	other.CategoryID = 2
	optionRepo.put(&model.GazeboServiceOption{BaseOption: other})

	opts, err := svc.ListByCategory(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	_, err = svc.ListByCategory(context.Background(), 77)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
