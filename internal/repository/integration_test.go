package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixitek/services-api/internal/model"
)

func seedCategory(t *testing.T, name string) *model.ServiceCategory {
	t.Helper()
	c := &model.ServiceCategory{Name: name}
	require.NoError(t, NewCategoryRepository(testPool).Create(context.Background(), c))
	t.Cleanup(func() { _ = NewCategoryRepository(testPool).Delete(context.Background(), c.ID) })
	return c
}

func seedUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "h", FirstName: "F", LastName: "L"}
	require.NoError(t, NewUserRepository(testPool).Create(context.Background(), u))
	return u
}

func price(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func TestUserRepo_DuplicateEmail(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	seedUser(t, "dup@example.com")
	err := repo.Create(ctx, &model.User{Email: "DUP@example.com", Password: "h"})

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.True(t, ie.UniqueViolation())
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestOptionRepo_CRUDAndResolve(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	cat := seedCategory(t, "TV Mounting "+uuid.NewString())
	repo := NewOptionRepository(testPool)

	opt, err := model.NewOption(model.KindTVMounting)
	require.NoError(t, err)
	tv := opt.(*model.TVMountingOption)
	tv.CategoryID = cat.ID
	tv.Title = "65 inch"
	tv.Price = price(100)
	tv.Bracket = model.BracketFlat
	tv.BracketPrice = price(20)
	require.NoError(t, repo.Create(ctx, tv))
	assert.NotZero(t, tv.ID)

	got, err := repo.Get(ctx, model.RefOf(tv))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.BracketFlat, got.(*model.TVMountingOption).Bracket)
	assert.True(t, decimal.NewFromInt(120).Equal(got.TotalPrice()))

	missing := model.Ref{Kind: model.KindGazebo, ID: 999999}
	found, err := repo.GetMany(ctx, []model.Ref{model.RefOf(tv), missing})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, model.RefOf(tv))

	tv.Price = price(150)
	require.NoError(t, repo.Update(ctx, tv))
	got, _ = repo.Get(ctx, model.RefOf(tv))
	assert.True(t, decimal.NewFromInt(150).Equal(got.Base().Price.Decimal))

	require.NoError(t, repo.Delete(ctx, model.RefOf(tv)))
	got, err = repo.Get(ctx, model.RefOf(tv))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, repo.Delete(ctx, model.RefOf(tv)), ErrNotFound)
}

func TestTaxonomyDelete_NullsOptionReference(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	cat := seedCategory(t, "Furniture "+uuid.NewString())
	taxRepo := NewTaxonomyRepository(testPool)
	optRepo := NewOptionRepository(testPool)

	loc := &model.Taxon{Name: "Living room"}
	require.NoError(t, taxRepo.Create(ctx, model.TaxonomyLocations, loc))

	opt, _ := model.NewOption(model.KindFurnitureAssembly)
	fa := opt.(*model.FurnitureAssemblyOption)
	fa.CategoryID = cat.ID
	fa.LocationID = &loc.ID
	require.NoError(t, optRepo.Create(ctx, fa))

	require.NoError(t, taxRepo.Delete(ctx, model.TaxonomyLocations, loc.ID))

	got, err := optRepo.Get(ctx, model.RefOf(fa))
	require.NoError(t, err)
	require.NotNil(t, got, "option must survive taxonomy deletion")
	assert.Nil(t, got.(*model.FurnitureAssemblyOption).LocationID)
}

func TestTaxonomyRepo_UniqueName(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	repo := NewTaxonomyRepository(testPool)

	require.NoError(t, repo.Create(ctx, model.TaxonomyGazeboModels, &model.Taxon{Name: "Cedar"}))
	err := repo.Create(ctx, model.TaxonomyGazeboModels, &model.Taxon{Name: "Cedar"})
	assert.ErrorIs(t, err, ErrIntegrity)

	_, err = repo.List(ctx, model.Taxonomy("users"))
	assert.ErrorIs(t, err, ErrUnknownTaxonomy)
}

func TestCartRepo_UpsertReplacesQuantity(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	user := seedUser(t, "cart@example.com")
	repo := NewCartRepository(testPool)

	cart, err := repo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	again, err := repo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	ref := model.Ref{Kind: model.KindInstallation, ID: 7}
	first := &model.CartItem{CartID: cart.ID, Ref: ref, Quantity: 2}
	require.NoError(t, repo.UpsertItem(ctx, first))
	second := &model.CartItem{CartID: cart.ID, Ref: ref, Quantity: 5}
	require.NoError(t, repo.UpsertItem(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	withItems, err := repo.GetCartWithItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, withItems.Items, 1)
	assert.Equal(t, 5, withItems.Items[0].Quantity)

	require.NoError(t, repo.DeleteItem(ctx, cart.ID, first.ID))
	require.NoError(t, repo.DeleteItem(ctx, cart.ID, first.ID))
	assert.ErrorIs(t, repo.UpdateItem(ctx, &model.CartItem{ID: first.ID, CartID: cart.ID, Quantity: 1}), ErrNotFound)
}

func TestCartRepo_RemoveSnapshotKeepsLaterChanges(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	user := seedUser(t, "snapshot@example.com")
	repo := NewCartRepository(testPool)

	cart, err := repo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	ordered := &model.CartItem{CartID: cart.ID, Ref: model.Ref{Kind: model.KindFurnitureAssembly, ID: 1}, Quantity: 1}
	require.NoError(t, repo.UpsertItem(ctx, ordered))
	changed := &model.CartItem{CartID: cart.ID, Ref: model.Ref{Kind: model.KindGazebo, ID: 2}, Quantity: 1}
	require.NoError(t, repo.UpsertItem(ctx, changed))

	withItems, err := repo.GetCartWithItems(ctx, cart.ID)
	require.NoError(t, err)
	snap := withItems.Snapshot()

	changed.Quantity = 4
	require.NoError(t, repo.UpsertItem(ctx, changed))
	added := &model.CartItem{CartID: cart.ID, Ref: model.Ref{Kind: model.KindTVMounting, ID: 3}, Quantity: 1}
	require.NoError(t, repo.UpsertItem(ctx, added))

	require.NoError(t, repo.RemoveSnapshot(ctx, snap))

	left, err := repo.GetCartWithItems(ctx, cart.ID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(left.Items))
	for _, item := range left.Items {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{changed.ID, added.ID}, ids)
}

func TestOrderRepo_CreateGetAndStatus(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	user := seedUser(t, "order@example.com")
	cart, err := NewCartRepository(testPool).GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	repo := NewOrderRepository(testPool)

	items := []model.OrderItem{{
		Ref: model.Ref{Kind: model.KindGazebo, ID: 3}, Title: "Cedar 12x12", Quantity: 2,
		UnitPrice: decimal.NewFromInt(400), Price: decimal.NewFromInt(800),
	}}
	order := &model.Order{
		UserID: &user.ID, CartID: &cart.ID, Status: model.OrderStatusPending,
		TotalPrice: model.SumItems(items), Items: items,
	}
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.True(t, decimal.NewFromInt(800).Equal(found.TotalPrice))
	assert.Equal(t, model.OrderStatusPending, found.Status)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusPaid))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCancelled), ErrNotFound)

	_, err = testPool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cart.ID)
	require.NoError(t, err)
	found, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.CartID)
}

func TestOrderRepo_GuestWithoutContactRejected(t *testing.T) {
	cleanupTable(t, allTables...)
	err := NewOrderRepository(testPool).Create(context.Background(), &model.Order{
		Status: model.OrderStatusPending, TotalPrice: decimal.Zero,
	})
	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "orders_identity_check", ie.Constraint)
}
