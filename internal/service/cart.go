package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartView is a cart with its references resolved. Options lacks entries
// for references that no longer resolve.
type CartView struct {
	Cart    *model.Cart
	Options map[model.Ref]model.ServiceOption
	Total   decimal.Decimal
}

type CartService struct {
	cartRepo   repository.CartRepository
	optionRepo repository.OptionRepository
}

func NewCartService(cartRepo repository.CartRepository, optionRepo repository.OptionRepository) *CartService {
	return &CartService{cartRepo: cartRepo, optionRepo: optionRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	options, err := s.optionRepo.GetMany(ctx, cart.Refs())
	if err != nil {
		return nil, fmt.Errorf("resolve cart items: %w", err)
	}
	return &CartView{Cart: cart, Options: options, Total: cart.TotalPrice(options)}, nil
}

func (s *CartService) Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	view, err := s.GetCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return view.Total, nil
}

// AddItem stores quantity for ref in the user's cart. Adding a ref that
// is already in the cart replaces its quantity.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, ref model.Ref, quantity int) (*model.CartItem, error) {
	if err := validateLine(ref, quantity); err != nil {
		return nil, err
	}
	opt, err := s.optionRepo.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get option: %w", err)
	}
	if opt == nil {
		return nil, ErrOptionNotFound
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	item := &model.CartItem{CartID: cart.ID, Ref: ref, Quantity: quantity}
	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, ok := cart.FindItem(itemID)
	if !ok {
		return nil, ErrCartItemNotFound
	}

	item.Quantity = quantity
	if err := s.cartRepo.UpdateItem(ctx, &item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// RemoveItem succeeds whether or not the item is still in the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	return s.cartRepo.DeleteItem(ctx, cart.ID, itemID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	return s.cartRepo.ClearCart(ctx, cart.ID)
}

func (s *CartService) loadCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	withItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if withItems == nil {
		return cart, nil
	}
	return withItems, nil
}

func validateLine(ref model.Ref, quantity int) error {
	if !ref.Kind.Valid() {
		return model.NewValidationError("kind", "oneof", "must be a known service option kind")
	}
	if ref.ID <= 0 {
		return model.NewValidationError("id", "gt", "must be greater than 0")
	}
	return validateQuantity(quantity)
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return model.NewValidationError("quantity", "gte", "must be at least 1")
	}
	if quantity > model.MaxQuantity {
		return model.NewValidationError("quantity", "max", fmt.Sprintf("must be at most %d", model.MaxQuantity))
	}
	return nil
}
