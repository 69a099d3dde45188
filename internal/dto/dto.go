package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fixitek/services-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

// --- Catalog ---

type TaxonRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
}

type CategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	FeatureImage string `json:"feature_image"`
}

// OptionResponse carries the variant's own fields under "option" next to
// the computed prices.
type OptionResponse struct {
	Kind       model.Kind          `json:"kind"`
	ID         int64               `json:"id"`
	Title      string              `json:"title"`
	UnitPrice  decimal.Decimal     `json:"unit_price"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Option     model.ServiceOption `json:"option"`
}

func NewOptionResponse(opt model.ServiceOption) OptionResponse {
	return OptionResponse{
		Kind:       opt.Kind(),
		ID:         opt.Base().ID,
		Title:      opt.DisplayTitle(),
		UnitPrice:  opt.UnitPrice(),
		TotalPrice: opt.TotalPrice(),
		Option:     opt,
	}
}

type OptionListResponse struct {
	Options []OptionResponse `json:"options"`
	Total   int              `json:"total"`
}

// --- Cart ---

// AddCartItemRequest takes the kind case-insensitively, e.g. "TV_MOUNTING".
type AddCartItemRequest struct {
	Kind     string `json:"kind" validate:"required"`
	OptionID int64  `json:"option_id" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gte=1,max=10000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,max=10000"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// CartItemResponse marks lines whose option no longer exists as
// unavailable; they price at zero and carry no option.
type CartItemResponse struct {
	ID         uuid.UUID           `json:"id"`
	Kind       model.Kind          `json:"kind"`
	OptionID   int64               `json:"option_id"`
	Title      string              `json:"title"`
	Quantity   int                 `json:"quantity"`
	UnitPrice  decimal.Decimal     `json:"unit_price"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Available  bool                `json:"available"`
	Option     model.ServiceOption `json:"option,omitempty"`
}

type CartTotalResponse struct {
	TotalPrice decimal.Decimal `json:"total_price"`
}

// --- Order ---

type OrderLineRequest struct {
	Kind     string `json:"kind" validate:"required"`
	OptionID int64  `json:"option_id" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gte=1,max=10000"`
}

// CreateOrderRequest checks out the caller's cart when FromCart is set,
// otherwise Items. Guest is read only for unauthenticated callers.
type CreateOrderRequest struct {
	FromCart bool               `json:"from_cart"`
	Items    []OrderLineRequest `json:"items" validate:"dive"`
	Guest    model.GuestContact `json:"guest" validate:"-"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required"`
}

type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	UserID     *uuid.UUID          `json:"user_id,omitempty"`
	Guest      *model.GuestContact `json:"guest,omitempty"`
	CartID     *uuid.UUID          `json:"cart_id,omitempty"`
	Status     model.OrderStatus   `json:"status"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderItemResponse prices come from the order; Option is the option as it
// is now and is omitted once deleted.
type OrderItemResponse struct {
	ID        uuid.UUID           `json:"id"`
	Kind      model.Kind          `json:"kind"`
	OptionID  int64               `json:"option_id"`
	Title     string              `json:"title"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	Price     decimal.Decimal     `json:"price"`
	Option    model.ServiceOption `json:"option,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}
