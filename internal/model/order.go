package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusCompleted OrderStatus = "completed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusCompleted, OrderStatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusCompleted:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusCompleted
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GuestContact identifies the customer of an order placed without an account.
type GuestContact struct {
	Name  string `json:"name" validate:"max=255"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

func (g GuestContact) Reachable() bool {
	return strings.TrimSpace(g.Email) != "" || strings.TrimSpace(g.Phone) != ""
}

// Order is written once at checkout; afterwards only Status changes.
type Order struct {
	ID         uuid.UUID
	UserID     *uuid.UUID
	Guest      GuestContact
	CartID     *uuid.UUID
	Status     OrderStatus
	TotalPrice decimal.Decimal
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem copies a line at checkout. UnitPrice is the option's total
// price at that moment and Price is UnitPrice times Quantity.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Ref       Ref
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
}

// FreezeItem captures opt's current price for quantity units.
func FreezeItem(opt ServiceOption, quantity int) OrderItem {
	unit := opt.TotalPrice()
	return OrderItem{
		Ref:       RefOf(opt),
		Title:     opt.DisplayTitle(),
		Quantity:  quantity,
		UnitPrice: unit,
		Price:     timesQuantity(unit, quantity),
	}
}

func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}

func (o *Order) IsGuest() bool { return o.UserID == nil }

// OrderQueue carries an OrderMessage for every order created.
const OrderQueue = "orders"

// OrderMessage announces a created order. Cart is set when the order was
// checked out from a cart and names the lines to remove from it.
type OrderMessage struct {
	OrderID uuid.UUID     `json:"order_id"`
	UserID  *uuid.UUID    `json:"user_id,omitempty"`
	Cart    *CartSnapshot `json:"cart,omitempty"`
}
