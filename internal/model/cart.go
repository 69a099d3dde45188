package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is unique per (cart, kind, option id).
type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	Ref       Ref
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPrice is the option's own total times the item quantity. A nil
// option (dangling reference) prices at zero.
func (i CartItem) TotalPrice(opt ServiceOption) decimal.Decimal {
	if opt == nil {
		return decimal.Zero
	}
	return timesQuantity(opt.TotalPrice(), i.Quantity)
}

func (c *Cart) Refs() []Ref {
	refs := make([]Ref, 0, len(c.Items))
	for _, item := range c.Items {
		refs = append(refs, item.Ref)
	}
	return refs
}

// TotalPrice sums the items against the resolved options. Items missing
// from options contribute nothing.
func (c *Cart) TotalPrice(options map[Ref]ServiceOption) decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice(options[item.Ref]))
	}
	return total
}

// CartSnapshot identifies the cart lines an order was built from. Lines
// changed after At are not part of it.
type CartSnapshot struct {
	CartID  uuid.UUID   `json:"cart_id"`
	ItemIDs []uuid.UUID `json:"item_ids"`
	At      time.Time   `json:"at"`
}

// Snapshot captures the current lines of c.
func (c *Cart) Snapshot() CartSnapshot {
	snap := CartSnapshot{CartID: c.ID, ItemIDs: make([]uuid.UUID, 0, len(c.Items))}
	for _, item := range c.Items {
		snap.ItemIDs = append(snap.ItemIDs, item.ID)
		if item.UpdatedAt.After(snap.At) {
			snap.At = item.UpdatedAt
		}
	}
	return snap
}

func (c *Cart) FindItem(id uuid.UUID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}
