package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
)

var (
	ErrEmptyOrder        = errors.New("order has no items")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

var ordersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "services_orders_created_total",
	Help: "Orders created, by source.",
}, []string{"source"})

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type OrderLine struct {
	Ref      model.Ref
	Quantity int
}

// CreateOrderInput takes lines from the user's cart when FromCart is set,
// otherwise from Items. Guest checkout leaves UserID nil.
type CreateOrderInput struct {
	UserID   *uuid.UUID
	Guest    model.GuestContact
	FromCart bool
	Items    []OrderLine
}

// Requester is the identity asking to read an order.
type Requester struct {
	UserID  *uuid.UUID
	IsAdmin bool
}

type OrderService struct {
	orderRepo  repository.OrderRepository
	cartRepo   repository.CartRepository
	optionRepo repository.OptionRepository
	publisher  Publisher
	log        *slog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	optionRepo repository.OptionRepository,
	publisher Publisher,
	log *slog.Logger,
) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		optionRepo: optionRepo,
		publisher:  publisher,
		log:        log,
	}
}

// CreateOrder freezes the current price of every line and stores the
// order as pending.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if err := validateIdentity(in); err != nil {
		return nil, err
	}

	order := &model.Order{UserID: in.UserID, Status: model.OrderStatusPending}
	if in.UserID == nil {
		order.Guest = in.Guest
	}

	lines := in.Items
	source := "items"
	var snap *model.CartSnapshot
	if in.FromCart {
		cart, err := s.cartRepo.GetOrCreateCart(ctx, *in.UserID)
		if err != nil {
			return nil, fmt.Errorf("get cart: %w", err)
		}
		withItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
		if err != nil {
			return nil, fmt.Errorf("get cart items: %w", err)
		}
		if withItems == nil {
			withItems = cart
		}
		lines = nil
		for _, ci := range withItems.Items {
			lines = append(lines, OrderLine{Ref: ci.Ref, Quantity: ci.Quantity})
		}
		taken := withItems.Snapshot()
		snap = &taken
		order.CartID = &cart.ID
		source = "cart"
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	items, err := s.freeze(ctx, lines)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.TotalPrice = model.SumItems(items)

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	ordersCreated.WithLabelValues(source).Inc()

	s.afterCheckout(ctx, order, snap)
	return order, nil
}

func validateIdentity(in CreateOrderInput) error {
	if in.UserID == nil {
		if !in.Guest.Reachable() {
			return model.NewValidationError("guest", "required", "email or phone is required for guest orders")
		}
		if in.FromCart {
			return model.NewValidationError("from_cart", "auth", "guests cannot check out a stored cart")
		}
		if err := model.Validate(in.Guest); err != nil {
			return err
		}
	}
	for _, line := range in.Items {
		if err := validateLine(line.Ref, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) freeze(ctx context.Context, lines []OrderLine) ([]model.OrderItem, error) {
	refs := make([]model.Ref, 0, len(lines))
	for _, line := range lines {
		refs = append(refs, line.Ref)
	}
	options, err := s.optionRepo.GetMany(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("resolve order items: %w", err)
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		opt, ok := options[line.Ref]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOptionNotFound, line.Ref)
		}
		items = append(items, model.FreezeItem(opt, line.Quantity))
	}
	return items, nil
}

// afterCheckout hands cart cleanup to the order worker, or removes the
// ordered lines directly when no broker is configured. Only the lines in
// snap are removed.
func (s *OrderService) afterCheckout(ctx context.Context, order *model.Order, snap *model.CartSnapshot) {
	log := s.log.With("order_id", order.ID)
	if s.publisher != nil {
		msg, err := json.Marshal(model.OrderMessage{OrderID: order.ID, UserID: order.UserID, Cart: snap})
		if err == nil {
			err = s.publisher.PublishWithContext(ctx, "", model.OrderQueue, false, false, amqp.Publishing{
				ContentType:  "application/json",
				Body:         msg,
				DeliveryMode: amqp.Persistent,
			})
		}
		if err == nil {
			return
		}
		log.Error("publish order message", "error", err)
	}
	if snap != nil {
		if err := s.cartRepo.RemoveSnapshot(ctx, *snap); err != nil {
			log.Error("remove ordered cart lines", "cart_id", snap.CartID, "error", err)
		}
	}
}

func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID, who Requester) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != nil && !who.IsAdmin && (who.UserID == nil || *who.UserID != *order.UserID) {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

// LiveOptions resolves the options the items were ordered from, as they
// are now. Options deleted since are absent; frozen prices are unaffected.
func (s *OrderService) LiveOptions(ctx context.Context, items []model.OrderItem) (map[model.Ref]model.ServiceOption, error) {
	refs := make([]model.Ref, 0, len(items))
	for _, item := range items {
		refs = append(refs, item.Ref)
	}
	options, err := s.optionRepo.GetMany(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("resolve order items: %w", err)
	}
	return options, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByUserID(ctx, userID)
}

// UpdateStatus moves the order along pending -> paid -> completed, or to
// cancelled from pending or paid.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, to model.OrderStatus) (*model.Order, error) {
	if !to.Valid() {
		return nil, model.NewValidationError("status", "oneof", "must be one of pending paid cancelled completed")
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, to); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return nil, err
	}
	order.Status = to
	return order, nil
}
