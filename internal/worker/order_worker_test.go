package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixitek/services-api/internal/model"
)

type mockOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByUserID(_ context.Context, _ uuid.UUID) ([]model.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _, _ model.OrderStatus) error {
	return nil
}

type mockCartRepo struct {
	items   map[uuid.UUID]*model.CartItem
	removed []model.CartSnapshot
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	return &model.Cart{ID: uuid.New(), UserID: userID}, nil
}

func (m *mockCartRepo) GetCartWithItems(_ context.Context, _ uuid.UUID) (*model.Cart, error) {
	return nil, nil
}

func (m *mockCartRepo) UpsertItem(_ context.Context, _ *model.CartItem) error { return nil }
func (m *mockCartRepo) UpdateItem(_ context.Context, _ *model.CartItem) error { return nil }

func (m *mockCartRepo) DeleteItem(_ context.Context, _, _ uuid.UUID) error { return nil }

func (m *mockCartRepo) ClearCart(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockCartRepo) RemoveSnapshot(_ context.Context, snap model.CartSnapshot) error {
	m.removed = append(m.removed, snap)
	for _, id := range snap.ItemIDs {
		item, ok := m.items[id]
		if ok && item.CartID == snap.CartID && !item.UpdatedAt.After(snap.At) {
			delete(m.items, id)
		}
	}
	return nil
}

// fakeStore stands in for Redis; err fails every call.
type fakeStore struct {
	keys map[string]bool
	err  error
}

func (f *fakeStore) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func (f *fakeStore) Set(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.StatusCmd {
	if f.err == nil {
		f.keys[key] = true
	}
	return redis.NewStatusResult("OK", f.err)
}

type fakeDelivery struct {
	acked, nacked, requeued bool
}

func (d *fakeDelivery) Ack(bool) error { d.acked = true; return nil }

func (d *fakeDelivery) Nack(_, requeue bool) error {
	d.nacked = true
	d.requeued = requeue
	return nil
}

type workerFixture struct {
	w      *OrderWorker
	orders *mockOrderRepo
	carts  *mockCartRepo
	store  *fakeStore
}

func newTestWorker() *workerFixture {
	f := &workerFixture{
		orders: &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order)},
		carts:  &mockCartRepo{items: make(map[uuid.UUID]*model.CartItem)},
		store:  &fakeStore{keys: make(map[string]bool)},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.w = NewOrderWorker(nil, f.orders, f.carts, f.store, log)
	return f
}

// checkout stores an order for a cart holding n items and returns the
// message the API would publish for it.
func (f *workerFixture) checkout(t *testing.T, n int) (model.OrderMessage, []byte) {
	t.Helper()
	cart := &model.Cart{ID: uuid.New()}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		item := model.CartItem{ID: uuid.New(), CartID: cart.ID, UpdatedAt: at}
		cart.Items = append(cart.Items, item)
		f.carts.items[item.ID] = &item
	}
	order := &model.Order{ID: uuid.New(), CartID: &cart.ID}
	f.orders.orders[order.ID] = order

	snap := cart.Snapshot()
	msg := model.OrderMessage{OrderID: order.ID, Cart: &snap}
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return msg, body
}

func TestProcessOrder_RemovesOrderedLines(t *testing.T) {
	f := newTestWorker()
	msg, _ := f.checkout(t, 2)

	require.NoError(t, f.w.processOrder(context.Background(), msg))
	assert.Empty(t, f.carts.items)
}

func TestProcessOrder_KeepsLinesChangedAfterCheckout(t *testing.T) {
	f := newTestWorker()
	msg, _ := f.checkout(t, 2)

	changed := f.carts.items[msg.Cart.ItemIDs[1]]
	changed.Quantity = 7
	changed.UpdatedAt = msg.Cart.At.Add(time.Second)
	added := &model.CartItem{ID: uuid.New(), CartID: msg.Cart.CartID, UpdatedAt: msg.Cart.At.Add(2 * time.Second)}
	f.carts.items[added.ID] = added

	require.NoError(t, f.w.processOrder(context.Background(), msg))
	assert.Len(t, f.carts.items, 2)
	assert.Contains(t, f.carts.items, changed.ID)
	assert.Contains(t, f.carts.items, added.ID)
	assert.NotContains(t, f.carts.items, msg.Cart.ItemIDs[0])
}

func TestProcessOrder_DetachedCart(t *testing.T) {
	f := newTestWorker()
	order := &model.Order{ID: uuid.New()}
	f.orders.orders[order.ID] = order
	snap := model.CartSnapshot{CartID: uuid.New(), ItemIDs: []uuid.UUID{uuid.New()}}

	require.NoError(t, f.w.processOrder(context.Background(), model.OrderMessage{OrderID: order.ID, Cart: &snap}))
	assert.Empty(t, f.carts.removed)
}

func TestProcessOrder_NoCartInMessage(t *testing.T) {
	f := newTestWorker()
	msg, _ := f.checkout(t, 1)
	msg.Cart = nil

	require.NoError(t, f.w.processOrder(context.Background(), msg))
	assert.Empty(t, f.carts.removed)
	assert.Len(t, f.carts.items, 1)
}

func TestProcessOrder_MissingOrder(t *testing.T) {
	f := newTestWorker()

	assert.Error(t, f.w.processOrder(context.Background(), model.OrderMessage{OrderID: uuid.New()}))
}

func TestProcessMessage_AcksAndMarksProcessed(t *testing.T) {
	f := newTestWorker()
	msg, body := f.checkout(t, 1)
	d := &fakeDelivery{}

	f.w.processMessage(context.Background(), body, d)
	assert.True(t, d.acked)
	assert.False(t, d.nacked)
	assert.True(t, f.store.keys["order_processed:"+msg.OrderID.String()])
	assert.Len(t, f.carts.removed, 1)
}

func TestProcessMessage_SkipsAlreadyProcessed(t *testing.T) {
	f := newTestWorker()
	msg, body := f.checkout(t, 1)
	f.store.keys["order_processed:"+msg.OrderID.String()] = true
	d := &fakeDelivery{}

	f.w.processMessage(context.Background(), body, d)
	assert.True(t, d.acked)
	assert.False(t, d.nacked)
	assert.Empty(t, f.carts.removed)
	assert.Len(t, f.carts.items, 1)
}

func TestProcessMessage_StoreErrorRequeues(t *testing.T) {
	f := newTestWorker()
	_, body := f.checkout(t, 1)
	f.store.err = errors.New("connection refused")
	d := &fakeDelivery{}

	f.w.processMessage(context.Background(), body, d)
	assert.True(t, d.nacked)
	assert.True(t, d.requeued)
	assert.False(t, d.acked)
	assert.Empty(t, f.carts.removed)
}

func TestProcessMessage_MissingOrderIsDeadLettered(t *testing.T) {
	f := newTestWorker()
	body, err := json.Marshal(model.OrderMessage{OrderID: uuid.New()})
	require.NoError(t, err)
	d := &fakeDelivery{}

	f.w.processMessage(context.Background(), body, d)
	assert.True(t, d.nacked)
	assert.False(t, d.requeued)
}

func TestProcessMessage_MalformedBodyIsDeadLettered(t *testing.T) {
	f := newTestWorker()
	d := &fakeDelivery{}

	f.w.processMessage(context.Background(), []byte("{not json"), d)
	assert.True(t, d.nacked)
	assert.False(t, d.requeued)
	assert.False(t, d.acked)
}
