package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
)

const (
	dlxExchange    = "orders.dlx"
	dlqQueueName   = "orders.dlq"
	idempotencyTTL = 24 * time.Hour
)

// ProcessedStore remembers which orders were handled; *redis.Client
// satisfies it.
type ProcessedStore interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// OrderWorker finishes checkout asynchronously: it removes the ordered
// lines from the cart an order was created from, at most once per order.
type OrderWorker struct {
	channel   *amqp.Channel
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	processed ProcessedStore
	log       *slog.Logger
	done      chan struct{}
}

func NewOrderWorker(
	ch *amqp.Channel,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	processed ProcessedStore,
	log *slog.Logger,
) *OrderWorker {
	return &OrderWorker{
		channel:   ch,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		processed: processed,
		log:       log,
		done:      make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, model.OrderQueue, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(model.OrderQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": model.OrderQueue,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *OrderWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(model.OrderQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.handle(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("order worker started")
	return nil
}

func (w *OrderWorker) Stop() { close(w.done) }

// acker is the part of amqp.Delivery the worker settles messages with.
type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *OrderWorker) handle(ctx context.Context, msg amqp.Delivery) {
	w.processMessage(ctx, msg.Body, msg)
}

func (w *OrderWorker) processMessage(ctx context.Context, body []byte, msg acker) {
	var orderMsg model.OrderMessage
	if err := json.Unmarshal(body, &orderMsg); err != nil {
		w.log.Error("unmarshal order message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", orderMsg.OrderID)

	idempotencyKey := "order_processed:" + orderMsg.OrderID.String()
	exists, err := w.processed.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("order already processed, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.processOrder(ctx, orderMsg); err != nil {
		log.Error("process order failed", "error", err)
		_ = msg.Nack(false, false) // dead-lettered
		return
	}

	if err := w.processed.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order processed successfully")
}

func (w *OrderWorker) processOrder(ctx context.Context, msg model.OrderMessage) error {
	order, err := w.orderRepo.GetByID(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}
	// The cart may have been deleted since checkout; the order keeps a nil CartID then.
	if order.CartID == nil || msg.Cart == nil {
		return nil
	}
	snap := *msg.Cart
	snap.CartID = *order.CartID
	if err := w.cartRepo.RemoveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("remove ordered cart lines: %w", err)
	}
	return nil
}
