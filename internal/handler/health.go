package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const readyTimeout = 2 * time.Second

var errBrokerClosed = errors.New("connection closed")

// Check probes one dependency; a nil Fn marks the dependency as disabled.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgres", Fn: pool.Ping}
}

// RedisCheck covers the option cache and the worker's idempotency keys.
func RedisCheck(client *redis.Client) Check {
	return Check{Name: "redis", Fn: func(ctx context.Context) error { return client.Ping(ctx).Err() }}
}

// BrokerCheck reports "disabled" when the API runs without RabbitMQ, in
// which case checkout clears carts inline.
func BrokerCheck(conn *amqp.Connection) Check {
	if conn == nil {
		return Check{Name: "rabbitmq"}
	}
	return Check{Name: "rabbitmq", Fn: func(context.Context) error {
		if conn.IsClosed() {
			return errBrokerClosed
		}
		return nil
	}}
}

type HealthHandler struct {
	checks  []Check
	timeout time.Duration
}

func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: readyTimeout}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz runs every check concurrently under one deadline and reports each
// dependency, so a failing broker does not hide a failing database.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		healthy = true
		deps    = make(map[string]string, len(h.checks))
	)
	for _, check := range h.checks {
		if check.Fn == nil {
			deps[check.Name] = "disabled"
			continue
		}
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()
			status := "connected"
			if err := check.Fn(ctx); err != nil {
				status = "unavailable"
			}
			mu.Lock()
			defer mu.Unlock()
			deps[check.Name] = status
			if status != "connected" {
				healthy = false
			}
		}(check)
	}
	wg.Wait()

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "dependencies": deps})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": deps})
}
