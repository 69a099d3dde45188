package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/fixitek/services-api/internal/config"
	"github.com/fixitek/services-api/internal/handler"
	"github.com/fixitek/services-api/internal/middleware"
	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
	"github.com/fixitek/services-api/internal/service"
	"github.com/fixitek/services-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	if cfg.Server.Migrate {
		if err := repository.Migrate(ctx, dbPool); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
		log.Info("database schema applied")
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	var (
		amqpConn  *amqp.Connection
		amqpCh    *amqp.Channel
		publisher service.Publisher
	)
	if cfg.RabbitMQ.Enabled {
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		amqpCh, err = amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer amqpCh.Close()

		if err := worker.SetupRabbitMQ(amqpCh); err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}
		publisher = amqpCh
		log.Info("connected to RabbitMQ")
	} else {
		log.Warn("RabbitMQ disabled, carts are cleared inline at checkout")
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	taxonomyRepo := repository.NewTaxonomyRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	optionRepo := repository.NewOptionRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	optionSvc := service.NewOptionService(optionRepo, categoryRepo, redisClient, cfg.Redis.CacheTTL)
	taxonomySvc := service.NewTaxonomyService(taxonomyRepo, optionSvc)
	categorySvc := service.NewCategoryService(categoryRepo, optionSvc)
	cartSvc := service.NewCartService(cartRepo, optionRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, optionRepo, publisher, log)

	// Handlers
	handlers := &handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Taxonomies: make(map[model.Taxonomy]*handler.TaxonomyHandler),
		Categories: handler.NewCategoryHandler(categorySvc, optionSvc),
		Options:    make(map[model.Kind]*handler.OptionHandler),
		Cart:       handler.NewCartHandler(cartSvc),
		Orders:     handler.NewOrderHandler(orderSvc),
	}
	for _, t := range model.Taxonomies() {
		handlers.Taxonomies[t] = handler.NewTaxonomyHandler(taxonomySvc, t)
	}
	for _, kind := range model.Kinds() {
		handlers.Options[kind] = handler.NewOptionHandler(optionSvc, kind)
	}
	healthH := handler.NewHealthHandler(
		handler.PostgresCheck(dbPool),
		handler.RedisCheck(redisClient),
		handler.BrokerCheck(amqpConn),
	)

	// Worker
	var orderWorker *worker.OrderWorker
	if amqpCh != nil {
		orderWorker = worker.NewOrderWorker(amqpCh, orderRepo, cartRepo, redisClient, log)
		if err := orderWorker.Start(ctx); err != nil {
			log.Error("start order worker", "error", err)
			os.Exit(1)
		}
	}

	// Router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	router.Use(middleware.Metrics())

	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.Register(router.Group("/api/v1"), cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if orderWorker != nil {
		orderWorker.Stop()
		time.Sleep(500 * time.Millisecond)
	}
	cancel()
	log.Info("server stopped")
}
