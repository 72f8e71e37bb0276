package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/menux-backend/config"
	"github.com/yeremiapane/menux-backend/database"
	"github.com/yeremiapane/menux-backend/kds"
	"github.com/yeremiapane/menux-backend/locks"
	"github.com/yeremiapane/menux-backend/middlewares"
	"github.com/yeremiapane/menux-backend/repository"
	"github.com/yeremiapane/menux-backend/router"
	"github.com/yeremiapane/menux-backend/services"
	"github.com/yeremiapane/menux-backend/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLoggerWithLevel(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	locker, closeLocker := newLocker(cfg)
	defer closeLocker()

	hub := newEventHub(cfg)
	defer hub.Close()

	orders := services.NewOrderService(db, locker, hub)
	payments := services.NewPaymentService(orders, services.NewPaymentMonitor())

	autoCancel := services.NewAutoCancelMonitor(repository.NewOrderRepository(db), orders, cfg.AutoCancelInterval, cfg.AutoCancelAfter)
	autoCancel.Start()
	defer autoCancel.Stop()

	r := router.SetupRouter(router.Deps{
		DB:             db,
		Orders:         orders,
		Payments:       payments,
		Tokens:         utils.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Users:          repository.NewRestaurantRepository(db),
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimiter:    middlewares.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitPerSecond),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Errorf("HTTP server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Graceful shutdown failed: %v", err)
		os.Exit(1)
	}
}

// newLocker picks the Redis locker when REDIS_URL is set so that several
// instances serialize on the same order.
func newLocker(cfg *config.Config) (locks.Locker, func()) {
	if cfg.RedisURL == "" {
		return locks.NewLocalLocker(), func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	utils.InfoLogger.Info("Using Redis order locks")

	return locks.NewRedisLocker(client), func() {
		if err := client.Close(); err != nil {
			utils.ErrorLogger.Errorf("Closing Redis client: %v", err)
		}
	}
}

// newEventHub always logs events and adds the brokers that are configured.
// A broker that cannot be reached at startup is skipped, not fatal.
func newEventHub(cfg *config.Config) *kds.Hub {
	hub := kds.NewHub(kds.LogSink{})

	if len(cfg.KafkaBrokers) > 0 {
		hub.AddSink(kds.NewKafkaSink(kds.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)))
		utils.InfoLogger.Infof("Publishing order events to Kafka topic %s", cfg.KafkaTopic)
	}

	if cfg.RabbitMQURL != "" {
		sink, err := kds.DialRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			utils.ErrorLogger.Errorf("RabbitMQ unavailable, order events will not be published there: %v", err)
		} else {
			hub.AddSink(sink)
			utils.InfoLogger.Infof("Publishing order events to RabbitMQ exchange %s", cfg.RabbitMQExchange)
		}
	}
	return hub
}
