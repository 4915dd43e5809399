package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/database"
	"github.com/787516/Matrimonial/internal/handlers"
	"github.com/787516/Matrimonial/internal/middleware"
	"github.com/787516/Matrimonial/internal/notify"
	"github.com/787516/Matrimonial/internal/repositories"
	"github.com/787516/Matrimonial/internal/resilience"
	"github.com/787516/Matrimonial/internal/services"
	"github.com/787516/Matrimonial/pkg/logger"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	logger.Init()
	defer logger.Sync()

	logger.Info("Starting matrimonial API...")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := database.SeedPlans(db); err != nil {
		logger.Warn("Failed to seed subscription plans", "error", err)
	}

	policy := resilience.DefaultPolicy()
	policy.MaxRetries = cfg.StorageRetryMax
	policy.BaseDelay = cfg.GetStorageRetryBaseDelay()

	relationships := repositories.NewRelationshipRepository(db)
	profiles := repositories.NewProfileRepository(db)
	users := repositories.NewUserRepository(db)
	subscriptions := repositories.NewSubscriptionRepository(db)
	activities := repositories.NewActivityRepository(db)
	for _, repo := range []interface{ SetRetryPolicy(resilience.RetryPolicy) }{
		relationships, profiles, users, subscriptions, activities,
	} {
		repo.SetRetryPolicy(policy)
	}

	sinks := []notify.Sink{notify.NewStoreSink(activities)}
	if client := newRedisClient(cfg); client != nil {
		defer client.Close()
		sinks = append(sinks, notify.NewRedisSink(client))
	}
	if cfg.TelegramBotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Warn("Telegram delivery disabled", "error", err)
		} else {
			logger.Info("Telegram delivery enabled", "bot", bot.Self.UserName)
			sinks = append(sinks, notify.NewTelegramSink(bot, users))
		}
	}

	dispatcher := notify.NewDispatcher(cfg.NotifierWorkers, cfg.NotifierQueueSize, sinks...)
	dispatcher.Start()

	paging := services.Paging{DefaultLimit: cfg.FeedDefaultLimit, MaxLimit: cfg.FeedMaxLimit}
	scorer := services.NewScorer()
	exclusions := services.NewExclusionBuilder(relationships)
	ledger := services.NewLedger(relationships, users, dispatcher)
	guard := services.NewChatGuard(cfg.ChatGatingPolicy, ledger, subscriptions)
	feed := services.NewFeedService(profiles, exclusions, services.NewCandidateFilter(profiles, relationships), scorer, paging)

	matchSvc := services.NewMatchService(services.MatchServiceDeps{
		Ledger:     ledger,
		Feed:       feed,
		Guard:      guard,
		Exclusions: exclusions,
		Scorer:     scorer,
		Profiles:   profiles,
		Requests:   relationships,
		Users:      users,
		Notifier:   dispatcher,
		Paging:     paging,
	})
	notificationSvc := services.NewNotificationService(activities, paging)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.RateLimitPerIP, time.Minute)
	h := handlers.NewHandlerManager(cfg, matchSvc, notificationSvc, users, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           h.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "env", cfg.AppEnv, "chat_policy", guard.Policy())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	dispatcher.Stop()
	rateLimiter.Stop()
	logger.Info("Server stopped")
}

// newRedisClient returns nil when Redis is not configured or unreachable;
// notifications then stay in the database only.
func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, realtime fan-out disabled", "error", err)
		return nil
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, realtime fan-out disabled", "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("Redis connected")
	return client
}
