package main

import (
	"context" // context package is needed for Redis operations

	"finance_tracker/internal/api"        // Custom package for API handlers
	"finance_tracker/internal/cache"      // Settlement cache
	"finance_tracker/internal/config"     // Custom package for configuration
	"finance_tracker/internal/db"         // Database connection
	"finance_tracker/internal/events"     // Group transaction events
	"finance_tracker/internal/ledger"     // Wallet ledger policy
	"finance_tracker/internal/repository" // Persistence
	"finance_tracker/internal/service"    // Ledger use cases

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// setupLogger picks the log format for the environment
func setupLogger(isProd bool) {
	if isProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// connectRedis returns nil when Redis is not configured
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR not set, settlement cache and events disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	return rdb
}

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg.IsProd)

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	deps := service.Deps{
		Store:      repository.New(gdb),
		Ledger:     ledger.NewWalletLedger(cfg.AllowNegativeBalance),
		RetryLimit: cfg.BalanceRetryLimit,
	}
	if rdb := connectRedis(cfg); rdb != nil {
		deps.Cache = cache.NewSettlementCache(rdb, cfg.SettlementCacheTTL)
		deps.Publisher = events.NewRedisPublisher(rdb)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Handlers{
		Store:        deps.Store,
		Transactions: service.NewTransactionService(deps),
		Groups:       service.NewGroupService(deps),
		Sharings:     service.NewSharingService(deps),
		JWTSecret:    cfg.JWTSecret,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":           cfg.AppPort,
		"driver":         cfg.DBDriver,
		"allow_negative": cfg.AllowNegativeBalance,
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
