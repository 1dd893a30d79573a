// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/farmcrate-storefront/internal/commerce"
	"github.com/your-org/farmcrate-storefront/internal/config"
	redisdb "github.com/your-org/farmcrate-storefront/internal/infrastructure/database/redis"
	httpserver "github.com/your-org/farmcrate-storefront/internal/interfaces/http"
	"github.com/your-org/farmcrate-storefront/internal/interfaces/http/routes"
	"github.com/your-org/farmcrate-storefront/internal/pkg/auth"
	"github.com/your-org/farmcrate-storefront/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg)
	appLog.Infof("Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Storage: Redis when configured, in-memory otherwise
	var cartRepo commerce.CartRepository = commerce.NewMemoryCartRepository()
	var otpRepo commerce.OTPRepository = commerce.NewMemoryOTPRepository()

	var redisClient *redisdb.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisdb.NewConnection(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		if err := redisClient.Health(); err != nil {
			log.Fatalf("Redis health check failed: %v", err)
		}

		cartRepo = commerce.NewRedisCartRepository(redisClient.GetClient(), cfg.Delivery.CartTTL)
		otpRepo = commerce.NewRedisOTPRepository(redisClient.GetClient())
		appLog.Info("Redis connection established")
	}

	// Wire domain services
	catalogService := commerce.NewCatalogService(commerce.SeedProducts())
	stockLedger := commerce.NewStockLedger(cfg.Delivery)
	cartService := commerce.NewCartService(cartRepo, catalogService, stockLedger, appLog)
	accountService := commerce.NewAccountService(otpRepo, auth.NewJWTManager(cfg), appLog)

	deps := routes.Dependencies{
		Cart:     cartService,
		Catalog:  catalogService,
		Stock:    stockLedger,
		Accounts: accountService,
	}

	server := httpserver.NewServer(cfg, deps, rawRedis(redisClient), appLog)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLog.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
}

// rawRedis unwraps the connection wrapper, tolerating the unconfigured case
func rawRedis(client *redisdb.Client) *redis.Client {
	if client == nil {
		return nil
	}
	return client.GetClient()
}
