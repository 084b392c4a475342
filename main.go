// Package main provides the entry point for the SellerPulse reconciliation
// API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sellerpulse/recon-api/app/handlers"
	"github.com/sellerpulse/recon-api/app/middleware"
	"github.com/sellerpulse/recon-api/app/router"
	"github.com/sellerpulse/recon-api/app/services"
	businessflow "github.com/sellerpulse/recon-api/business_flow"
	"github.com/sellerpulse/recon-api/config"
	"github.com/sellerpulse/recon-api/logger"
	"github.com/sellerpulse/recon-api/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application bundles the long-lived pieces so shutdown can reach them.
type Application struct {
	router        router.Router
	config        *config.ProductionConfig
	metricsServer *http.Server
	stopFuncs     []func()
}

func main() {
	log := logger.GetLogger().WithComponent("main")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	setupLogging(cfg.Logging)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	if app.metricsServer != nil {
		go func() {
			if err := app.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	<-sigChan
	log.Info("Shutting down gracefully")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Error during metrics server shutdown")
		}
	}
	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}

	log.Info("Server stopped")
}

func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "file" && cfg.FilePath != "" {
		logger.GetLogger().EnableRotatingFile(cfg.FilePath, cfg.MaxSize, cfg.MaxBackups, cfg.MaxAge, cfg.Compress)
	}
}

// initializeDatabase opens the Postgres connection with pooling configured.
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initializeCache opens the Redis connection when the cache is enabled with
// the redis provider; otherwise it returns nil and the in-memory fallback is
// used.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rc, nil
}

func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	rateCardRepo := repository.NewRateCardRepository(db)

	rateCardFlow := businessflow.NewRateCardFlow(rateCardRepo)
	payoutFlow := businessflow.NewPayoutFlow(rateCardRepo, businessflow.PayoutConfig{
		IncludeTCS: cfg.Payout.IncludeTCS,
	})
	importFlow := businessflow.NewRateCardImportFlow(rateCardRepo)

	rateCardHandler := handlers.NewRateCardHandler(rateCardFlow)
	payoutHandler := handlers.NewPayoutHandler(payoutFlow)
	importHandler := handlers.NewImportHandler(importFlow)

	var authMW *middleware.AuthMiddleware
	if cfg.Security.RequireAuth {
		var tokenCache services.TokenCache
		if rc != nil {
			tokenCache = services.NewRedisTokenCache(rc, cfg.Cache.RedisPrefix+"revoked:")
		} else {
			tokenCache = services.NewMemoryTokenCache()
		}
		tokenService, err := services.NewTokenService(
			cfg.JWT.TokenTTL,
			cfg.JWT.Issuer,
			cfg.JWT.Audience,
			cfg.JWT.SecretKey,
			tokenCache,
		)
		if err != nil {
			return nil, err
		}
		authMW = middleware.NewAuthMiddleware(tokenService)
	}

	r := router.NewFiberRouter(router.Config{
		AllowOrigins: cfg.Security.AllowedOrigins,
		BodyLimit:    cfg.Server.BodyLimit,
		RequireAuth:  cfg.Security.RequireAuth,
	}, rateCardHandler, payoutHandler, importHandler, authMW)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
	}

	return &Application{
		router:        r,
		config:        cfg,
		metricsServer: metricsServer,
		stopFuncs:     stopFuncs,
	}, nil
}
