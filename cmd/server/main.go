package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkim-dev/storefront-backend/config"
	"github.com/mkim-dev/storefront-backend/internal/app/controller"
	"github.com/mkim-dev/storefront-backend/internal/app/repository"
	"github.com/mkim-dev/storefront-backend/internal/app/service"
	"github.com/mkim-dev/storefront-backend/internal/router"
	"github.com/mkim-dev/storefront-backend/internal/scheduler"
	"github.com/mkim-dev/storefront-backend/internal/stockgate"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
	"github.com/mkim-dev/storefront-backend/pkg/redis"
)

const categoryCacheTTL = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting Storefront API Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"stock_gate":  cfg.StockGate.Enabled,
	})

	// Initialize Redis
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize catalog client
	catalogClient, err := catalog.NewClient(catalog.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog client", err)
	}

	// Initialize repositories
	cartSnapshots := repository.NewCartSnapshotRepository(redis.GetClient())
	categoryCache := repository.NewCategoryCache(redis.GetClient(), categoryCacheTTL)

	// Initialize stock gate
	var checker stockgate.Checker
	if cfg.StockGate.Enabled {
		wsChecker := stockgate.NewWSChecker(cfg.StockGate.URL)
		go wsChecker.Run()
		defer wsChecker.Close()
		checker = wsChecker
	}
	gate := stockgate.NewGate(stockgate.Config{
		Enabled:    cfg.StockGate.Enabled,
		FailClosed: cfg.StockGate.FailClosed,
		Timeout:    cfg.StockGate.Timeout,
	}, checker)

	// Initialize services
	productService := service.NewProductService(catalogClient, categoryCache)
	cartService := service.NewCartService(cartSnapshots, catalogClient, gate)

	// Warm the category cache so the first listing does not pay the miss
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 10*time.Second)
	if err := productService.RefreshCategoryCache(warmCtx); err != nil {
		logger.Warn("Failed to warm category cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	cancelWarm()

	// Start scheduler
	categoryScheduler := scheduler.NewCategoryScheduler(productService)
	if err := categoryScheduler.Start(); err != nil {
		logger.Fatal("Failed to start category scheduler", err)
	}
	defer categoryScheduler.Stop()

	// Initialize controllers
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)

	// Setup router
	r := router.NewRouter(productController, cartController, cfg)
	engine := r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
