package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkim-dev/storefront-backend/config"
	"github.com/mkim-dev/storefront-backend/internal/stockd"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
)

// stockd answers stock availability checks over a websocket. The storefront
// server asks it before committing an add-to-cart.
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

	logger.Info("Starting stock authority", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Stockd.Port,
	})

	// Initialize catalog client
	catalogClient, err := catalog.NewClient(catalog.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog client", err)
	}

	server := stockd.NewServer(catalogClient)

	gin.SetMode(cfg.Server.GinMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Stock authority is running",
		})
	})
	engine.GET("/ws", server.HandleWS)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Stockd.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Stock authority started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start stock authority", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down stock authority gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Stock authority forced to shutdown", err)
	}

	logger.Info("Stock authority stopped")
}
