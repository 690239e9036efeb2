// Package main provides the API server entry point for the channel scanner service.
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

	"github.com/channel-scanner/internal/api"
	"github.com/channel-scanner/internal/config"
	"github.com/channel-scanner/internal/logging"
	"github.com/channel-scanner/internal/scraper"
	"github.com/channel-scanner/internal/service"
	"github.com/channel-scanner/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Connect to Postgres
	logger.Info("Connecting to Postgres...")
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// Connect to Redis when the read cache is enabled
	var cacheService *storage.CacheService
	if cfg.Cache.Enabled {
		redis, err := storage.NewRedisCache(&cfg.Database.Redis)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redis.Close() // nolint:errcheck

		cacheService = storage.NewCacheService(redis, cfg.Cache.TTL)
		logger.WithField("ttl", cfg.Cache.TTL.String()).Info("Read cache enabled")
	}

	logger.Info("Database connections established")

	// Initialize repositories
	jobRepo := storage.NewJobRepository(postgres)
	channelRepo := storage.NewChannelRepository(postgres)

	// The stub source stands in for the TGStat scraper integration
	source := scraper.NewStubSource()

	// Initialize services. CacheService is passed through an interface, so a
	// typed nil must not leak in when caching is disabled.
	var scanCache service.ReadCache
	var viewCache service.ViewCache
	if cacheService != nil {
		scanCache = cacheService
		viewCache = cacheService
	}

	scanService := service.NewScanService(jobRepo, channelRepo, source, scanCache)
	queryService := service.NewQueryService(channelRepo, jobRepo, viewCache)

	logger.Info("Services initialized")

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, scanService, queryService)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
