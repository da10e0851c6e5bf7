package main

import (
	"fmt"
	"os"

	"github.com/grocerlist/usdaimport/config"
	httpDelivery "github.com/grocerlist/usdaimport/internal/delivery/http"
	"github.com/grocerlist/usdaimport/internal/infrastructure/cache"
	"github.com/grocerlist/usdaimport/internal/infrastructure/storage"
	"github.com/grocerlist/usdaimport/internal/logging"
	"github.com/grocerlist/usdaimport/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting GrocerList catalogue server",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("snapshot", cfg.Paths.Output),
		zap.Duration("cache_ttl", cfg.Search.CacheTTL))

	// Initialize infrastructure dependencies
	store := storage.NewFileStore(cfg.Paths.Output)
	memoryCache := cache.NewMemoryCache(cache.DefaultSize, cfg.Search.CacheTTL)

	// Initialize usecase layer
	searchService := usecase.NewSearchService(store, memoryCache, logger)

	handler := httpDelivery.NewHandler(searchService, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
