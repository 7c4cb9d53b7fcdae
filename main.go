package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/bit2424/LunchLog/configs"
	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
	"github.com/bit2424/LunchLog/routes"
	"github.com/bit2424/LunchLog/services"
	"github.com/bit2424/LunchLog/services/googleplaces"
	"github.com/bit2424/LunchLog/workers"
)

func main() {
	cfg := configs.LoadConfig()

	baseLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer baseLog.Sync()

	// DB
	if err := configs.ConnectionDB(cfg); err != nil {
		baseLog.Fatal("connect database", "error", err)
	}
	db := configs.DB()

	// migrate + seed
	if err := configs.SetupDatabase(); err != nil {
		baseLog.Fatal("migrate", "error", err)
	}
	if err := configs.SeedDefaultUser(); err != nil {
		baseLog.Fatal("seed default user", "error", err)
	}

	// Repositories
	restaurantRepo := repository.NewRestaurantRepository(db)
	cuisineRepo := repository.NewCuisineRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// External gateway
	gateway, err := googleplaces.New(cfg.GooglePlacesAPIKey)
	if err != nil {
		baseLog.Fatal("init places gateway", "error", err)
	}

	// Optional recommendation cache
	var cache *services.RecommendationCache
	if cfg.RedisAddr != "" {
		cache = services.NewRecommendationCache(
			redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.CacheTTL)
	}

	// Services
	statsSvc := services.NewStatsService(statsRepo, baseLog)
	receiptSvc := services.NewReceiptService(db, receiptRepo, restaurantRepo, statsSvc, taskRepo, baseLog)
	enrichSvc := services.NewEnrichmentService(db, restaurantRepo, cuisineRepo, gateway, baseLog)
	recSvc := services.NewRecommendationService(statsRepo, gateway, services.RecommendationPolicy{
		GoodMinRating:      cfg.GoodMinRating,
		CheapMaxPriceLevel: cfg.CheapMaxPriceLevel,
		AnchorLimit:        cfg.AnchorLimit,
		TopCuisines:        cfg.TopCuisines,
		AnchorTimeout:      cfg.AnchorTimeout,
		MergedLimit:        services.DefaultMergedLimit,
	}, cache, baseLog)

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := workers.NewEnrichmentWorker(taskRepo, enrichSvc, workers.WorkerConfig{
		Count:        cfg.WorkerCount,
		PollInterval: cfg.TaskPollInterval,
		TaskTimeout:  cfg.TaskTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		BackoffBase:  cfg.BackoffBase,
	}, baseLog)
	worker.Start(ctx)

	sweeper := workers.NewSweeper(restaurantRepo, taskRepo, cfg.SweepInterval, baseLog)
	sweeper.Start(ctx)

	// HTTP
	r := gin.Default()
	routes.RegisterRoutes(r, routes.Deps{
		DB:              db,
		Receipts:        receiptSvc,
		Recommendations: recSvc,
		Restaurants:     restaurantRepo,
		Stats:           statsRepo,
		Tasks:           taskRepo,
	})

	baseLog.Info("starting server", "port", cfg.Port, "sweep_interval", cfg.SweepInterval.String())
	if err := r.Run(":" + cfg.Port); err != nil {
		baseLog.Fatal("server stopped", "error", err)
	}
}
