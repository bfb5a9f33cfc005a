package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/parkmetrics/queuecast/internal/artifacts"
	"github.com/parkmetrics/queuecast/internal/predictor"
	"github.com/parkmetrics/queuecast/pkg/common"
	"github.com/parkmetrics/queuecast/pkg/config"
	"github.com/parkmetrics/queuecast/pkg/database"
	"github.com/parkmetrics/queuecast/pkg/logger"
	"github.com/parkmetrics/queuecast/pkg/middleware"
	"github.com/parkmetrics/queuecast/pkg/redis"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load("predictor")
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	// Artifact loading is the one hard startup dependency: without a model,
	// scaler and column order the pipeline cannot run at all.
	bundle, err := loadArtifacts(cfg)
	if err != nil {
		logger.Fatal("failed to load model artifacts", zap.Error(err))
	}
	logger.Info("model artifacts loaded",
		zap.Int("training_columns", len(bundle.Columns)),
		zap.Int("observations", len(bundle.Observations)))

	var redisClient *redis.Client
	var cache *predictor.ResultCache
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, prediction cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = predictor.NewResultCache(redisClient, time.Duration(cfg.Redis.CacheTTL)*time.Second)
			logger.Info("prediction result cache enabled")
		}
	}

	service := predictor.NewService(bundle, cache)
	handler := predictor.NewHandler(service)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	checks := map[string]func() error{
		"artifacts": func() error {
			if bundle.Model == nil {
				return fmt.Errorf("model not loaded")
			}
			return nil
		},
	}
	if redisClient != nil {
		checks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		}
	}
	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, version, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router)

	addr := ":" + cfg.Server.Port
	logger.Info("prediction service starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// loadArtifacts picks the configured artifact source. Files are the default;
// the postgres source reads what the offline training job wrote to the
// model_artifacts and wait_observations tables.
func loadArtifacts(cfg *config.Config) (*artifacts.Bundle, error) {
	switch cfg.Artifacts.Source {
	case "", "files":
		return artifacts.Load(cfg.Artifacts.Dir)
	case "postgres":
		pool, err := database.NewPostgresPool(&cfg.Database)
		if err != nil {
			return nil, err
		}
		defer database.Close(pool)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return artifacts.NewPostgresStore(pool).Load(ctx)
	default:
		return nil, fmt.Errorf("unknown artifact source %q", cfg.Artifacts.Source)
	}
}
