package api

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	"github.com/redis/go-redis/v9"

	"github.com/corvidscan/svcprobe/config"
	_ "github.com/corvidscan/svcprobe/docs"
	"github.com/corvidscan/svcprobe/logging"
	"github.com/corvidscan/svcprobe/scanner"
)

func registerSwagger(router *gin.Engine) {
	router.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))
}

// Run initializes dependencies and starts the API server.
func Run(cfg config.Config) error {
	logger := logging.Logger()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return scanner.ErrRedisUnavailable(err)
	}

	if cfg.ExcludeFile != "" {
		if err := scanner.LoadExcludeOverride(cfg.ExcludeFile); err != nil {
			return err
		}
	}
	scanner.SetTimeouts(cfg.DialTimeout, cfg.ReadTimeout)
	scanner.SetResultCacheTTL(cfg.ResultTTL)
	scanner.SetDialRateLimit(cfg.DialRatePerSecond, cfg.DialBurst)

	store := NewRedisStore(redisClient)

	sink, err := NewMetricsSink(cfg.InfluxAddr, cfg.InfluxDB, logger)
	if err != nil {
		logger.Warn("metrics sink disabled", "error", err)
		sink = nil
	}
	if sink != nil {
		defer sink.Close()
	}

	StartWorkers(store, logger, sink, cfg.WorkerCount)

	router := gin.Default()
	router.Use(RequestLoggingMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())
	if cfg.APIKey != "" {
		router.Use(AuthMiddleware(cfg.APIKey, logger))
	}
	if cfg.RateLimit > 0 {
		router.Use(RateLimitMiddleware(redisClient, cfg.RateLimit, cfg.RateWindow, logger))
	}

	registerSwagger(router)

	server := NewServer(store)
	server.RegisterRoutes(router)

	logger.Info("starting service detection API", "addr", cfg.ListenAddr)
	return router.Run(cfg.ListenAddr)
}
