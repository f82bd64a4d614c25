package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/optionspricing/internal/pricing/application"
	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
	"github.com/wyfcoding/optionspricing/internal/pricing/infrastructure/client"
	"github.com/wyfcoding/optionspricing/internal/pricing/infrastructure/messaging"
	persistence_mysql "github.com/wyfcoding/optionspricing/internal/pricing/infrastructure/persistence/mysql"
	persistence_redis "github.com/wyfcoding/optionspricing/internal/pricing/infrastructure/persistence/redis"
	pricing_http "github.com/wyfcoding/optionspricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/optionspricing/pkg/cache"
	"github.com/wyfcoding/optionspricing/pkg/config"
	"github.com/wyfcoding/optionspricing/pkg/db"
	"github.com/wyfcoding/optionspricing/pkg/logger"
	"github.com/wyfcoding/optionspricing/pkg/metrics"
	"github.com/wyfcoding/optionspricing/pkg/middleware"
	"github.com/wyfcoding/optionspricing/pkg/mq"
)

func main() {
	configPath := flag.String("config", config.GetEnv("APP_CONFIG", "configs/pricing.toml"), "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx := context.Background()
	logger.Info(ctx, "starting pricing service",
		"service", cfg.ServiceName, "version", cfg.Version, "environment", cfg.Environment)

	// 3. Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "failed to register metrics", "error", err)
		}
		go func() {
			if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil && err != http.ErrServerClosed {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	// 4. Database
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, m)
	if err != nil {
		logger.Fatal(ctx, "failed to connect database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(&persistence_mysql.PricingResultModel{}); err != nil {
		logger.Fatal(ctx, "failed to migrate database", "error", err)
	}

	// 5. Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect redis", "error", err)
	}
	defer redisCache.Close()

	// 6. Kafka (optional)
	var publisher domain.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to create kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
	}

	// 7. Layers
	engine := domain.NewEngine(
		domain.NewBlackScholesModel(),
		domain.NewBinomialTreeModel(cfg.Pricing.BinomialSteps),
		domain.NewMonteCarloModel(cfg.Pricing.MonteCarloPaths, cfg.Pricing.MonteCarloSeed),
	)
	repo := persistence_mysql.NewPricingRepository(database.DB)
	resultCache := persistence_redis.NewPricingRedisRepository(redisCache, time.Duration(cfg.Pricing.CacheTTL)*time.Second)

	var marketData domain.MarketDataClient
	if cfg.Environment == "dev" {
		marketData = client.NewStaticMarketDataClient(nil)
	} else {
		marketData = client.NewMarketDataClient(redisCache)
	}

	cmdService := application.NewPricingCommandService(engine, repo, resultCache, marketData, publisher, m)
	queryService := application.NewPricingQueryService(engine, repo, resultCache, m)
	handler := pricing_http.NewPricingHandler(cmdService, queryService)

	// 8. HTTP server
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinLoggingMiddleware(),
		middleware.GinRecoveryMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimit)),
	)
	if m != nil {
		router.Use(middleware.GinMetricsMiddleware(m))
	}
	handler.RegisterRootRoutes(router)
	handler.RegisterRoutes(&router.RouterGroup)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "server started", "addr", addr, "models", engine.ModelNames())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "failed to serve", "error", err)
		}
	}()

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", "error", err)
	}
	logger.Info(ctx, "server exited")
}
