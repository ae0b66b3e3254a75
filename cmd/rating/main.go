package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	pcmysql "github.com/wyfcoding/insurancerating/internal/productconfig/infrastructure/persistence/mysql"
	"github.com/wyfcoding/insurancerating/internal/rating/application"
	"github.com/wyfcoding/insurancerating/internal/rating/infrastructure/messaging"
	"github.com/wyfcoding/insurancerating/internal/rating/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/insurancerating/internal/rating/infrastructure/persistence/redis"
	"github.com/wyfcoding/insurancerating/internal/rating/interfaces/consumer"
	httpserver "github.com/wyfcoding/insurancerating/internal/rating/interfaces/http"
	"github.com/wyfcoding/insurancerating/pkg/cache"
	"github.com/wyfcoding/insurancerating/pkg/config"
	"github.com/wyfcoding/insurancerating/pkg/db"
	"github.com/wyfcoding/insurancerating/pkg/logger"
	"github.com/wyfcoding/insurancerating/pkg/metrics"
	"github.com/wyfcoding/insurancerating/pkg/middleware"
	"github.com/wyfcoding/insurancerating/pkg/mq"
)

var configPath = flag.String("config", "configs/rating/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 初始化配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 初始化日志
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
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	ctx := context.Background()

	// 3. 初始化指标
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		go metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. 初始化基础设施
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect database", "error", err)
	}
	defer database.Close()

	// Auto Migrate (仅用于开发方便)
	if cfg.Environment == "dev" {
		if err := database.AutoMigrate(&mysql.QuoteResultModel{}, &messaging.OutboxMessage{}); err != nil {
			logger.Error(ctx, "failed to migrate database", "error", err)
		}
	}

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
		logger.Fatal(ctx, "failed to init redis", "error", err)
	}
	defer redisCache.Close()

	kafkaCfg := mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxRetries:     cfg.Kafka.MaxRetries,
		RetryBackoff:   cfg.Kafka.RetryBackoff,
	}
	producer, err := mq.NewProducer(kafkaCfg)
	if err != nil {
		logger.Fatal(ctx, "failed to create kafka producer", "error", err)
	}
	defer producer.Close()

	configConsumer, err := mq.NewConsumer(kafkaCfg, cfg.Kafka.ConfigTopic)
	if err != nil {
		logger.Fatal(ctx, "failed to create kafka consumer", "error", err)
	}
	defer configConsumer.Close()

	dlq := mq.NewDeadLetterQueue(producer, cfg.Kafka.DeadLetterTopic)

	// 5. 初始化仓储与发布者
	configRepo := pcmysql.NewConfigRepository(database.DB)
	quoteRepo := mysql.NewQuoteRepository(database.DB)
	snapshots := redisrepo.NewSnapshotProvider(redisCache, configRepo, m)
	outboxPub := messaging.NewOutboxEventPublisher(database.DB, producer, cfg.Kafka.QuoteTopic)

	// 6. 初始化应用服务
	ratingSvc := application.NewRatingApplicationService(snapshots, quoteRepo, outboxPub, m, logger.Get())

	// 7. 初始化接口层
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware())
	r.Use(middleware.GinLoggingMiddleware())
	r.Use(middleware.GinCORSMiddleware())
	r.Use(middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimit)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName, "version": cfg.Version})
	})

	handler := httpserver.NewRatingHandler(ratingSvc)
	handler.RegisterRoutes(&r.RouterGroup)

	configHandler := consumer.NewConfigEventHandler(ratingSvc)

	// 8. 启动服务
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g.Go(func() error {
		logger.Info(gctx, "HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 配置更新事件消费
	g.Go(func() error {
		return configConsumer.Run(gctx, configHandler.HandleConfigUpdated, dlq)
	})

	// Outbox 分发循环
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := outboxPub.ProcessOutboxMessages(gctx, 100); err != nil {
					logger.Error(gctx, "failed to process outbox messages", "error", err)
				}
			}
		}
	})

	// 优雅退出
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error(ctx, "service exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "service stopped")
}
