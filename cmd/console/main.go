package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/quantconsole/internal/catalog/application"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
	"github.com/wyfcoding/quantconsole/internal/catalog/infrastructure/client"
	"github.com/wyfcoding/quantconsole/internal/catalog/infrastructure/persistence/mysql"
	consoleredis "github.com/wyfcoding/quantconsole/internal/catalog/infrastructure/persistence/redis"
	consoleconsumer "github.com/wyfcoding/quantconsole/internal/catalog/interfaces/consumer"
	httpserver "github.com/wyfcoding/quantconsole/internal/catalog/interfaces/http"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/console/config.toml", "config file path")

type consoleConfig struct {
	config.Config `mapstructure:",squash"`
	Engine        struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		PollIntervalMS int    `mapstructure:"poll_interval_ms"`
	} `mapstructure:"engine"`
}

func main() {
	flag.Parse()

	// 1. Config
	var cfg consoleConfig
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	logCfg := &logging.Config{Service: cfg.Server.Name, Level: cfg.Log.Level}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. Metrics
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)

	// 4. Infrastructure
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(&mysql.RunModel{}, &mysql.BatchModel{}, &mysql.VariantModel{}, &outbox.Message{}); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaProducer.PublishToTopic(ctx, topic, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)

	// 6. Redis
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}
	selectionStore := consoleredis.NewSelectionStore(redisCache.GetClient())
	batchCache := consoleredis.NewBatchCache(redisCache.GetClient())

	// 7. Repositories
	runRepo := mysql.NewRunRepository(db.RawDB())
	batchRepo := mysql.NewBatchRepository(db.RawDB())
	variantRepo := mysql.NewVariantRepository(db.RawDB())
	publisher := outbox.NewPublisher(outboxMgr)

	// 8. Downstream Clients
	engineCli := client.NewEngineClient(cfg.Engine.BaseURL, time.Duration(cfg.Engine.TimeoutSeconds)*time.Second)

	// 9. Application Services
	querySvc := application.NewCatalogQueryService(runRepo, domain.DefaultPresets(), logger.Logger)
	cmdSvc := application.NewCatalogCommandService(runRepo, publisher, logger.Logger)
	batchSvc := application.NewBatchService(batchRepo, variantRepo, batchCache, publisher, logger.Logger)
	selectionSvc := application.NewSelectionService(selectionStore, runRepo, logger.Logger)
	tracker := application.NewJobTracker(engineCli, time.Duration(cfg.Engine.PollIntervalMS)*time.Millisecond, logger.Logger)

	projectionSvc := application.NewProjectionService(runRepo, batchRepo, batchCache, logger.Logger)
	projectionHandler := consoleconsumer.NewProjectionHandler(projectionSvc, logger.Logger)

	projectionTopics := []string{domain.RunStatusChangedEventType, domain.BatchProgressEventType}
	projectionConsumers := make([]*kafka.Consumer, 0, len(projectionTopics))
	for _, topic := range projectionTopics {
		consumerCfg := cfg.MessageQueue.Kafka
		consumerCfg.Topic = topic
		if consumerCfg.GroupID == "" {
			consumerCfg.GroupID = "console-projection-group"
		}
		consumer := kafka.NewConsumer(&consumerCfg, logger, metricsImpl)
		consumer.Start(context.Background(), 3, projectionHandler.Handle)
		projectionConsumers = append(projectionConsumers, consumer)
	}

	// 10. Interfaces
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	httpHandler := httpserver.NewConsoleHandler(querySvc, cmdSvc, batchSvc, selectionSvc, tracker)
	httpHandler.RegisterRoutes(r.Group(""))

	// 11. Start
	g, ctx := errgroup.WithContext(context.Background())

	// Outbox
	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
		server := &http.Server{Addr: addr, Handler: r}
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		tracker.Stop()
		for _, c := range projectionConsumers {
			if c != nil {
				_ = c.Close()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
