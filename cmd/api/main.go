package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	config "github.com/snapfeed/snapfeed/internal/config/api"
	"github.com/snapfeed/snapfeed/internal/kv"
	"github.com/snapfeed/snapfeed/internal/obs/retry"
	outboxrun "github.com/snapfeed/snapfeed/internal/outbox"
	kafkax "github.com/snapfeed/snapfeed/internal/repository/kafka"
	pg "github.com/snapfeed/snapfeed/internal/repository/postgres"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting api", zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version))

	otelShutdown, err := initOTel(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(rootCtx) }()

	db, err := initDB(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	store, err := kv.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}

	deps := apiDeps{
		users:    pg.NewUserRepo(db),
		sessions: pg.NewSessionRepo(db),
		follows:  pg.NewFollowRepo(db),
		notifs:   pg.NewNotificationRepo(db),
		outbox:   pg.NewOutboxRepo(db),
		tx:       pg.NewTransactor(db, logger),
		store:    store,
	}

	_ = kafkax.EnsureTopic(rootCtx, cfg.Kafka.Brokers, kafkax.TopicSpec{
		Name:          cfg.Kafka.Topic,
		NumPartitions: cfg.Kafka.Partitions,
	}, logger)

	producer := kafkax.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() { _ = producer.Close() }()
	followEvents := kafkax.NewFollowEventsKafka(producer)

	dispatcher := outboxrun.MakeGlobalOutboxHandler(followEvents, retry.DefaultKafkaPolicy(logger))
	runner := outboxrun.NewOutboxRunner(
		logger.With(zap.String("component", "outbox.runner")),
		deps.outbox,
		dispatcher,
		cfg.Outbox.Workers,
		cfg.Outbox.BatchSize,
		cfg.Outbox.WaitTime,
		cfg.Outbox.InProgressTTL,
	)
	runner.Start(rootCtx)

	httpSrv := buildHTTPServer(cfg, logger, db, deps)

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, cfg, logger) }()

	var runErr error
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal", zap.String("reason", "context canceled"))
	case runErr = <-httpErrCh:
		if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	_ = httpSrv.Shutdown(shCtx)

	time.Sleep(100 * time.Millisecond)
	logger.Info("bye")
}
