package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sakashimaa/go-banking-saga/pkg/config"
	"github.com/sakashimaa/go-banking-saga/pkg/db"
	kafka2 "github.com/sakashimaa/go-banking-saga/pkg/kafka"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	outboxRepository "github.com/sakashimaa/go-banking-saga/pkg/outbox/repository"
	"github.com/sakashimaa/go-banking-saga/pkg/outbox/worker"
	"github.com/sakashimaa/go-banking-saga/pkg/utils"
	"github.com/sakashimaa/go-banking-saga/services/account/internal/repository"
	"github.com/sakashimaa/go-banking-saga/services/account/internal/service"
	"github.com/sakashimaa/go-banking-saga/services/account/internal/transport/kafka"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "account-service")
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	loggerCfg := config.LoggerConfig{
		Level: "info",
		Env:   cfg.Env,
	}
	logger, err := config.NewLogger(loggerCfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	brokers := cfg.Kafka.BrokerList()

	kafkaProducer, err := kafka2.NewProducer(brokers, logger)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	accountRepo := repository.NewAccountRepository(pool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)
	validator := service.NewValidator(accountRepo, logger)
	provisioningService := service.NewProvisioningService(
		pool,
		logger,
		accountRepo,
		outboxRepo,
		validator,
		cfg.Kafka.ResponseTopic,
	)

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	consumer := kafka.NewConsumer(provisioningService, cfg.Kafka.GroupID, cfg.Kafka.RequestTopic, logger)
	consumer.Start(ctx, brokers)

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.WithoutCancel(ctx), time.Second*5)
	defer exit()

	mylogger.Info(
		shutdownCtx,
		logger,
		"Shutting down account service",
	)

	if err := kafkaProducer.Close(); err != nil {
		mylogger.Warn(
			shutdownCtx,
			logger,
			"Failed to close kafka producer",
			zap.Error(err),
		)
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		mylogger.Warn(
			shutdownCtx,
			logger,
			"Failed to shut down telemetry",
			zap.Error(err),
		)
	}

	pool.Close()
}
