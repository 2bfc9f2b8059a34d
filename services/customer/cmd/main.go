package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/sakashimaa/go-banking-saga/pkg/config"
	"github.com/sakashimaa/go-banking-saga/pkg/db"
	kafka2 "github.com/sakashimaa/go-banking-saga/pkg/kafka"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"github.com/sakashimaa/go-banking-saga/pkg/utils"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/repository"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/service"
	httpTransport "github.com/sakashimaa/go-banking-saga/services/customer/internal/transport/http"
	"github.com/sakashimaa/go-banking-saga/services/customer/internal/transport/http/handler"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "customer-service")
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

	customerRepo := repository.NewCustomerRepository(pool, logger)
	customerService := service.NewCustomerService(customerRepo, logger)
	emitter := service.NewAccountRequestEmitter(kafkaProducer, customerRepo, cfg.Kafka.RequestTopic, logger)

	topicReader := kafka2.NewTopicReader(brokers, logger)
	statusService := service.NewStatusService(
		topicReader,
		cfg.Kafka.ResponseTopic,
		cfg.Resolver.RecentWindow,
		cfg.Resolver.PollTimeout,
		logger,
	)

	app := fiber.New()

	app.Use(otelfiber.Middleware())

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 5 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	httpTransport.RegisterRoutes(app, &httpTransport.Handlers{
		Customer: handler.NewCustomerHandler(customerService, logger),
		Account:  handler.NewAccountHandler(emitter, statusService, logger),
	})

	go func() {
		log.Printf("HTTP server listening on %s 🔥", cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error serving HTTP: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.WithoutCancel(ctx), time.Second*5)
	defer exit()

	mylogger.Info(
		shutdownCtx,
		logger,
		"Shutting down customer service",
	)

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		mylogger.Warn(
			shutdownCtx,
			logger,
			"Failed to shut down HTTP server",
			zap.Error(err),
		)
	}

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
