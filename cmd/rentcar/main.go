package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentcar/internal/app/commands"
	availabilityapp "rentcar/internal/app/handlers/availability"
	bookingapp "rentcar/internal/app/handlers/booking"
	quoteapp "rentcar/internal/app/handlers/quotes"
	"rentcar/internal/app/middleware"
	"rentcar/internal/app/outbox"
	"rentcar/internal/app/queries"
	domainavailability "rentcar/internal/domain/availability"
	"rentcar/internal/domain/booking"
	"rentcar/internal/domain/pricing"
	"rentcar/internal/infra/availability/httpapi"
	"rentcar/internal/infra/broker/kafka"
	"rentcar/internal/infra/config"
	mongodb "rentcar/internal/infra/db/mongo"
	ginserver "rentcar/internal/infra/http/gin"
	"rentcar/internal/infra/obs"
	infraoutbox "rentcar/internal/infra/outbox"
	"rentcar/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(getenv("APP_ENV", "dev")).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)

	for _, run := range app.background {
		go func(run func(context.Context) error) {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}(run)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "availability_source", cfg.AvailabilitySource, "currency", cfg.Currency)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	checks     map[string]obs.Check
	background []func(context.Context) error
	closers    []func(context.Context) error
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}}

	calc, err := pricing.NewCalculator(cfg.Currency)
	if err != nil {
		return app, fmt.Errorf("CURRENCY: %w", err)
	}

	var mongoClient *mongodb.Client
	if cfg.UsesMongo() {
		mongoClient, err = mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return app, fmt.Errorf("mongo connect: %w", err)
		}
		app.closers = append(app.closers, mongoClient.Close)
		app.checks["mongo"] = mongoClient.Ping
	}

	source, err := buildSource(ctx, cfg, mongoClient, logger)
	if err != nil {
		return app, err
	}

	var producer *kafka.Producer
	if cfg.UsesKafka() {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return app, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
	}

	box, err := buildOutbox(ctx, cfg, app, mongoClient, producer, logger)
	if err != nil {
		return app, err
	}

	validator := &booking.Validator{Source: source, Pricing: calc, Location: cfg.Location}

	commandBus := commands.NewInMemoryBus()
	checkHandler := &bookingapp.CheckHandler{
		Validator: validator,
		Outbox:    box,
		Encoder:   outbox.JSONEventEncoder{},
	}
	if err := bookingapp.Register(commandBus, checkHandler); err != nil {
		return app, err
	}

	queryBus := queries.NewInMemoryBus()
	if err := quoteapp.Register(queryBus, calc); err != nil {
		return app, err
	}
	if err := availabilityapp.Register(queryBus, validator); err != nil {
		return app, err
	}

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Validation(),
		middleware.OutboxFlush(box, logger),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(),
	)

	app.handlers = ginserver.Handlers{
		Quotes:       ginserver.QuoteHandler{Queries: queryBusWithMiddleware, Logger: logger},
		BookingCheck: ginserver.BookingCheckHandler{Commands: commandBusWithMiddleware, Logger: logger},
		Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware, Logger: logger},
	}
	logger.Info("application wired", "commands", commandBus.Keys(), "queries", queryBus.Keys())
	return app, nil
}

func buildSource(ctx context.Context, cfg config.Config, mongoClient *mongodb.Client, logger *slog.Logger) (domainavailability.Source, error) {
	switch cfg.AvailabilitySource {
	case config.SourceHTTP:
		return &httpapi.Client{
			BaseURL: cfg.AvailabilityAPIURL,
			Client:  &http.Client{Timeout: cfg.AvailabilityTimeout},
			Logger:  logger,
		}, nil
	case config.SourceMongo:
		src := mongodb.NewAvailabilitySource(mongoClient.DB)
		if err := src.EnsureIndexes(ctx); err != nil {
			logger.Warn("booking index creation failed", "error", err)
		}
		if err := seedMongo(ctx, src, cfg.AvailabilityFixtures, logger); err != nil {
			return nil, err
		}
		return src, nil
	default:
		src := memory.NewAvailabilitySource()
		if cfg.AvailabilityFixtures == "" {
			return src, nil
		}
		f, err := os.Open(cfg.AvailabilityFixtures)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Info("availability fixtures file not found, skipping", "path", cfg.AvailabilityFixtures)
				return src, nil
			}
			return nil, fmt.Errorf("AVAILABILITY_FIXTURES: %w", err)
		}
		defer f.Close()
		n, err := src.LoadFixtures(f)
		if err != nil {
			return nil, fmt.Errorf("AVAILABILITY_FIXTURES: %w", err)
		}
		logger.Info("availability fixtures loaded", "path", cfg.AvailabilityFixtures, "bookings", n)
		return src, nil
	}
}

func seedMongo(ctx context.Context, src *mongodb.AvailabilitySource, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("availability fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("AVAILABILITY_FIXTURES: %w", err)
	}
	defer f.Close()
	fixtures, err := memory.ReadFixtures(f)
	if err != nil {
		return fmt.Errorf("AVAILABILITY_FIXTURES: %w", err)
	}
	for _, fx := range fixtures {
		id := fmt.Sprintf("fixture:%s:%s", fx.ListingID, fx.Booking.Interval())
		if err := src.Save(ctx, id, fx.ListingID, fx.Booking); err != nil {
			return fmt.Errorf("seed booking %s: %w", id, err)
		}
	}
	logger.Info("availability fixtures seeded into mongo", "path", path, "bookings", len(fixtures))
	return nil
}

// buildOutbox keeps verdict events in Mongo for the worker when Mongo is
// configured; otherwise events are published inline after each command and
// failed publishes are retried in the background.
func buildOutbox(ctx context.Context, cfg config.Config, app *application, mongoClient *mongodb.Client, producer *kafka.Producer, logger *slog.Logger) (outbox.Outbox, error) {
	var publisher outbox.Publisher
	if producer != nil {
		publisher = producer
	}
	if mongoClient == nil || publisher == nil {
		if publisher == nil {
			logger.Info("no kafka brokers configured, verdict events are dropped after each check")
		}
		box := memory.NewOutbox(publisher, cfg.KafkaTopicPrefix)
		box.Logger = logger
		if publisher != nil {
			app.background = append(app.background, func(ctx context.Context) error {
				return box.Run(ctx, cfg.OutboxPollInterval)
			})
		}
		return box, nil
	}

	store := infraoutbox.NewStore(mongoClient.DB)
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("outbox index creation failed", "error", err)
	}
	worker := &infraoutbox.Worker{
		Queue:       store,
		Producer:    publisher,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}
	app.background = append(app.background, worker.Run)
	return store, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
