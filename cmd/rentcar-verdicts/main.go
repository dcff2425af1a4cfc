// Command rentcar-verdicts tails the booking verdict topic and logs every check result.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"rentcar/internal/app/outbox"
	"rentcar/internal/infra/broker/kafka"
	"rentcar/internal/infra/config"
	mongodb "rentcar/internal/infra/db/mongo"
	"rentcar/internal/infra/inbox"
	"rentcar/internal/infra/obs"
)

const consumerGroup = "rentcar-verdicts"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	if !cfg.UsesKafka() {
		logger.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}

	handler := kafka.VerdictLogger{Logger: logger}
	if cfg.UsesMongo() {
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connect failed", "error", err)
			os.Exit(1)
		}
		defer client.Close(context.Background())
		store := inbox.NewStore(client.DB, consumerGroup)
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Error("inbox index creation failed", "error", err)
			os.Exit(1)
		}
		handler.Dedup = store
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, consumerGroup, nil, handler)
	if err != nil {
		logger.Error("kafka consumer failed", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	topic := outbox.TopicFor(cfg.KafkaTopicPrefix, "booking.check_passed")
	logger.Info("tailing booking verdicts", "topic", topic, "group", consumerGroup)
	if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
