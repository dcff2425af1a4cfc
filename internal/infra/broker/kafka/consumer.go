package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer reads topics as part of a consumer group until its context ends.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	cfg.Version = sarama.V2_5_0_0
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler}); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim stops at the first handler failure without marking the message.
// Returning the error ends the session, and Run rejoins from the last marked
// offset, so the failed message is delivered again.
func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil {
			return fmt.Errorf("kafka: handle %s/%d@%d: %w", message.Topic, message.Partition, message.Offset, err)
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// Deduplicator reports whether an event id was handled before.
type Deduplicator interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// VerdictLogger logs each booking verdict CloudEvent it receives. With Dedup
// set, redelivered events are skipped.
type VerdictLogger struct {
	Logger *slog.Logger
	Dedup  Deduplicator
}

type verdictEnvelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Data    struct {
		CheckID string `json:"check_id"`
		Code    string `json:"code"`
		Total   *int64 `json:"total"`
	} `json:"data"`
}

func (v VerdictLogger) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt verdictEnvelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		v.Logger.WarnContext(ctx, "skipping undecodable event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if v.Dedup != nil && evt.ID != "" {
		seen, err := v.Dedup.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			v.Logger.DebugContext(ctx, "duplicate verdict skipped", "event_id", evt.ID)
			return nil
		}
	}
	attrs := []any{
		"type", evt.Type,
		"event_id", evt.ID,
		"listing_id", evt.Subject,
		"check_id", evt.Data.CheckID,
		"partition", msg.Partition,
		"offset", msg.Offset,
	}
	if evt.Data.Code != "" {
		attrs = append(attrs, "code", evt.Data.Code)
	}
	if evt.Data.Total != nil {
		attrs = append(attrs, "total", *evt.Data.Total)
	}
	v.Logger.InfoContext(ctx, "booking verdict", attrs...)
	return nil
}

var _ MessageHandler = VerdictLogger{}
