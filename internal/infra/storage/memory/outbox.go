package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	appoutbox "rentcar/internal/app/outbox"
)

const (
	DefaultOutboxCapacity = 1024
	defaultDrainInterval  = time.Second
)

// Outbox buffers records in memory. Flush hands them to Publisher when one is
// set and drops them otherwise. At most Capacity records are held; the oldest
// is discarded to make room.
type Outbox struct {
	Publisher   appoutbox.Publisher
	TopicPrefix string
	Source      string
	Capacity    int
	Logger      *slog.Logger

	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewOutbox(publisher appoutbox.Publisher, topicPrefix string) *Outbox {
	return &Outbox{Publisher: publisher, TopicPrefix: topicPrefix}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.records) >= o.capacity() {
		dropped := o.records[0]
		o.records = o.records[1:]
		o.log().WarnContext(ctx, "outbox full, dropping oldest record", "event_id", dropped.ID, "event", dropped.Name)
	}
	o.records = append(o.records, record)
	return nil
}

// Flush publishes pending records in order. A record whose publish fails stays
// pending for the next flush; one that cannot be encoded is dropped.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Publisher == nil {
		o.records = nil
		return nil
	}
	for len(o.records) > 0 {
		rec := o.records[0]
		payload, headers, err := appoutbox.Envelope(rec, o.Source)
		if err != nil {
			o.records = o.records[1:]
			return err
		}
		topic := appoutbox.TopicFor(o.TopicPrefix, rec.Name)
		if err := o.Publisher.Publish(ctx, topic, rec.Aggregate, payload, headers); err != nil {
			return err
		}
		o.records = o.records[1:]
	}
	o.records = nil
	return nil
}

// Run retries pending records every interval until ctx is cancelled.
func (o *Outbox) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultDrainInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if o.Pending() == 0 {
				continue
			}
			if err := o.Flush(ctx); err != nil && ctx.Err() == nil {
				o.log().WarnContext(ctx, "outbox drain failed", "pending", o.Pending(), "error", err)
			}
		}
	}
}

// Pending reports how many records are waiting for delivery.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.records)
}

func (o *Outbox) capacity() int {
	if o.Capacity > 0 {
		return o.Capacity
	}
	return DefaultOutboxCapacity
}

func (o *Outbox) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

var _ appoutbox.Outbox = (*Outbox)(nil)
