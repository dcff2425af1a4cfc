package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentcar/internal/app/outbox"
	domainavailability "rentcar/internal/domain/availability"
)

func TestAvailabilitySource_LoadFixtures(t *testing.T) {
	src := NewAvailabilitySource()
	n, err := src.LoadFixtures(strings.NewReader(`[
		{"listingId": "car-1", "startDate": "2024-01-01", "endDate": "2024-01-03T00:00:00Z", "status": "confirmed"},
		{"listingId": "car-2", "startDate": "2024-02-01", "endDate": "2024-02-02", "status": "pending"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := src.UnavailableDates(context.Background(), "car-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), got[0].EndDate)
	assert.Equal(t, domainavailability.StatusConfirmed, got[0].Status)

	got[0].Status = "MUTATED"
	again, _ := src.UnavailableDates(context.Background(), "car-1")
	assert.Equal(t, domainavailability.StatusConfirmed, again[0].Status)

	none, err := src.UnavailableDates(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAvailabilitySource_LoadFixturesErrors(t *testing.T) {
	_, err := NewAvailabilitySource().LoadFixtures(strings.NewReader(`[{"startDate": "2024-01-01", "endDate": "2024-01-02"}]`))
	assert.ErrorContains(t, err, "listingId")

	_, err = NewAvailabilitySource().LoadFixtures(strings.NewReader(`[{"listingId": "a", "startDate": "bad", "endDate": "2024-01-02"}]`))
	assert.Error(t, err)

	_, err = NewAvailabilitySource().LoadFixtures(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestAvailabilitySource_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAvailabilitySource().UnavailableDates(ctx, "car-1")
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingPublisher struct {
	mu           sync.Mutex
	topics       []string
	keys         []string
	contentTypes []string
	fail         error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.contentTypes = append(p.contentTypes, headers["content-type"])
	return nil
}

func TestOutbox_FlushPublishesInOrder(t *testing.T) {
	pub := &recordingPublisher{}
	box := NewOutbox(pub, "dev.")
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.check_passed", Aggregate: "car-1", Payload: []byte(`{}`)}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.check_rejected", Aggregate: "car-2", Payload: []byte(`{}`)}))
	assert.Equal(t, 2, box.Pending())

	require.NoError(t, box.Flush(ctx))
	assert.Equal(t, []string{"dev.booking.events.v1", "dev.booking.events.v1"}, pub.topics)
	assert.Equal(t, []string{"car-1", "car-2"}, pub.keys)
	assert.Equal(t, []string{"application/cloudevents+json", "application/cloudevents+json"}, pub.contentTypes)
	assert.Zero(t, box.Pending())
}

func TestOutbox_FailedPublishKeepsRecords(t *testing.T) {
	pub := &recordingPublisher{fail: errors.New("broker down")}
	box := NewOutbox(pub, "")
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{Name: "booking.check_passed", Payload: []byte(`{}`)}))

	assert.Error(t, box.Flush(context.Background()))
	assert.Equal(t, 1, box.Pending())

	pub.fail = nil
	require.NoError(t, box.Flush(context.Background()))
	assert.Zero(t, box.Pending())
}

func TestOutbox_WithoutPublisherDrops(t *testing.T) {
	box := NewOutbox(nil, "")
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{Name: "booking.check_passed", Payload: []byte(`{}`)}))
	require.NoError(t, box.Flush(context.Background()))
	assert.Zero(t, box.Pending())
}

func TestOutbox_UnencodableRecordIsDropped(t *testing.T) {
	pub := &recordingPublisher{}
	box := NewOutbox(pub, "")
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{Name: "booking.check_passed", Payload: []byte("not json")}))

	assert.Error(t, box.Flush(context.Background()))
	assert.Zero(t, box.Pending())
	assert.Empty(t, pub.topics)
}

func (p *recordingPublisher) setFail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

func TestOutbox_CapacityDropsOldest(t *testing.T) {
	pub := &recordingPublisher{}
	box := &Outbox{Publisher: pub, Capacity: 2}
	ctx := context.Background()
	for _, id := range []string{"car-1", "car-2", "car-3"} {
		require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.check_passed", Aggregate: id, Payload: []byte(`{}`)}))
	}
	assert.Equal(t, 2, box.Pending())

	require.NoError(t, box.Flush(ctx))
	assert.Equal(t, []string{"car-2", "car-3"}, pub.keys)
}

func TestOutbox_RunRetriesAfterOutage(t *testing.T) {
	pub := &recordingPublisher{fail: errors.New("broker down")}
	box := NewOutbox(pub, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.check_passed", Aggregate: "car-1", Payload: []byte(`{}`)}))
	assert.Error(t, box.Flush(ctx))

	done := make(chan error, 1)
	go func() { done <- box.Run(ctx, 5*time.Millisecond) }()
	pub.setFail(nil)

	assert.Eventually(t, func() bool { return box.Pending() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
