package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu     sync.Mutex
	due    []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.due) == 0 {
		return nil, nil
	}
	doc := q.due[0]
	q.due = q.due[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

func (q *fakeQueue) sentCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.sent)
}

type fakeProducer struct {
	topics   []string
	payloads [][]byte
	fail     error
}

func (p *fakeProducer) Publish(_ context.Context, topic, _ string, payload []byte, _ map[string]string) error {
	if p.fail != nil {
		return p.fail
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func doc(id string, attempts int) *EventDocument {
	return &EventDocument{ID: id, Name: "booking.check_passed", Payload: []byte(`{"total":130}`), Aggregate: "car-1", Attempts: attempts}
}

func TestWorker_DrainPublishesCloudEvents(t *testing.T) {
	q := &fakeQueue{due: []*EventDocument{doc("e1", 0), doc("e2", 0)}}
	p := &fakeProducer{}
	w := &Worker{Queue: q, Producer: p, TopicPrefix: "stage.", ID: "w1"}

	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"e1", "e2"}, q.sent)
	assert.Equal(t, []string{"stage.booking.events.v1", "stage.booking.events.v1"}, p.topics)

	var evt map[string]any
	require.NoError(t, json.Unmarshal(p.payloads[0], &evt))
	assert.Equal(t, "e1", evt["id"])
	assert.Equal(t, "booking.check_passed.v1", evt["type"])
	assert.Equal(t, "app://rentcar", evt["source"])
}

func TestWorker_PublishFailureSchedulesRetry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &fakeQueue{due: []*EventDocument{doc("e1", 0), doc("e2", 5)}}
	w := &Worker{
		Queue:    q,
		Producer: &fakeProducer{fail: errors.New("leader not available")},
		Backoff:  []time.Duration{time.Second, 30 * time.Second},
		Now:      func() time.Time { return now },
	}

	_, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, q.sent)
	assert.Equal(t, now.Add(time.Second), q.failed["e1"])
	assert.Equal(t, now.Add(30*time.Second), q.failed["e2"], "attempts past the table reuse the last step")
}

func TestWorker_BatchSizeCapsDrain(t *testing.T) {
	q := &fakeQueue{due: []*EventDocument{doc("e1", 0), doc("e2", 0), doc("e3", 0)}}
	w := &Worker{Queue: q, Producer: &fakeProducer{}, BatchSize: 2}
	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, q.due, 1)
}

func TestWorker_RunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	q := &fakeQueue{due: []*EventDocument{doc("e1", 0)}}
	w := &Worker{Queue: q, Producer: &fakeProducer{}, Interval: 5 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return q.sentCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
