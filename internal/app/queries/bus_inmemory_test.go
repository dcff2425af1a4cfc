package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sumQuery struct{ A, B int }

func (sumQuery) Key() string { return "test.sum" }

func TestAsk(t *testing.T) {
	bus := NewInMemoryBus()
	require.NoError(t, RegisterHandler[sumQuery, int](bus, sumQuery{}.Key(), HandlerFunc[sumQuery, int](func(ctx context.Context, q sumQuery) (int, error) {
		return q.A + q.B, nil
	})))

	got, err := Ask[sumQuery, int](context.Background(), bus, sumQuery{A: 2, B: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	_, err = Ask[sumQuery, string](context.Background(), bus, sumQuery{})
	assert.ErrorIs(t, err, ErrResultType)

	_, err = Ask[sumQuery, int](context.Background(), nil, sumQuery{})
	assert.ErrorIs(t, err, ErrNilBus)

	assert.ErrorIs(t, RegisterHandler[sumQuery, int](bus, sumQuery{}.Key(), HandlerFunc[sumQuery, int](func(context.Context, sumQuery) (int, error) { return 0, nil })), ErrDuplicateKey)
}

func TestAsk_UnknownKey(t *testing.T) {
	_, err := NewInMemoryBus().Ask(context.Background(), sumQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}
