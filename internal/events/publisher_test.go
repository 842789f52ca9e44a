package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// WriterMock captures written messages
type WriterMock struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *WriterMock) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *WriterMock) Close() error {
	m.closed = true
	return nil
}

func testSnapshot() domain.CartSnapshot {
	return domain.CartSnapshot{
		Items: []domain.LineItem{
			{Product: domain.Product{ID: 1, Name: "Harina", Price: 100}, Quantity: 2},
			{Product: domain.Product{ID: 2, Name: "Mouse", Price: 199.999}, Quantity: 1},
		},
		Subtotal:   400,
		Total:      402.006,
		CapturedAt: time.Now(),
	}
}

func TestPublisher_SaleCompleted(t *testing.T) {
	writer := &WriterMock{}
	p := NewPublisherWithWriter(writer, "BOB", zap.NewNop())

	err := p.SaleCompleted(context.Background(), 42, "cash", testSnapshot())
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("cash"), writer.messages[0].Key)

	var event SaleCompleted
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
	assert.Equal(t, int64(42), event.OrderID)
	assert.Equal(t, "cash", event.Method)
	assert.Equal(t, 402.01, event.Total)
	assert.Equal(t, "BOB", event.Currency)
	require.Len(t, event.Lines, 2)
	assert.Equal(t, "Harina", event.Lines[0].Name)
	assert.Equal(t, 2, event.Lines[0].Quantity)
	assert.Equal(t, 200.0, event.Lines[1].UnitPrice)
	assert.False(t, event.RecordedAt.IsZero())
}

func TestPublisher_SaleCompleted_WriteFailure(t *testing.T) {
	writeErr := errors.New("broker unreachable")
	p := NewPublisherWithWriter(&WriterMock{err: writeErr}, "BOB", zap.NewNop())

	err := p.SaleCompleted(context.Background(), 42, "qr", testSnapshot())
	assert.ErrorIs(t, err, writeErr)
}

func TestPublisher_Close(t *testing.T) {
	writer := &WriterMock{}
	p := NewPublisherWithWriter(writer, "BOB", zap.NewNop())

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}
