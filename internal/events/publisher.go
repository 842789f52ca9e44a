package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

const Topic = "pos.sales"

// Writer is the kafka surface the publisher needs; *kafka.Writer satisfies it.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SaleCompleted is the message emitted after a sale is recorded upstream.
type SaleCompleted struct {
	OrderID    int64      `json:"order_id"`
	Method     string     `json:"method"`
	Total      float64    `json:"total"`
	Currency   string     `json:"currency"`
	Lines      []SaleLine `json:"lines"`
	RecordedAt time.Time  `json:"recorded_at"`
}

type SaleLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Publisher emits sale-completed events. Publishing is best effort: the sale
// is already recorded upstream when this runs, so failures are only logged.
type Publisher struct {
	writer   Writer
	currency string
	log      *zap.Logger
}

func NewPublisher(brokers []string, currency string, log *zap.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Publisher{writer: writer, currency: currency, log: log}
}

// NewPublisherWithWriter wires a custom writer (tests).
func NewPublisherWithWriter(writer Writer, currency string, log *zap.Logger) *Publisher {
	return &Publisher{writer: writer, currency: currency, log: log}
}

func (p *Publisher) SaleCompleted(ctx context.Context, orderID int64, method string, snapshot domain.CartSnapshot) error {
	event := SaleCompleted{
		OrderID:    orderID,
		Method:     method,
		Total:      domain.Round2(snapshot.Total),
		Currency:   p.currency,
		RecordedAt: time.Now(),
	}
	for _, item := range snapshot.Items {
		event.Lines = append(event.Lines, SaleLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Quantity:  item.EffectiveQuantity(),
			UnitPrice: domain.Round2(item.Product.Price),
		})
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Method),
		Value: value,
	})
	if err != nil {
		p.log.Warn("sale event publish failed", zap.Int64("order_id", orderID), zap.Error(err))
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
