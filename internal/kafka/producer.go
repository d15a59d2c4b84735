package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/carteira-dashboard/internal/models"
)

// MessageWriter is the subset of *kafka.Writer used by Producer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing dashboard events to Kafka
type Producer struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewProducerWithWriter(writer, topic)
}

// NewProducerWithWriter creates a producer on top of an existing writer
func NewProducerWithWriter(w MessageWriter, topic string) *Producer {
	return &Producer{writer: w, topic: topic, now: time.Now}
}

// PublishPositionSaved publishes a position saved event
func (p *Producer) PublishPositionSaved(ctx context.Context, pos *models.Position) error {
	return p.publish(ctx, models.PositionEvent{
		EventType: models.EventPositionSaved,
		Code:      pos.Code,
		Position:  pos,
	})
}

// PublishPositionDeleted publishes a position deleted event
func (p *Producer) PublishPositionDeleted(ctx context.Context, code string) error {
	return p.publish(ctx, models.PositionEvent{
		EventType: models.EventPositionDeleted,
		Code:      code,
	})
}

// PublishOptionSaved publishes an option saved event
func (p *Producer) PublishOptionSaved(ctx context.Context, o *models.OptionPosition) error {
	return p.publish(ctx, models.PositionEvent{
		EventType: models.EventOptionSaved,
		Code:      o.Code,
		Option:    o,
	})
}

// PublishOptionDeleted publishes an option deleted event
func (p *Producer) PublishOptionDeleted(ctx context.Context, code string) error {
	return p.publish(ctx, models.PositionEvent{
		EventType: models.EventOptionDeleted,
		Code:      code,
	})
}

// PublishQuoteUpdated publishes a fresh quote
func (p *Producer) PublishQuoteUpdated(ctx context.Context, q *models.QuoteSnapshot) error {
	return p.publish(ctx, models.PositionEvent{
		EventType: models.EventQuoteUpdated,
		Code:      q.Code,
		Quote:     q,
	})
}

// PublishAlertChanged publishes a classification change
func (p *Producer) PublishAlertChanged(ctx context.Context, code, classification string, q *models.QuoteSnapshot) error {
	return p.publish(ctx, models.PositionEvent{
		EventType:      models.EventAlertChanged,
		Code:           code,
		Quote:          q,
		Classification: classification,
	})
}

func (p *Producer) publish(ctx context.Context, event models.PositionEvent) error {
	event.EventID = uuid.NewString()
	event.Timestamp = p.now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Code),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event to kafka: %w", event.EventType, err)
	}
	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
