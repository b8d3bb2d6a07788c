package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

// NewDLQPublisher создаёт паблишер в dead letter topic.
func NewDLQPublisher(producer *Producer) domain.OutboxPublisher {
	return NewOutboxPublisher(producer, TopicDeadLetterQueue)
}

// outboxEnvelope: формат сообщения в topic: метаданные outbox плюс исходный payload.
type outboxEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

func (p *OutboxTopicPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	// ключ по заказу: события одного заказа попадают в одну партицию
	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	envelope := outboxEnvelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   p.producer.now().UTC(),
	}

	return p.producer.PublishEvent(ctx, p.topic, key, envelope,
		sarama.RecordHeader{Key: []byte(HeaderEventType), Value: []byte(event.EventType)},
		sarama.RecordHeader{Key: []byte(HeaderOutboxID), Value: []byte(event.ID)},
	)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
