package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// EventType определяет тип события.
type EventType string

// EventTypeOrderCompleted: заказ оформлен и записан в хранилище.
const EventTypeOrderCompleted EventType = domain.OutboxEventOrderCompleted

// Topics для Kafka.
const (
	TopicOrderEvents     = "pos.order.events"
	TopicDeadLetterQueue = "pos.dlq"
)

// Заголовки сообщений.
const (
	HeaderEventType = "x-event-type"
	HeaderOutboxID  = "x-outbox-id"
)

// OrderCompletedEvent: полезная нагрузка события order.completed.
type OrderCompletedEvent struct {
	EventType   EventType            `json:"event_type"`
	OrderID     int64                `json:"order_id"`
	CreatedAt   time.Time            `json:"created_at"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Lines       []OrderCompletedLine `json:"lines"`
}

// OrderCompletedLine: строка заказа в событии. Имя фиксируется на момент продажи.
type OrderCompletedLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// NewOrderCompletedEvent собирает событие по идентификатору заказа и строкам корзины.
func NewOrderCompletedEvent(orderID int64, createdAt time.Time, total decimal.Decimal, lines []domain.CartLine) OrderCompletedEvent {
	eventLines := make([]OrderCompletedLine, 0, len(lines))
	for _, line := range lines {
		eventLines = append(eventLines, OrderCompletedLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	return OrderCompletedEvent{
		EventType:   EventTypeOrderCompleted,
		OrderID:     orderID,
		CreatedAt:   createdAt.UTC(),
		TotalAmount: total,
		Lines:       eventLines,
	}
}

// DecodeOrderCompleted разбирает полезную нагрузку outbox-сообщения.
func DecodeOrderCompleted(payload []byte) (OrderCompletedEvent, error) {
	var event OrderCompletedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return OrderCompletedEvent{}, fmt.Errorf("decode order completed event: %w", err)
	}
	if event.EventType != EventTypeOrderCompleted {
		return OrderCompletedEvent{}, fmt.Errorf("unexpected event type %q", event.EventType)
	}
	return event, nil
}
