package domain

import (
	"context"
	"time"
)

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository отдаёт накопленные события воркеру публикации.
type OutboxRepository interface {
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
	// FailedCount: записи, исчерпавшие попытки публикации.
	FailedCount int
}

const (
	// OutboxAggregateOrder: тип агрегата для событий заказа.
	OutboxAggregateOrder = "order"
	// OutboxEventOrderCompleted: заказ оформлен и записан.
	OutboxEventOrderCompleted = "order.completed"
)
