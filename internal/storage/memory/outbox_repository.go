package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// outboxRepositoryInMemory читает outbox общего хранилища. Запись идёт только
// через транзакцию оформления заказа.
type outboxRepositoryInMemory struct {
	store *Store
}

// NewOutboxRepository создаёт in-memory реализацию outbox.
func NewOutboxRepository(store *Store) *outboxRepositoryInMemory {
	return &outboxRepositoryInMemory{store: store}
}

// PullPending возвращает до limit сообщений со статусом `pending` в порядке создания.
func (r *outboxRepositoryInMemory) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	pending := r.pendingLocked()
	if len(pending) > limit {
		pending = pending[:limit]
	}

	result := make([]domain.OutboxMessage, 0, len(pending))
	for _, rec := range pending {
		result = append(result, rec.msg)
	}
	return result, nil
}

// Stats возвращает размер backlog и время самого старого pending-сообщения.
func (r *outboxRepositoryInMemory) Stats(_ context.Context) (domain.OutboxStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pending := r.pendingLocked()
	stats := domain.OutboxStats{PendingCount: len(pending)}
	if len(pending) > 0 {
		stats.OldestPendingAt = pending[0].createdAt
	}
	for _, rec := range r.store.outbox {
		if rec.status == "failed" {
			stats.FailedCount++
		}
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (r *outboxRepositoryInMemory) MarkSent(_ context.Context, id string) error {
	return r.markStatus(id, "sent")
}

// MarkFailed фиксирует ошибку публикации.
func (r *outboxRepositoryInMemory) MarkFailed(_ context.Context, id string) error {
	return r.markStatus(id, "failed")
}

func (r *outboxRepositoryInMemory) markStatus(id, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record, ok := r.store.outbox[id]
	if !ok || record.status != "pending" {
		return fmt.Errorf("order event %s is not pending: %w", id, domain.ErrOutboxPublish)
	}
	record.status = status
	record.attemptCnt++
	record.updatedAt = time.Now().UTC()
	return nil
}

// AllPending возвращает копию всех сообщений со статусом `pending` (используется в тестах).
func (r *outboxRepositoryInMemory) AllPending() []domain.OutboxMessage {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pending := r.pendingLocked()
	result := make([]domain.OutboxMessage, 0, len(pending))
	for _, rec := range pending {
		result = append(result, rec.msg)
	}
	return result
}

func (r *outboxRepositoryInMemory) pendingLocked() []*outboxRecord {
	pending := make([]*outboxRecord, 0, len(r.store.outbox))
	for _, rec := range r.store.outbox {
		if rec.status == "pending" {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].createdAt.Equal(pending[j].createdAt) {
			return pending[i].createdAt.Before(pending[j].createdAt)
		}
		return pending[i].msg.ID < pending[j].msg.ID
	})
	return pending
}

var _ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)
