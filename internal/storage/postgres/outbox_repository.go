package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

const defaultOutboxPullLimit = 100

// Статусы записи outbox_messages (CHECK в 0002_outbox.up.sql).
const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

type outboxRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewOutboxRepository создаёт PostgreSQL-реализацию OutboxRepository.
// Записи создаёт OrderTx при оформлении заказа; здесь выборка для воркера и смена статуса.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return &outboxRepository{db: store.DB(), now: time.Now}
}

// PullPending отдаёт самые старые pending-события оформленных заказов.
func (r *outboxRepository) PullPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = defaultOutboxPullLimit
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM outbox_messages
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
	`, outboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pull pending order events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.OutboxMessage, 0, limit)
	for rows.Next() {
		var event domain.OutboxMessage
		if err := rows.Scan(&event.ID, &event.AggregateType, &event.AggregateID, &event.EventType, &event.Payload); err != nil {
			return nil, fmt.Errorf("scan order event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order events: %w", err)
	}
	return events, nil
}

// Stats считает pending и failed одним проходом; возраст backlog берётся по pending.
func (r *outboxRepository) Stats(ctx context.Context) (domain.OutboxStats, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			MIN(created_at) FILTER (WHERE status = $1)
		FROM outbox_messages
	`, outboxStatusPending, outboxStatusFailed).Scan(&stats.PendingCount, &stats.FailedCount, &oldest)
	if err != nil {
		return domain.OutboxStats{}, fmt.Errorf("order events backlog: %w", err)
	}
	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}
	return stats, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.resolve(ctx, id, outboxStatusSent)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.resolve(ctx, id, outboxStatusFailed)
}

// resolve переводит pending-запись в конечный статус. Уже отправленную или
// проваленную запись повторно не трогает: это ErrOutboxPublish.
func (r *outboxRepository) resolve(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var attempts int
	err := r.db.QueryRowContext(ctx, `
		UPDATE outbox_messages
		SET status = $2,
		    attempt_count = attempt_count + 1,
		    updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING attempt_count
	`, id, status, r.now().UTC(), outboxStatusPending).Scan(&attempts)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("order event %s is not pending: %w", id, domain.ErrOutboxPublish)
	case err != nil:
		return fmt.Errorf("mark order event %s as %s: %w", id, status, err)
	}
	return nil
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
