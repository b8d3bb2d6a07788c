package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

type txManager struct {
	db *sql.DB
}

// NewTxManager создаёт TxManager поверх пула подключений Store.
func NewTxManager(store *Store) domain.TxManager {
	return &txManager{db: store.DB()}
}

// WithinTx открывает транзакцию, выполняет fn и фиксирует результат.
// Любая ошибка или паника внутри fn откатывает все записи.
func (m *txManager) WithinTx(ctx context.Context, fn func(tx domain.OrderTx) error) (err error) {
	sqlTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback order tx: %w", rbErr))
			}
		}
	}()

	if err = fn(&orderTx{tx: sqlTx}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

type orderTx struct {
	tx *sql.Tx
}

func (t *orderTx) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var id int64
	if err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (created_at, total_amount)
		VALUES ($1, $2)
		RETURNING id
	`, order.CreatedAt, order.TotalAmount).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (t *orderTx) InsertOrderItem(ctx context.Context, item domain.OrderItem) (int64, error) {
	if item.Quantity <= 0 {
		return 0, domain.ErrItemQtyInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`, item.OrderID, item.ProductID, item.Quantity).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert order item (product %d): %w", item.ProductID, domain.ErrProductNotFound)
		}
		return 0, fmt.Errorf("insert order item: %w", err)
	}
	return id, nil
}

func (t *orderTx) EnqueueOutbox(ctx context.Context, msg domain.OutboxMessage) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$7)
	`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("outbox message %s already exists: %w", msg.ID, err)
		}
		return fmt.Errorf("enqueue outbox message: %w", err)
	}
	return nil
}

var _ domain.TxManager = (*txManager)(nil)
