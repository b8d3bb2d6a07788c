package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository создаёт PostgreSQL-реализацию HistoryRepository.
func NewHistoryRepository(store *Store) domain.HistoryRepository {
	return &historyRepository{db: store.DB()}
}

func (r *historyRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, total_amount
		FROM orders
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CreatedAt, &o.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity
		FROM order_items
		ORDER BY order_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return orders, nil
}

func (r *historyRepository) SumTotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum orders total: %w", err)
	}
	return sum, nil
}

// DeleteOrder удаляет позиции и заказ в одной транзакции.
// Сначала позиции, затем сам заказ.
func (r *historyRepository) DeleteOrder(ctx context.Context, orderID int64) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete order tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback delete order tx: %w", rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for delete order: %w", err)
	}
	if affected == 0 {
		err = domain.ErrOrderNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete order tx: %w", err)
	}
	return nil
}

func (r *historyRepository) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItemView, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return nil, domain.ErrOrderNotFound
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, p.name, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order item views: %w", err)
	}
	defer rows.Close()

	result := make([]domain.OrderItemView, 0)
	for rows.Next() {
		var v domain.OrderItemView
		if err := rows.Scan(&v.ProductID, &v.ProductName, &v.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item view: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item views: %w", err)
	}

	return result, nil
}

var _ domain.HistoryRepository = (*historyRepository)(nil)
