package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// historyRepositoryInMemory: in-memory реализация HistoryRepository.
type historyRepositoryInMemory struct {
	store *Store
}

// NewHistoryRepository возвращает in-memory репозиторий истории заказов.
func NewHistoryRepository(store *Store) domain.HistoryRepository {
	return &historyRepositoryInMemory{store: store}
}

// ListOrders возвращает заказы от новых к старым вместе с позициями.
func (r *historyRepositoryInMemory) ListOrders(_ context.Context) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byOrder := make(map[int64][]domain.OrderItem, len(r.store.orders))
	for _, item := range r.store.items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	result := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		items := byOrder[order.ID]
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		order.Items = items
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// SumTotalBetween суммирует заказы в полуинтервале [from, to).
func (r *historyRepositoryInMemory) SumTotalBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sum := decimal.Zero
	for _, order := range r.store.orders {
		if order.CreatedAt.Before(from) || !order.CreatedAt.Before(to) {
			continue
		}
		sum = sum.Add(order.TotalAmount)
	}
	return sum, nil
}

// DeleteOrder удаляет позиции и заказ под одной блокировкой.
func (r *historyRepositoryInMemory) DeleteOrder(_ context.Context, orderID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	for id, item := range r.store.items {
		if item.OrderID == orderID {
			delete(r.store.items, id)
		}
	}
	delete(r.store.orders, orderID)
	return nil
}

// ListOrderItems возвращает позиции заказа с текущими именами товаров.
func (r *historyRepositoryInMemory) ListOrderItems(_ context.Context, orderID int64) ([]domain.OrderItemView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.orders[orderID]; !ok {
		return nil, domain.ErrOrderNotFound
	}

	items := make([]domain.OrderItem, 0)
	for _, item := range r.store.items {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	result := make([]domain.OrderItemView, 0, len(items))
	for _, item := range items {
		product, ok := r.store.products[item.ProductID]
		if !ok {
			// как INNER JOIN: позиция без товара не попадает в выборку
			continue
		}
		result = append(result, domain.OrderItemView{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
		})
	}
	return result, nil
}

var _ domain.HistoryRepository = (*historyRepositoryInMemory)(nil)
