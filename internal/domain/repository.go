package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogRepository описывает чтение каталога. Ядро никогда не пишет категории и товары.
type CatalogRepository interface {
	// ListCategories возвращает все категории.
	ListCategories(ctx context.Context) ([]Category, error)
	// ListProducts возвращает товары по нормализованному фильтру.
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	// FindProductsByName возвращает товары с точно совпадающим именем.
	FindProductsByName(ctx context.Context, name string) ([]Product, error)
}

// OrderTx: операции записи, доступные внутри одной транзакции оформления заказа.
type OrderTx interface {
	// InsertOrder сохраняет заголовок заказа и возвращает выданный идентификатор.
	InsertOrder(ctx context.Context, order Order) (int64, error)
	// InsertOrderItem сохраняет позицию; ErrProductNotFound, если товара нет.
	InsertOrderItem(ctx context.Context, item OrderItem) (int64, error)
	// EnqueueOutbox кладёт событие в outbox в той же транзакции.
	EnqueueOutbox(ctx context.Context, msg OutboxMessage) error
}

// TxManager скрывает begin/commit/rollback от сервисов.
// Если fn вернула ошибку (или запаниковала), все записи откатываются.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx OrderTx) error) error
}

// HistoryRepository хранит зафиксированные заказы.
type HistoryRepository interface {
	// ListOrders возвращает заказы от новых к старым.
	ListOrders(ctx context.Context) ([]Order, error)
	// SumTotalBetween суммирует заказы с from <= created_at < to.
	SumTotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	// DeleteOrder удаляет заказ вместе с позициями одной транзакцией.
	DeleteOrder(ctx context.Context, orderID int64) error
	// ListOrderItems возвращает позиции с текущими именами товаров.
	ListOrderItems(ctx context.Context, orderID int64) ([]OrderItemView, error)
}
