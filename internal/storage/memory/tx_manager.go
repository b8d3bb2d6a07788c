package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

type txManagerInMemory struct {
	store *Store
}

// NewTxManager возвращает in-memory TxManager. Записи копятся в буфере
// и применяются к хранилищу только после успешного завершения fn.
func NewTxManager(store *Store) domain.TxManager {
	return &txManagerInMemory{store: store}
}

func (m *txManagerInMemory) WithinTx(ctx context.Context, fn func(tx domain.OrderTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	tx := &orderTxInMemory{
		store:       m.store,
		nextOrderID: m.store.nextOrderID,
		nextItemID:  m.store.nextItemID,
	}

	// При ошибке или панике буфер просто отбрасывается: хранилище не тронуто.
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

// orderTxInMemory: буфер одной транзакции. Вызывается под эксклюзивной блокировкой хранилища.
type orderTxInMemory struct {
	store *Store

	orders []domain.Order
	items  []domain.OrderItem
	outbox []domain.OutboxMessage

	nextOrderID int64
	nextItemID  int64
}

func (tx *orderTxInMemory) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	tx.nextOrderID++
	order.ID = tx.nextOrderID
	order.Items = nil
	order.TotalAmount = order.TotalAmount.Round(moneyScale)
	tx.orders = append(tx.orders, order)
	return order.ID, nil
}

func (tx *orderTxInMemory) InsertOrderItem(ctx context.Context, item domain.OrderItem) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if item.Quantity <= 0 {
		return 0, domain.ErrItemQtyInvalid
	}
	if _, ok := tx.store.products[item.ProductID]; !ok {
		return 0, fmt.Errorf("insert order item (product %d): %w", item.ProductID, domain.ErrProductNotFound)
	}
	if !tx.hasOrder(item.OrderID) {
		return 0, fmt.Errorf("insert order item: %w", domain.ErrOrderNotFound)
	}
	tx.nextItemID++
	item.ID = tx.nextItemID
	tx.items = append(tx.items, item)
	return item.ID, nil
}

func (tx *orderTxInMemory) EnqueueOutbox(ctx context.Context, msg domain.OutboxMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if _, exists := tx.store.outbox[msg.ID]; exists {
		return fmt.Errorf("outbox message %s already exists", msg.ID)
	}
	tx.outbox = append(tx.outbox, msg)
	return nil
}

func (tx *orderTxInMemory) hasOrder(id int64) bool {
	if _, ok := tx.store.orders[id]; ok {
		return true
	}
	for _, o := range tx.orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (tx *orderTxInMemory) apply() {
	s := tx.store
	for _, o := range tx.orders {
		s.orders[o.ID] = o
	}
	for _, item := range tx.items {
		s.items[item.ID] = item
	}
	now := time.Now().UTC()
	for _, msg := range tx.outbox {
		s.outbox[msg.ID] = &outboxRecord{
			msg:       msg,
			status:    "pending",
			createdAt: now,
			updatedAt: now,
		}
	}
	s.nextOrderID = tx.nextOrderID
	s.nextItemID = tx.nextItemID
}

var _ domain.TxManager = (*txManagerInMemory)(nil)
