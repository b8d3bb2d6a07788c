package history

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// Snapshot: содержимое экрана истории на момент последнего обновления.
type Snapshot struct {
	Orders      []domain.Order
	TodayTotal  decimal.Decimal
	RefreshedAt time.Time
}

// View кэширует список заказов и сумму за сегодня.
// Обновляется после каждого оформления и удаления.
type View struct {
	service *Service

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewView создаёт пустое представление истории.
func NewView(service *Service) *View {
	return &View{service: service, snapshot: Snapshot{TodayTotal: decimal.Zero}}
}

// Refresh перечитывает заказы и сумму за сегодня.
// При ошибке предыдущий снимок сохраняется.
func (v *View) Refresh(ctx context.Context) error {
	orders, err := v.service.ListOrders(ctx)
	if err != nil {
		return err
	}
	total, err := v.service.SumTotalToday(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.snapshot = Snapshot{
		Orders:      orders,
		TodayTotal:  total,
		RefreshedAt: v.service.now(),
	}
	v.mu.Unlock()
	return nil
}

// Snapshot возвращает копию текущего снимка.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := v.snapshot
	s.Orders = append([]domain.Order(nil), v.snapshot.Orders...)
	return s
}

// DeleteOrder удаляет заказ и обновляет представление.
func (v *View) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := v.service.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	return v.Refresh(ctx)
}

// OnOrderCompleted: подписчик на событие оформления заказа.
func (v *View) OnOrderCompleted(ctx context.Context, event domain.OrderCompleted) {
	if err := v.Refresh(ctx); err != nil {
		v.service.logger.WithError(err).WithField("order_id", event.OrderID).Warn("history refresh after order failed")
	}
}
