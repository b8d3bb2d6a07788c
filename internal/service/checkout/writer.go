// Package checkout фиксирует корзину как заказ.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
	"github.com/vladislavdragonenkov/cafepos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/cafepos/internal/metrics"
)

// Publisher получает событие после успешной фиксации заказа.
type Publisher interface {
	Publish(ctx context.Context, event domain.OrderCompleted) bool
}

// Option настраивает Writer.
type Option func(*Writer)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLocation задаёт часовой пояс отметки времени заказа.
func WithLocation(loc *time.Location) Option {
	return func(w *Writer) {
		if loc != nil {
			w.loc = loc
		}
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics задаёт метрики оформления.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(w *Writer) {
		w.metrics = m
	}
}

// WithPublisher задаёт получателя событий об оформленных заказах.
func WithPublisher(p Publisher) Option {
	return func(w *Writer) {
		w.publisher = p
	}
}

// Writer записывает заказ и его позиции одной транзакцией.
type Writer struct {
	tx        domain.TxManager
	publisher Publisher
	metrics   *metrics.CheckoutMetrics
	logger    *log.Entry
	now       func() time.Time
	loc       *time.Location
}

// NewWriter создаёт Writer поверх менеджера транзакций.
func NewWriter(tx domain.TxManager, options ...Option) *Writer {
	w := &Writer{
		tx:     tx,
		logger: log.WithField("component", "order-writer"),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// Commit записывает корзину как заказ и возвращает его идентификатор.
// Корзина не изменяется. Любой сбой откатывает транзакцию целиком.
func (w *Writer) Commit(ctx context.Context, cart *domain.Cart) (int64, error) {
	if cart == nil || cart.IsEmpty() {
		w.metrics.RecordFailure(metrics.ReasonEmptyCart)
		return 0, domain.ErrEmptyCart
	}

	started := w.now()
	lines := cart.Lines()
	total := cart.Total()
	order := domain.OrderFromCart(lines, total, started.In(w.loc).Truncate(time.Second))

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		w.metrics.RecordFailure(metrics.ReasonInvalidOrder)
		return 0, errors.Join(errs...)
	}

	var orderID int64
	err := w.tx.WithinTx(ctx, func(tx domain.OrderTx) error {
		id, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			item.OrderID = id
			if _, err := tx.InsertOrderItem(ctx, item); err != nil {
				return err
			}
		}

		msg, err := completedOutboxMessage(id, order, lines)
		if err != nil {
			return err
		}
		if err := tx.EnqueueOutbox(ctx, msg); err != nil {
			return err
		}

		orderID = id
		return nil
	})
	if err != nil {
		err = domain.WrapStorage("commit order", err)
		w.metrics.RecordFailure(failureReason(err))
		w.logger.WithError(err).WithFields(log.Fields{
			"lines": len(lines),
			"total": total.String(),
		}).Error("order commit failed")
		return 0, err
	}

	amount, _ := total.Float64()
	w.metrics.RecordCommitted(amount, len(lines), w.now().Sub(started))
	w.logger.WithFields(log.Fields{
		"order_id": orderID,
		"lines":    len(lines),
		"total":    total.String(),
	}).Info("order committed")

	return orderID, nil
}

// Complete: действие оператора «Оформить»: Commit, очистка корзины и одно уведомление.
// При ошибке корзина остаётся нетронутой.
func (w *Writer) Complete(ctx context.Context, cart *domain.Cart) (int64, error) {
	orderID, err := w.Commit(ctx, cart)
	if err != nil {
		return 0, err
	}

	cart.Clear()

	if w.publisher != nil {
		w.publisher.Publish(ctx, domain.OrderCompleted{
			OrderID:     orderID,
			CommittedAt: w.now(),
		})
	}
	return orderID, nil
}

func completedOutboxMessage(orderID int64, order domain.Order, lines []domain.CartLine) (domain.OutboxMessage, error) {
	payload, err := json.Marshal(kafka.NewOrderCompletedEvent(orderID, order.CreatedAt, order.TotalAmount, lines))
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("marshal order completed event: %w", err)
	}
	return domain.OutboxMessage{
		AggregateType: domain.OutboxAggregateOrder,
		AggregateID:   strconv.FormatInt(orderID, 10),
		EventType:     domain.OutboxEventOrderCompleted,
		Payload:       payload,
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return metrics.ReasonProductNotFound
	case errors.Is(err, domain.ErrItemQtyInvalid):
		return metrics.ReasonInvalidOrder
	default:
		return metrics.ReasonStorage
	}
}
