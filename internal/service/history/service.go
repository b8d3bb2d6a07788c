// Package history отвечает на запросы к зафиксированным заказам.
package history

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// Service читает и удаляет зафиксированные заказы.
type Service struct {
	repo   domain.HistoryRepository
	loc    *time.Location
	now    func() time.Time
	logger *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithLocation задаёт часовой пояс, в котором считаются календарные дни.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService создаёт сервис истории заказов.
func NewService(repo domain.HistoryRepository, options ...Option) *Service {
	s := &Service{
		repo:   repo,
		loc:    time.Local,
		now:    time.Now,
		logger: log.WithField("component", "history"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// ListOrders возвращает заказы от новых к старым. Время приводится к часовому поясу сервиса.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("list orders failed")
		return nil, domain.WrapStorage("list orders", err)
	}
	for i := range orders {
		orders[i].CreatedAt = orders[i].CreatedAt.In(s.loc)
	}
	return orders, nil
}

// SumTotalForDate суммирует заказы за календарный день date. Без заказов: 0.
// Берётся дата из date как есть (date.Date()), границы дня строятся в поясе сервиса:
// значение из time.Parse(time.DateOnly, ...) означает именно этот день.
func (s *Service) SumTotalForDate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	from, to := s.dayBounds(date)
	sum, err := s.repo.SumTotalBetween(ctx, from, to)
	if err != nil {
		s.logger.WithError(err).WithField("date", from.Format(time.DateOnly)).Warn("sum orders failed")
		return decimal.Zero, domain.WrapStorage("sum orders for date", err)
	}
	return sum, nil
}

// SumTotalToday суммирует заказы за текущий день.
func (s *Service) SumTotalToday(ctx context.Context) (decimal.Decimal, error) {
	return s.SumTotalForDate(ctx, s.now().In(s.loc))
}

// DeleteOrder удаляет заказ вместе с позициями.
func (s *Service) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		if !domain.IsNotFound(err) {
			s.logger.WithError(err).WithField("order_id", orderID).Warn("delete order failed")
		}
		return domain.WrapStorage("delete order", err)
	}
	s.logger.WithField("order_id", orderID).Info("order deleted")
	return nil
}

// GetOrderItems возвращает позиции заказа с текущими именами товаров.
func (s *Service) GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItemView, error) {
	items, err := s.repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, domain.WrapStorage("get order items", err)
	}
	return items, nil
}

// dayBounds возвращает полуинтервал [начало дня, начало следующего дня) в часовом поясе сервиса.
func (s *Service) dayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 0, 1)
}
