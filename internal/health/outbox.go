package health

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// OutboxStatsSource отдаёт состояние backlog outbox.
type OutboxStatsSource interface {
	Stats(ctx context.Context) (domain.OutboxStats, error)
}

// OutboxBacklogChecker помечает сервис degraded, если события давно не уходят в брокер.
// Оформление заказов при этом продолжает работать.
type OutboxBacklogChecker struct {
	source OutboxStatsSource
	maxAge time.Duration
	now    func() time.Time
}

// NewOutboxBacklogChecker создаёт проверку с порогом возраста самой старой записи.
func NewOutboxBacklogChecker(source OutboxStatsSource, maxAge time.Duration) *OutboxBacklogChecker {
	return &OutboxBacklogChecker{source: source, maxAge: maxAge, now: time.Now}
}

// Check выполняет проверку.
func (c *OutboxBacklogChecker) Check(ctx context.Context) Check {
	start := c.now()
	stats, err := c.source.Stats(ctx)
	check := Check{Name: "outbox", Status: StatusHealthy}

	switch {
	case err != nil:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	case stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() && c.now().Sub(stats.OldestPendingAt) > c.maxAge:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("%d pending, oldest %s", stats.PendingCount, c.now().Sub(stats.OldestPendingAt).Truncate(time.Second))
	}
	check.DurationMs = c.now().Sub(start).Milliseconds()
	return check
}
