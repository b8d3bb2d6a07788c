package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
	"github.com/vladislavdragonenkov/cafepos/internal/service/notify"
)

func event(id int64) domain.OrderCompleted {
	return domain.OrderCompleted{OrderID: id, CommittedAt: time.Now()}
}

func TestNotifier_DeliversInOrder(t *testing.T) {
	n := notify.NewNotifier(nil)
	var calls []string

	n.Subscribe("history", func(_ context.Context, e domain.OrderCompleted) {
		calls = append(calls, "history")
	})
	n.Subscribe("totals", func(_ context.Context, e domain.OrderCompleted) {
		calls = append(calls, "totals")
	})

	require.True(t, n.Publish(context.Background(), event(1)))
	assert.Equal(t, []string{"history", "totals"}, calls)
	assert.Equal(t, []string{"history", "totals"}, n.Subscribers())
}

func TestNotifier_DropsDuplicates(t *testing.T) {
	n := notify.NewNotifier(nil)
	count := 0
	n.Subscribe("counter", func(context.Context, domain.OrderCompleted) { count++ })

	ctx := context.Background()
	assert.True(t, n.Publish(ctx, event(5)))
	assert.False(t, n.Publish(ctx, event(5)))
	assert.False(t, n.Publish(ctx, event(3)))
	assert.True(t, n.Publish(ctx, event(6)))
	assert.Equal(t, 2, count)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := notify.NewNotifier(nil)
	count := 0
	unsubscribe := n.Subscribe("counter", func(context.Context, domain.OrderCompleted) { count++ })

	n.Publish(context.Background(), event(1))
	unsubscribe()
	unsubscribe()
	n.Publish(context.Background(), event(2))

	assert.Equal(t, 1, count)
	assert.Empty(t, n.Subscribers())
}

func TestNotifier_PanickingObserverIsIsolated(t *testing.T) {
	n := notify.NewNotifier(nil)
	delivered := false

	n.Subscribe("broken", func(context.Context, domain.OrderCompleted) { panic("boom") })
	n.Subscribe("history", func(context.Context, domain.OrderCompleted) { delivered = true })

	require.NotPanics(t, func() { n.Publish(context.Background(), event(1)) })
	assert.True(t, delivered)
}

func TestNotifier_ObserverMaySubscribeDuringPublish(t *testing.T) {
	n := notify.NewNotifier(nil)
	late := 0

	n.Subscribe("registrar", func(context.Context, domain.OrderCompleted) {
		n.Subscribe("late", func(context.Context, domain.OrderCompleted) { late++ })
	})

	n.Publish(context.Background(), event(1))
	assert.Zero(t, late, "subscriber added during publish sees only later events")

	n.Publish(context.Background(), event(2))
	assert.Equal(t, 1, late)
}
