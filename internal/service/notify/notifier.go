// Package notify рассылает событие об оформленном заказе подписчикам.
package notify

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// Observer получает событие об оформленном заказе.
type Observer func(ctx context.Context, event domain.OrderCompleted)

type subscription struct {
	id       uint64
	name     string
	observer Observer
}

// Notifier синхронно вызывает подписчиков в порядке подписки.
// Событие по заказу с идентификатором не больше последнего опубликованного отбрасывается.
type Notifier struct {
	mu            sync.Mutex
	subscriptions []subscription
	nextID        uint64
	lastOrderID   int64

	logger *log.Entry
}

// NewNotifier создаёт Notifier без подписчиков.
func NewNotifier(logger *log.Entry) *Notifier {
	if logger == nil {
		logger = log.WithField("component", "order-notifier")
	}
	return &Notifier{logger: logger}
}

// Subscribe регистрирует подписчика и возвращает функцию отписки.
func (n *Notifier) Subscribe(name string, observer Observer) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.subscriptions = append(n.subscriptions, subscription{id: id, name: name, observer: observer})

	var once sync.Once
	return func() {
		once.Do(func() { n.unsubscribe(id) })
	}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subscriptions {
		if s.id == id {
			n.subscriptions = append(n.subscriptions[:i:i], n.subscriptions[i+1:]...)
			return
		}
	}
}

// Publish доставляет событие всем подписчикам до возврата.
// Возвращает false, если событие уже было опубликовано.
func (n *Notifier) Publish(ctx context.Context, event domain.OrderCompleted) bool {
	n.mu.Lock()
	if event.OrderID <= n.lastOrderID {
		n.mu.Unlock()
		n.logger.WithField("order_id", event.OrderID).Debug("duplicate order completed event dropped")
		return false
	}
	n.lastOrderID = event.OrderID
	subs := make([]subscription, len(n.subscriptions))
	copy(subs, n.subscriptions)
	n.mu.Unlock()

	for _, s := range subs {
		n.deliver(ctx, s, event)
	}
	return true
}

func (n *Notifier) deliver(ctx context.Context, s subscription, event domain.OrderCompleted) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.WithError(fmt.Errorf("panic: %v", r)).WithFields(log.Fields{
				"observer": s.name,
				"order_id": event.OrderID,
			}).Error("order completed observer panicked")
		}
	}()
	s.observer(ctx, event)
}

// Subscribers возвращает имена подписчиков в порядке подписки.
func (n *Notifier) Subscribers() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	names := make([]string, 0, len(n.subscriptions))
	for _, s := range n.subscriptions {
		names = append(names, s.name)
	}
	return names
}
