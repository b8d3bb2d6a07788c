package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// moneyScale: знаков после запятой у цен и сумм, как в схеме postgres.
const moneyScale = 2

// Store: общее in-memory хранилище для локальной разработки и тестов.
// Все таблицы защищены одним мьютексом, чтобы транзакция видела согласованный снимок.
type Store struct {
	mu sync.RWMutex

	categories map[int64]domain.Category
	products   map[int64]domain.Product
	orders     map[int64]domain.Order
	items      map[int64]domain.OrderItem
	outbox     map[string]*outboxRecord

	nextCategoryID int64
	nextProductID  int64
	nextOrderID    int64
	nextItemID     int64
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		orders:     make(map[int64]domain.Order),
		items:      make(map[int64]domain.OrderItem),
		outbox:     make(map[string]*outboxRecord),
	}
}

// Counts возвращает количество заказов и позиций (используется в тестах и health-проверках).
func (s *Store) Counts() (orders, items int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders), len(s.items)
}

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	status     string
	attemptCnt int
	createdAt  time.Time
	updatedAt  time.Time
}
