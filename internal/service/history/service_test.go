package history_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
	"github.com/vladislavdragonenkov/cafepos/internal/service/history"
	"github.com/vladislavdragonenkov/cafepos/internal/storage/memory"
)

const seedYAML = `
categories:
  - name: Coffee
    products:
      - name: Espresso
        price: "25.00"
      - name: Latte
        price: "35.00"
`

var moscow = time.FixedZone("MSK", 3*3600)

type fixture struct {
	store   *memory.Store
	txm     domain.TxManager
	service *history.Service
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	store := memory.NewStore()
	_, err := store.LoadCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	return &fixture{
		store: store,
		txm:   memory.NewTxManager(store),
		service: history.NewService(
			memory.NewHistoryRepository(store),
			history.WithLocation(moscow),
			history.WithClock(func() time.Time { return now }),
		),
	}
}

func (f *fixture) insert(t *testing.T, at time.Time, total string, items map[int64]int) int64 {
	t.Helper()

	ctx := context.Background()
	var id int64
	require.NoError(t, f.txm.WithinTx(ctx, func(tx domain.OrderTx) error {
		var err error
		id, err = tx.InsertOrder(ctx, domain.Order{CreatedAt: at, TotalAmount: decimal.RequireFromString(total)})
		if err != nil {
			return err
		}
		for productID, qty := range items {
			if _, err := tx.InsertOrderItem(ctx, domain.OrderItem{OrderID: id, ProductID: productID, Quantity: qty}); err != nil {
				return err
			}
		}
		return nil
	}))
	return id
}

func TestService_SumTotalForDate(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, moscow)
	f := newFixture(t, day.Add(20*time.Hour))

	f.insert(t, day.Add(9*time.Hour), "10", map[int64]int{1: 1})
	f.insert(t, day.Add(18*time.Hour), "5", map[int64]int{2: 1})
	// 23:30 по Москве 30 апреля: это 20:30 UTC, в 1 мая не попадает
	f.insert(t, day.Add(-30*time.Minute), "100", map[int64]int{1: 4})

	sum, err := f.service.SumTotalForDate(ctx, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(15)), "got %s", sum)

	// календарная дата берётся как есть, даже если значение в другом поясе
	sum, err = f.service.SumTotalForDate(ctx, time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(15)), "got %s", sum)

	today, err := f.service.SumTotalToday(ctx)
	require.NoError(t, err)
	assert.True(t, today.Equal(decimal.NewFromInt(15)))

	empty, err := f.service.SumTotalForDate(ctx, day.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestService_SumTotalForDate_DateOnlyWestOfUTC(t *testing.T) {
	ctx := context.Background()
	newYork := time.FixedZone("EST", -5*3600)

	store := memory.NewStore()
	_, err := store.LoadCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	f := &fixture{
		store: store,
		txm:   memory.NewTxManager(store),
		service: history.NewService(
			memory.NewHistoryRepository(store),
			history.WithLocation(newYork),
		),
	}

	f.insert(t, time.Date(2024, 4, 30, 12, 0, 0, 0, newYork), "7", map[int64]int{1: 1})
	f.insert(t, time.Date(2024, 5, 1, 12, 0, 0, 0, newYork), "40", map[int64]int{2: 1})

	date, err := time.Parse(time.DateOnly, "2024-05-01")
	require.NoError(t, err)

	sum, err := f.service.SumTotalForDate(ctx, date)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(40)), "got %s", sum)
}

func TestService_ListOrdersNewestFirstInLocation(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, base)

	first := f.insert(t, base, "25", map[int64]int{1: 1})
	second := f.insert(t, base.Add(time.Hour), "35", map[int64]int{2: 1})
	same := f.insert(t, base.Add(time.Hour), "50", map[int64]int{1: 2})

	orders, err := f.service.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []int64{same, second, first}, []int64{orders[0].ID, orders[1].ID, orders[2].ID})
	assert.Equal(t, moscow, orders[2].CreatedAt.Location())
	assert.Equal(t, "2024-05-01 12:00:00", orders[2].Timestamp())
}

func TestService_DeleteAndItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())

	id := f.insert(t, time.Now(), "85", map[int64]int{1: 2, 2: 1})

	items, err := f.service.GetOrderItems(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.OrderItemView{
		{ProductID: 1, ProductName: "Espresso", Quantity: 2},
		{ProductID: 2, ProductName: "Latte", Quantity: 1},
	}, items)

	require.NoError(t, f.service.DeleteOrder(ctx, id))
	orders, items2 := f.store.Counts()
	assert.Zero(t, orders)
	assert.Zero(t, items2, "no orphan items after delete")

	require.ErrorIs(t, f.service.DeleteOrder(ctx, id), domain.ErrOrderNotFound)
	_, err = f.service.GetOrderItems(ctx, id)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.False(t, domain.IsStorageError(err))
}

type brokenHistory struct{ err error }

func (b brokenHistory) ListOrders(context.Context) ([]domain.Order, error) { return nil, b.err }
func (b brokenHistory) SumTotalBetween(context.Context, time.Time, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, b.err
}
func (b brokenHistory) DeleteOrder(context.Context, int64) error { return b.err }
func (b brokenHistory) ListOrderItems(context.Context, int64) ([]domain.OrderItemView, error) {
	return nil, b.err
}

func TestService_StorageErrors(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk I/O error")
	svc := history.NewService(brokenHistory{err: cause})

	_, err := svc.ListOrders(ctx)
	assert.True(t, domain.IsStorageError(err))
	_, err = svc.SumTotalForDate(ctx, time.Now())
	assert.True(t, domain.IsStorageError(err))
	assert.True(t, domain.IsStorageError(svc.DeleteOrder(ctx, 1)))
	_, err = svc.GetOrderItems(ctx, 1)
	assert.ErrorIs(t, err, cause)
}
