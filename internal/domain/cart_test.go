package domain_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCart_AddSameProductTwiceKeepsOneLine(t *testing.T) {
	cart := domain.NewCart()
	cart.AddProduct(1, "Espresso", price("25.00"))
	cart.AddProduct(1, "Espresso", price("25.00"))

	require.Equal(t, 1, cart.Len())
	line, ok := cart.Line(1)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, cart.Total().Equal(price("50")))
}

func TestCart_DecreaseAtOneRemovesLine(t *testing.T) {
	cart := domain.NewCart()
	cart.AddProduct(1, "Espresso", price("25"))
	cart.AddProduct(2, "Latte", price("35"))

	cart.Decrease(1)

	_, ok := cart.Line(1)
	assert.False(t, ok, "line with quantity 1 must be removed on decrease")
	require.Equal(t, 1, cart.Len())
	assert.Equal(t, int64(2), cart.Lines()[0].ProductID)
	assert.True(t, cart.Total().Equal(price("35")))
}

func TestCart_DecreaseKeepsLineAboveOne(t *testing.T) {
	cart := domain.NewCart()
	cart.AddProduct(1, "Espresso", price("25"))
	cart.Increase(1)
	cart.Increase(1)
	cart.Decrease(1)

	line, ok := cart.Line(1)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
}

func TestCart_RemoveAndClear(t *testing.T) {
	cart := domain.NewCart()
	cart.AddProduct(1, "Espresso", price("25"))
	cart.AddProduct(2, "Latte", price("35"))
	cart.AddProduct(3, "Tea", price("10"))

	cart.Remove(2)
	require.Equal(t, 2, cart.Len())
	lines := cart.Lines()
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, int64(3), lines[1].ProductID)

	// индекс после удаления из середины должен указывать на правильные строки
	cart.Increase(3)
	line, ok := cart.Line(3)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total().IsZero())
}

func TestCart_UnknownLineIsIgnored(t *testing.T) {
	cart := domain.NewCart()
	cart.AddProduct(1, "Espresso", price("25"))

	cart.Increase(42)
	cart.Decrease(42)
	cart.Remove(42)

	require.Equal(t, 1, cart.Len())
	assert.True(t, cart.Total().Equal(price("25")))
}

func TestCart_SnapshotOfNameAndPrice(t *testing.T) {
	cart := domain.NewCart()
	product := domain.Product{ID: 7, Name: "Mocha", Price: price("40.50"), CategoryID: 1}
	cart.AddCatalogProduct(product)

	product.Name = "Renamed"
	product.Price = price("99")
	cart.AddCatalogProduct(product)

	line, ok := cart.Line(7)
	require.True(t, ok)
	assert.Equal(t, "Mocha", line.ProductName)
	assert.True(t, line.UnitPrice.Equal(price("40.50")))
	assert.Equal(t, 2, line.Quantity)
}

func TestCart_LinesReturnsCopy(t *testing.T) {
	cart := domain.NewCart()
	cart.AddProduct(1, "Espresso", price("25"))

	lines := cart.Lines()
	lines[0].Quantity = 100

	line, _ := cart.Line(1)
	assert.Equal(t, 1, line.Quantity)
}

func TestCart_ZeroValueIsUsable(t *testing.T) {
	var cart domain.Cart
	assert.True(t, cart.IsEmpty())
	cart.AddProduct(1, "Espresso", price("25"))
	assert.Equal(t, 1, cart.Len())
}

func TestCart_TotalMatchesRecomputedSumForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(20240501))
	catalog := []domain.Product{
		{ID: 1, Name: "Espresso", Price: price("25.00")},
		{ID: 2, Name: "Latte", Price: price("35.00")},
		{ID: 3, Name: "Tea", Price: price("12.50")},
		{ID: 4, Name: "Cookie", Price: price("7.25")},
	}

	for run := 0; run < 50; run++ {
		cart := domain.NewCart()
		for step := 0; step < 100; step++ {
			p := catalog[rng.Intn(len(catalog))]
			switch rng.Intn(4) {
			case 0:
				cart.AddCatalogProduct(p)
			case 1:
				cart.Increase(p.ID)
			case 2:
				cart.Decrease(p.ID)
			case 3:
				if rng.Intn(5) == 0 {
					cart.Remove(p.ID)
				}
			}

			expected := decimal.Zero
			seen := map[int64]bool{}
			for _, line := range cart.Lines() {
				require.GreaterOrEqual(t, line.Quantity, 1)
				require.False(t, seen[line.ProductID], "duplicate line for product %d", line.ProductID)
				seen[line.ProductID] = true
				expected = expected.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}
			require.True(t, cart.Total().Equal(expected), "total %s, want %s", cart.Total(), expected)
		}
	}
}

func TestCart_EspressoLatteScenario(t *testing.T) {
	cart := domain.NewCart()
	cart.AddProduct(1, "Espresso", price("25.0"))
	cart.AddProduct(2, "Latte", price("35.0"))
	cart.Increase(1)

	assert.True(t, cart.Total().Equal(price("85.0")), "got %s", cart.Total())
}
