package domain

import "github.com/shopspring/decimal"

// CartLine: строка корзины. Имя и цена фиксируются в момент добавления товара.
type CartLine struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Subtotal возвращает стоимость строки: цена × количество.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart накапливает позиции одного незавершённого заказа.
// Корзиной владеет один оператор, поэтому она не синхронизирована.
// Строки адресуются идентификатором товара: на товар приходится не более одной строки.
type Cart struct {
	lines []CartLine
	index map[int64]int
}

// NewCart создаёт пустую корзину.
func NewCart() *Cart {
	return &Cart{index: make(map[int64]int)}
}

// AddProduct добавляет товар: увеличивает количество существующей строки
// либо добавляет новую строку с количеством 1.
func (c *Cart) AddProduct(productID int64, name string, unitPrice decimal.Decimal) {
	if c.index == nil {
		c.index = make(map[int64]int)
	}
	if i, ok := c.index[productID]; ok {
		c.lines[i].Quantity++
		return
	}
	c.index[productID] = len(c.lines)
	c.lines = append(c.lines, CartLine{
		ProductID:   productID,
		ProductName: name,
		UnitPrice:   unitPrice,
		Quantity:    1,
	})
}

// AddCatalogProduct добавляет товар, полученный из каталога.
func (c *Cart) AddCatalogProduct(p Product) {
	c.AddProduct(p.ID, p.Name, p.Price)
}

// Increase увеличивает количество строки на 1.
func (c *Cart) Increase(productID int64) {
	if i, ok := c.index[productID]; ok {
		c.lines[i].Quantity++
	}
}

// Decrease уменьшает количество строки на 1; при достижении нуля строка удаляется.
func (c *Cart) Decrease(productID int64) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return
	}
	c.Remove(productID)
}

// Remove безусловно удаляет строку.
func (c *Cart) Remove(productID int64) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
}

// Clear удаляет все строки.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[int64]int)
}

// IsEmpty сообщает, что в корзине нет строк.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Len возвращает количество строк.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Line возвращает копию строки по идентификатору товара.
func (c *Cart) Line(productID int64) (CartLine, bool) {
	i, ok := c.index[productID]
	if !ok {
		return CartLine{}, false
	}
	return c.lines[i], true
}

// Lines возвращает копию строк в порядке добавления.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total пересчитывает сумму корзины при каждом вызове.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
