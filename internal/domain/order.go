package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout: формат отметки времени заказа "YYYY-MM-DD HH:MM:SS".
const TimestampLayout = "2006-01-02 15:04:05"

// OrderItem представляет одну позицию зафиксированного заказа.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
}

// Order: заголовок зафиксированного заказа. Сумма после фиксации не меняется.
type Order struct {
	ID          int64
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
	Items       []OrderItem
}

// Timestamp форматирует время заказа в его собственной локации.
func (o Order) Timestamp() string {
	return o.CreatedAt.Format(TimestampLayout)
}

// ValidateInvariants проверяет заказ перед записью и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalAmount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
	}

	return errs
}

// OrderItemView: позиция заказа для истории. Имя товара берётся из каталога
// в момент чтения, а не фиксируется при оформлении.
type OrderItemView struct {
	ProductID   int64
	ProductName string
	Quantity    int
}

// OrderCompleted: событие успешного оформления заказа.
type OrderCompleted struct {
	OrderID     int64
	CommittedAt time.Time
}

// OrderFromCart строит заказ из строк корзины. Идентификатор товара берётся
// из строки, повторного поиска по имени нет.
func OrderFromCart(lines []CartLine, total decimal.Decimal, createdAt time.Time) Order {
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return Order{
		CreatedAt:   createdAt,
		TotalAmount: total,
		Items:       items,
	}
}
