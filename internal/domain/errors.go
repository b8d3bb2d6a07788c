package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart возвращается при попытке оформить заказ из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductNotFound: товар с указанным идентификатором или именем не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductNameAmbiguous: по точному имени найдено больше одного товара.
	ErrProductNameAmbiguous = errors.New("product name is ambiguous")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrFilterConflict: фильтр по категории и поиск по имени заданы одновременно.
	ErrFilterConflict = errors.New("category filter and search term are mutually exclusive")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total amount must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrOutboxPublish: ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// StorageError описывает сбой хранилища: недоступность БД, ошибку чтения или записи.
// Транзакция к моменту возврата такой ошибки уже откачена.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage: " + e.Op
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WrapStorage оборачивает ошибку хранилища в StorageError.
// Доменные ошибки (not found, пустая корзина и т.п.) пробрасываются как есть.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError проверяет, является ли ошибка сбоем хранилища.
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// IsNotFound проверяет, что ссылка на товар или заказ не разрешилась.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrOrderNotFound)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrEmptyCart,
		ErrProductNotFound,
		ErrProductNameAmbiguous,
		ErrOrderNotFound,
		ErrFilterConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
