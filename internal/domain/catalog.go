package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category: категория каталога. Каталог для ядра только читается.
type Category struct {
	ID   int64
	Name string
}

// Product: товар каталога. Имя не обязано быть уникальным.
type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	CategoryID int64
	// ImagePath может быть пустым.
	ImagePath string
}

// ProductFilter выбирает товары каталога: все, по категории или по подстроке имени.
// Категория и поиск взаимоисключающие.
type ProductFilter struct {
	CategoryID int64
	Search     string
}

// AllProducts возвращает фильтр без ограничений.
func AllProducts() ProductFilter {
	return ProductFilter{}
}

// ByCategory возвращает фильтр по идентификатору категории.
func ByCategory(categoryID int64) ProductFilter {
	return ProductFilter{CategoryID: categoryID}
}

// BySearch возвращает фильтр по подстроке имени без учёта регистра.
func BySearch(term string) ProductFilter {
	return ProductFilter{Search: term}
}

// Normalize обрезает пробелы в поисковой строке и проверяет взаимоисключаемость.
// Пустая строка поиска означает «все товары».
func (f ProductFilter) Normalize() (ProductFilter, error) {
	f.Search = strings.TrimSpace(f.Search)
	if f.CategoryID != 0 && f.Search != "" {
		return ProductFilter{}, ErrFilterConflict
	}
	return f, nil
}

// Matches проверяет товар на соответствие уже нормализованному фильтру.
func (f ProductFilter) Matches(p Product) bool {
	switch {
	case f.CategoryID != 0:
		return p.CategoryID == f.CategoryID
	case f.Search != "":
		return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search))
	default:
		return true
	}
}
