// Package catalog отдаёт каталог категорий и товаров для экрана продаж.
package catalog

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// Reader: read-only доступ к каталогу.
type Reader struct {
	repo   domain.CatalogRepository
	logger *log.Entry
}

// NewReader создаёт Reader поверх репозитория каталога.
func NewReader(repo domain.CatalogRepository, logger *log.Entry) *Reader {
	if logger == nil {
		logger = log.WithField("component", "catalog-reader")
	}
	return &Reader{repo: repo, logger: logger}
}

// ListCategories возвращает все категории.
func (r *Reader) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := r.repo.ListCategories(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("list categories failed")
		return nil, domain.WrapStorage("list categories", err)
	}
	return categories, nil
}

// ListProducts возвращает товары по фильтру. Пустая строка поиска означает все товары.
func (r *Reader) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	products, err := r.repo.ListProducts(ctx, filter)
	if err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"category_id": filter.CategoryID,
			"search":      filter.Search,
		}).Warn("list products failed")
		return nil, domain.WrapStorage("list products", err)
	}
	return products, nil
}

// FindProductIDByName ищет товар по точному имени.
// Имена не уникальны: при нескольких совпадениях возвращается ErrProductNameAmbiguous.
func (r *Reader) FindProductIDByName(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, domain.ErrProductNotFound
	}

	products, err := r.repo.FindProductsByName(ctx, name)
	if err != nil {
		r.logger.WithError(err).WithField("name", name).Warn("find product by name failed")
		return 0, domain.WrapStorage("find product by name", err)
	}

	switch len(products) {
	case 0:
		return 0, domain.ErrProductNotFound
	case 1:
		return products[0].ID, nil
	default:
		r.logger.WithFields(log.Fields{
			"name":    name,
			"matches": len(products),
		}).Debug("product name is ambiguous")
		return 0, domain.ErrProductNameAmbiguous
	}
}
