package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт PostgreSQL-реализацию CatalogRepository.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepository{db: store.DB()}
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return result, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	const base = `SELECT id, name, price, category_id, image_path FROM products`

	var (
		query string
		args  []any
	)
	switch {
	case filter.CategoryID != 0:
		query = base + ` WHERE category_id = $1 ORDER BY id`
		args = append(args, filter.CategoryID)
	case filter.Search != "":
		// strpos вместо LIKE: пользовательский ввод не трактуется как шаблон
		query = base + ` WHERE strpos(lower(name), lower($1)) > 0 ORDER BY id`
		args = append(args, filter.Search)
	default:
		query = base + ` ORDER BY id`
	}

	return r.queryProducts(ctx, query, args...)
}

func (r *catalogRepository) FindProductsByName(ctx context.Context, name string) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.queryProducts(ctx, `
		SELECT id, name, price, category_id, image_path
		FROM products
		WHERE name = $1
		ORDER BY id
	`, name)
}

func (r *catalogRepository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p     domain.Product
			image sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ImagePath = image.String
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return result, nil
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)
