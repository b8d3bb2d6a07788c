package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

type catalogRepositoryInMemory struct {
	store *Store
}

// NewCatalogRepository возвращает in-memory чтение каталога поверх общего хранилища.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepositoryInMemory{store: store}
}

func (r *catalogRepositoryInMemory) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *catalogRepositoryInMemory) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if filter.Matches(p) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *catalogRepositoryInMemory) FindProductsByName(_ context.Context, name string) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Product, 0, 1)
	for _, p := range r.store.products {
		if p.Name == name {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddCategory заводит категорию. Каталогом управляют внешние экраны;
// здесь метод нужен для seed-данных и тестов.
func (s *Store) AddCategory(name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCategoryID++
	c := domain.Category{ID: s.nextCategoryID, Name: name}
	s.categories[c.ID] = c
	return c, nil
}

// AddProduct заводит товар в существующей категории.
func (s *Store) AddProduct(p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("product name is required")
	}
	if p.Price.LessThan(decimal.Zero) {
		return domain.Product{}, fmt.Errorf("product price must be non-negative")
	}
	// как NUMERIC(12,2) в postgres
	p.Price = p.Price.Round(moneyScale)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[p.CategoryID]; !ok {
		return domain.Product{}, fmt.Errorf("category %d does not exist", p.CategoryID)
	}
	s.nextProductID++
	p.ID = s.nextProductID
	s.products[p.ID] = p
	return p, nil
}

// RenameProduct меняет имя товара (имитирует правку из экрана управления товарами).
func (s *Store) RenameProduct(id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Name = name
	s.products[id] = p
	return nil
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
