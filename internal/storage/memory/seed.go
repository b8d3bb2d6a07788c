package memory

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
)

// CatalogSeed описывает стартовый каталог для in-memory драйвера.
//
//	categories:
//	  - name: Coffee
//	    products:
//	      - name: Espresso
//	        price: "25.00"
type CatalogSeed struct {
	Categories []SeedCategory `yaml:"categories"`
}

// SeedCategory: категория с товарами.
type SeedCategory struct {
	Name     string        `yaml:"name"`
	Products []SeedProduct `yaml:"products"`
}

// SeedProduct: товар категории. Цена задаётся строкой, чтобы не терять точность.
type SeedProduct struct {
	Name      string `yaml:"name"`
	Price     string `yaml:"price"`
	ImagePath string `yaml:"image_path"`
}

// LoadCatalogSeed читает YAML и заводит категории и товары в хранилище.
// Возвращает количество созданных товаров.
func (s *Store) LoadCatalogSeed(r io.Reader) (int, error) {
	var seed CatalogSeed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("decode catalog seed: %w", err)
	}

	created := 0
	for _, sc := range seed.Categories {
		category, err := s.AddCategory(sc.Name)
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
		for _, sp := range sc.Products {
			price, err := decimal.NewFromString(sp.Price)
			if err != nil {
				return created, fmt.Errorf("seed product %q: parse price %q: %w", sp.Name, sp.Price, err)
			}
			if _, err := s.AddProduct(domain.Product{
				Name:       sp.Name,
				Price:      price,
				CategoryID: category.ID,
				ImagePath:  sp.ImagePath,
			}); err != nil {
				return created, fmt.Errorf("seed product %q: %w", sp.Name, err)
			}
			created++
		}
	}

	return created, nil
}
