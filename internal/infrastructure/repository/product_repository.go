package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"github.com/sangkips/bartab-api/pkg/pagination"
)

type productRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]entity.Product
}

// NewProductRepository creates the in-memory catalog
func NewProductRepository() domainRepo.ProductRepository {
	return &productRepository{products: make(map[uuid.UUID]entity.Product)}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return apperror.NewConflictError("Product already exists")
	}
	r.products[product.ID] = *product
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// GetByName matches case-insensitively
func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.products {
		if strings.EqualFold(product.Name, name) {
			p := product
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return apperror.NewNotFoundError("Product")
	}
	r.products[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	search := strings.ToLower(strings.TrimSpace(params.Search))

	r.mu.RLock()
	products := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		if params.Category != "" && !strings.EqualFold(p.Category, params.Category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		products = append(products, p)
	}
	r.mu.RUnlock()

	sort.Slice(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		return products[i].Name < products[j].Name
	})

	return pagination.Window(products, params.Pagination), int64(len(products)), nil
}
