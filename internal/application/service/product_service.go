package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"github.com/sangkips/bartab-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles catalog operations
type ProductService struct {
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	logger      *zap.Logger
	clock       Clock
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, clientRepo repository.ClientRepository, logger *zap.Logger, clock Clock) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		clientRepo:  clientRepo,
		logger:      logger,
		clock:       clock,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name     string
	Category string
	Price    decimal.Decimal
	ImageURL *string
}

func validateProduct(name, category string, price decimal.Decimal) error {
	var fieldErrors []apperror.FieldError
	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if category == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "category", Message: "Category is required"})
	}
	if price.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "Price must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateProduct adds a product to the catalog
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)
	if err := validateProduct(name, category, input.Price); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product name already exists")
	}

	now := s.clock.now()
	product := &entity.Product{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		Price:     input.Price,
		ImageURL:  input.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProductsInput represents the list products input
type ListProductsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Category   string
}

// ListProducts lists the catalog grouped by category
func (s *ProductService) ListProducts(ctx context.Context, input *ListProductsInput) (*pagination.PaginatedResult[entity.Product], error) {
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	products, total, err := s.productRepo.List(ctx, &repository.ProductFilterParams{
		Pagination: params,
		Search:     input.Search,
		Category:   input.Category,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input. Nil fields are left unchanged.
type UpdateProductInput struct {
	ID       uuid.UUID
	Name     *string
	Category *string
	Price    *decimal.Decimal
	ImageURL *string
}

// UpdateProductResult is the updated product and how many open tab lines picked up the change
type UpdateProductResult struct {
	Product      *entity.Product `json:"product"`
	LinesUpdated int             `json:"lines_updated"`
}

// UpdateProduct edits a catalog entry and pushes the new snapshot into open tabs.
// Settled purchases keep the values they were settled at.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*UpdateProductResult, error) {
	product, err := s.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if !strings.EqualFold(name, product.Name) {
			existing, err := s.productRepo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != product.ID {
				return nil, apperror.NewConflictError("Product name already exists")
			}
		}
		product.Name = name
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if err := validateProduct(product.Name, product.Category, product.Price); err != nil {
		return nil, err
	}

	product.UpdatedAt = s.clock.now()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	lines, err := s.propagate(ctx, *product)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated",
		zap.String("product_id", product.ID.String()),
		zap.String("price", product.Price.StringFixed(2)),
		zap.Int("open_lines_updated", lines),
	)
	return &UpdateProductResult{Product: product, LinesUpdated: lines}, nil
}

// propagate rewrites open tab lines that reference the product. Every client is
// visited under its lock; the snapshot may predate a line added concurrently.
func (s *ProductService) propagate(ctx context.Context, product entity.Product) (int, error) {
	clients, err := s.clientRepo.All(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, c := range clients {
		changed := 0
		_, err := s.clientRepo.Update(ctx, c.ID, func(client *entity.Client) error {
			changed = client.ApplyProduct(product)
			return nil
		})
		if err != nil {
			return total, err
		}
		total += changed
	}
	return total, nil
}

// DeleteProduct removes a product from the catalog. Lines already on tabs keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}
