package database

import (
	"context"
	"time"

	"github.com/sangkips/bartab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCatalog is the starter menu loaded into an empty catalog
func DefaultCatalog() []entity.Product {
	items := []struct {
		name, category, price string
	}{
		{"Craft IPA", "Beer", "7.50"},
		{"Pretzel Bites", "Snack", "5.00"},
		{"Stout", "Beer", "8.00"},
		{"Lager", "Beer", "6.00"},
		{"Chicken Wings", "Food", "12.00"},
	}

	products := make([]entity.Product, 0, len(items))
	for _, it := range items {
		products = append(products, entity.Product{
			Name:     it.name,
			Category: it.category,
			Price:    decimal.RequireFromString(it.price),
		})
	}
	return products
}

// SeedCatalog adds every default product whose name is not already in the catalog
func SeedCatalog(ctx context.Context, products domainRepo.ProductRepository, now time.Time) error {
	seeded := 0
	for _, p := range DefaultCatalog() {
		existing, err := products.GetByName(ctx, p.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		p.CreatedAt = now
		p.UpdatedAt = now
		if err := products.Create(ctx, &p); err != nil {
			return err
		}
		seeded++
	}

	zap.L().Info("catalog seeded", zap.Int("products", seeded))
	return nil
}
