package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name     string           `json:"name" binding:"max=255"`
	Category string           `json:"category" binding:"max=255"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	ImageURL *string          `json:"image_url" binding:"omitempty,max=512"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name     *string          `json:"name" binding:"omitempty,max=255"`
	Category *string          `json:"category" binding:"omitempty,max=255"`
	Price    *decimal.Decimal `json:"price"`
	ImageURL *string          `json:"image_url" binding:"omitempty,max=512"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
