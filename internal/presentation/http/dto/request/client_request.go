package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	Name string `json:"name" binding:"max=255"`
}

// ClientFilterRequest represents client filter parameters
type ClientFilterRequest struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// AddItemRequest puts one unit of a catalog product on a tab
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// PaymentRequest is one split payment. Method accepts a display name ("Credit Card") or its number.
type PaymentRequest struct {
	Method *enum.PaymentMethod `json:"method" binding:"required"`
	Amount *decimal.Decimal    `json:"amount" binding:"required"`
}

// SettleRequest is the ordered payment plan for a tab
type SettleRequest struct {
	Payments []PaymentRequest `json:"payments" binding:"dive"`
}

// SplitPayments converts the request into domain payments, keeping order
func (r *SettleRequest) SplitPayments() []entity.SplitPayment {
	payments := make([]entity.SplitPayment, 0, len(r.Payments))
	for _, p := range r.Payments {
		payments = append(payments, entity.SplitPayment{Method: *p.Method, Amount: *p.Amount})
	}
	return payments
}

// MergeClientRequest names the client that absorbs the one in the path
type MergeClientRequest struct {
	DestinationID uuid.UUID `json:"destination_id" binding:"required"`
}
