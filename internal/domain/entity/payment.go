package entity

import (
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// SplitPayment is a partial payment toward a tab. Payments are consumed in the order supplied.
type SplitPayment struct {
	Method enum.PaymentMethod
	Amount decimal.Decimal
}
