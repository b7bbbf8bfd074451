package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one distinct product on a client's open tab.
// Name, category, price and image are snapshotted from the catalog when the line is created.
type LineItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"-"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"image_url,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

// Total returns unit price times quantity
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// matches reports whether the line holds the given product
func (li LineItem) matches(p Product) bool {
	if li.ProductID != uuid.Nil && p.ID != uuid.Nil {
		return li.ProductID == p.ID
	}
	return li.Name == p.Name
}

// MarshalJSON custom marshaler to render amounts as numbers
func (li LineItem) MarshalJSON() ([]byte, error) {
	type Alias LineItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(li),
		UnitPrice: li.UnitPrice.InexactFloat64(),
		Total:     li.Total().InexactFloat64(),
	})
}
