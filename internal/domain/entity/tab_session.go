package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TabSession is a closed tab: one complete open-to-close visit
type TabSession struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	ClientID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"client_id"`
	OpenedAt  time.Time     `gorm:"not null;index" json:"opened_at"`
	ClosedAt  time.Time     `gorm:"not null" json:"closed_at"`
	Duration  time.Duration `gorm:"not null" json:"-"`
	CreatedAt time.Time     `json:"-"`

	// Relationships
	Purchases []Purchase `gorm:"foreignKey:SessionID" json:"purchases"`
}

// BeforeCreate generates a UUID before archiving a session
func (s *TabSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TabSession model
func (TabSession) TableName() string {
	return "tab_sessions"
}

// Total recomputes the session total from its purchases
func (s *TabSession) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Purchases {
		total = total.Add(p.AmountPaid)
	}
	return total
}

// MarshalJSON adds the duration in milliseconds and the recomputed total
func (s TabSession) MarshalJSON() ([]byte, error) {
	type Alias TabSession
	return json.Marshal(&struct {
		Alias
		DurationMs int64   `json:"duration_ms"`
		Total      float64 `json:"total"`
	}{
		Alias:      Alias(s),
		DurationMs: s.Duration.Milliseconds(),
		Total:      s.Total().InexactFloat64(),
	})
}

// Purchase is an immutable record of value paid for some quantity of a product in one settlement.
// Quantity is pro-rated when a line is split across payments; LineQuantity keeps the quantity of the
// line the fragment came from.
type Purchase struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SessionID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"session_id"`
	ClientID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	ProductID     uuid.UUID          `gorm:"type:uuid;index" json:"product_id"`
	Name          string             `gorm:"size:255;not null" json:"name"`
	Category      string             `gorm:"size:255;index" json:"category"`
	UnitPrice     decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"-"`
	ImageURL      *string            `gorm:"size:512" json:"image_url,omitempty"`
	Quantity      decimal.Decimal    `gorm:"type:decimal(12,4);not null" json:"-"`
	LineQuantity  int                `gorm:"not null" json:"line_quantity"`
	PurchasedAt   time.Time          `gorm:"not null;index" json:"purchased_at"`
	PaymentMethod enum.PaymentMethod `gorm:"not null;index" json:"payment_method"`
	AmountPaid    decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"-"`
}

// BeforeCreate generates a UUID before archiving a purchase
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Purchase model
func (Purchase) TableName() string {
	return "tab_purchases"
}

// MarshalJSON custom marshaler to render decimals as numbers
func (p Purchase) MarshalJSON() ([]byte, error) {
	type Alias Purchase
	return json.Marshal(&struct {
		Alias
		UnitPrice  float64 `json:"unit_price"`
		Quantity   float64 `json:"quantity"`
		AmountPaid float64 `json:"amount_paid"`
	}{
		Alias:      Alias(p),
		UnitPrice:  p.UnitPrice.InexactFloat64(),
		Quantity:   p.Quantity.InexactFloat64(),
		AmountPaid: p.AmountPaid.InexactFloat64(),
	})
}
