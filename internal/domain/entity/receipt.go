package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Receipt is the printable summary of one settled visit
type Receipt struct {
	Venue      string           `json:"venue"`
	ClientID   uuid.UUID        `json:"client_id"`
	ClientName string           `json:"client_name"`
	SessionID  uuid.UUID        `json:"session_id"`
	OpenedAt   time.Time        `json:"opened_at"`
	ClosedAt   time.Time        `json:"closed_at"`
	Lines      []ReceiptLine    `json:"lines"`
	Payments   []ReceiptPayment `json:"payments"`
	Total      decimal.Decimal  `json:"total"`
}

// ReceiptLine is one tab line with its payment fragments folded back together
type ReceiptLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReceiptPayment is the amount tendered with one method
type ReceiptPayment struct {
	Method enum.PaymentMethod `json:"method"`
	Amount decimal.Decimal    `json:"amount"`
}

// NewReceipt folds the session's purchases into lines, in settlement order, and
// totals the payments per method in the order they were first used.
func NewReceipt(venue string, client *Client, session *TabSession) *Receipt {
	r := &Receipt{
		Venue:      venue,
		ClientID:   client.ID,
		ClientName: client.Name,
		SessionID:  session.ID,
		OpenedAt:   session.OpenedAt,
		ClosedAt:   session.ClosedAt,
		Lines:      []ReceiptLine{},
		Payments:   []ReceiptPayment{},
		Total:      session.Total(),
	}

	lineIndex := map[string]int{}
	paymentIndex := map[enum.PaymentMethod]int{}
	for _, p := range session.Purchases {
		key := p.ProductID.String() + "\x00" + p.Name
		if i, ok := lineIndex[key]; ok {
			r.Lines[i].Amount = r.Lines[i].Amount.Add(p.AmountPaid)
		} else {
			lineIndex[key] = len(r.Lines)
			r.Lines = append(r.Lines, ReceiptLine{
				Name:      p.Name,
				Quantity:  p.LineQuantity,
				UnitPrice: p.UnitPrice,
				Amount:    p.AmountPaid,
			})
		}

		if i, ok := paymentIndex[p.PaymentMethod]; ok {
			r.Payments[i].Amount = r.Payments[i].Amount.Add(p.AmountPaid)
		} else {
			paymentIndex[p.PaymentMethod] = len(r.Payments)
			r.Payments = append(r.Payments, ReceiptPayment{Method: p.PaymentMethod, Amount: p.AmountPaid})
		}
	}
	return r
}
