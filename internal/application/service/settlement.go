package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/pkg/money"
	"github.com/shopspring/decimal"
)

// ValidatePayments checks a payment plan before any allocation happens
func ValidatePayments(payments []entity.SplitPayment) error {
	if len(payments) == 0 {
		return entity.ErrNoPayments
	}
	for i, p := range payments {
		if !p.Method.Valid() {
			return fmt.Errorf("payment %d: unknown method %d: %w", i, int(p.Method), entity.ErrInvalidPayment)
		}
		if p.Amount.IsNegative() {
			return fmt.Errorf("payment %d: negative amount %s: %w", i, p.Amount, entity.ErrInvalidPayment)
		}
	}
	return nil
}

// paymentCursor walks the payment plan in order
type paymentCursor struct {
	payments  []entity.SplitPayment
	index     int
	remaining decimal.Decimal
	absorber  int
}

func newPaymentCursor(payments []entity.SplitPayment) *paymentCursor {
	absorber := len(payments) - 1
	for absorber > 0 && !payments[absorber].Amount.IsPositive() {
		absorber--
	}
	return &paymentCursor{payments: payments, remaining: payments[0].Amount, absorber: absorber}
}

// absorbing reports whether the cursor sits on the last payment that carries an amount
func (c *paymentCursor) absorbing() bool {
	return c.index >= c.absorber
}

// settle moves past exhausted payments. The absorbing payment is never skipped.
func (c *paymentCursor) settle() {
	for !c.absorbing() && money.Exhausted(c.remaining) {
		c.index++
		c.remaining = c.payments[c.index].Amount
	}
}

func (c *paymentCursor) current() entity.SplitPayment {
	return c.payments[c.index]
}

// take draws up to owed from the current payment. The last non-zero payment covers
// whatever is still owed, which absorbs a shortfall inside the tolerance.
func (c *paymentCursor) take(owed decimal.Decimal) decimal.Decimal {
	amount := decimal.Min(owed, c.remaining)
	if c.absorbing() {
		amount = owed
	}
	c.remaining = c.remaining.Sub(amount)
	return amount
}

// leftover is the value not drawn from the current and later payments
func (c *paymentCursor) leftover() decimal.Decimal {
	left := c.remaining
	for _, p := range c.payments[c.index+1:] {
		left = left.Add(p.Amount)
	}
	return left
}

// Allocate splits the value of every line across the payments in the order given.
// Each line yields one purchase per payment it draws from. Purchase quantities are
// pro-rated by amount, with the final fragment of a line taking the remainder.
func Allocate(items []entity.LineItem, payments []entity.SplitPayment, sessionID, clientID uuid.UUID, now time.Time) ([]entity.Purchase, error) {
	if err := ValidatePayments(payments); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	if !money.WithinTolerance(paid, total) {
		return nil, fmt.Errorf("paid %s against %s: %w", paid.StringFixed(2), total.StringFixed(2), entity.ErrInvalidPaymentSum)
	}

	cursor := newPaymentCursor(payments)
	purchases := make([]entity.Purchase, 0, len(items))

	fragment := func(item entity.LineItem, method entity.SplitPayment, amount, quantity decimal.Decimal) entity.Purchase {
		return entity.Purchase{
			ID:            uuid.New(),
			SessionID:     sessionID,
			ClientID:      clientID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			Category:      item.Category,
			UnitPrice:     item.UnitPrice,
			ImageURL:      item.ImageURL,
			Quantity:      quantity,
			LineQuantity:  item.Quantity,
			PurchasedAt:   now,
			PaymentMethod: method.Method,
			AmountPaid:    amount,
		}
	}

	for _, item := range items {
		owed := item.Total()
		quantityLeft := decimal.NewFromInt(int64(item.Quantity))

		if !owed.IsPositive() {
			cursor.settle()
			purchases = append(purchases, fragment(item, cursor.current(), decimal.Zero, quantityLeft))
			continue
		}

		for owed.IsPositive() {
			cursor.settle()
			payment := cursor.current()
			amount := cursor.take(owed)
			owed = owed.Sub(amount)

			quantity := quantityLeft
			if owed.IsPositive() {
				quantity = amount.Div(item.UnitPrice).Round(money.QuantityPlaces)
				quantityLeft = quantityLeft.Sub(quantity)
			}
			purchases = append(purchases, fragment(item, payment, amount, quantity))
		}
	}

	if left := cursor.leftover(); left.Abs().GreaterThanOrEqual(money.Tolerance) {
		return nil, fmt.Errorf("%s left unallocated: %w", left.StringFixed(2), entity.ErrInvalidPaymentSum)
	}

	return purchases, nil
}

// Settle closes the client's tab against the payment plan. On error the client is left untouched.
func Settle(client *entity.Client, payments []entity.SplitPayment, now time.Time) (*entity.TabSession, error) {
	if err := ValidatePayments(payments); err != nil {
		return nil, err
	}
	if !client.HasOpenTab() {
		return nil, entity.ErrEmptyTab
	}
	if client.TabOpenedAt == nil {
		return nil, entity.ErrMissingTabOpenTime
	}

	sessionID := uuid.New()
	purchases, err := Allocate(client.Items, payments, sessionID, client.ID, now)
	if err != nil {
		return nil, err
	}

	opened := *client.TabOpenedAt
	duration := now.Sub(opened)
	if duration < 0 {
		duration = 0
	}

	session := entity.TabSession{
		ID:        sessionID,
		ClientID:  client.ID,
		OpenedAt:  opened,
		ClosedAt:  now,
		Duration:  duration,
		CreatedAt: now,
		Purchases: purchases,
	}
	client.CloseTab(session)
	return &session, nil
}
