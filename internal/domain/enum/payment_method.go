package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentMethod represents how a split payment was tendered
type PaymentMethod int

const (
	PaymentMethodCash       PaymentMethod = 0
	PaymentMethodCreditCard PaymentMethod = 1
	PaymentMethodDebitCard  PaymentMethod = 2
)

var paymentMethodNames = [...]string{"Cash", "Credit Card", "Debit Card"}

// PaymentMethods lists every supported method in display order
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard}
}

func (m PaymentMethod) String() string {
	if !m.Valid() {
		return fmt.Sprintf("PaymentMethod(%d)", int(m))
	}
	return paymentMethodNames[m]
}

// Valid reports whether m is one of the known methods
func (m PaymentMethod) Valid() bool {
	return m >= PaymentMethodCash && int(m) < len(paymentMethodNames)
}

// ParsePaymentMethod parses a display name such as "Credit Card"
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for i, name := range paymentMethodNames {
		if name == s {
			return PaymentMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment method %q", s)
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !PaymentMethod(i).Valid() {
			return fmt.Errorf("unknown payment method %d", i)
		}
		*m = PaymentMethod(i)
		return nil
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalCSV renders the method for CSV exports
func (m PaymentMethod) MarshalCSV() (string, error) {
	return m.String(), nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
