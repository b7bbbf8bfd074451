package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "15.00", "15.00", true},
		{"half cent short", "15.00", "14.995", true},
		{"one cent short", "15.00", "14.99", false},
		{"one cent over", "20.00", "20.01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithinTolerance(decimal.RequireFromString(tt.a), decimal.RequireFromString(tt.b))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExhausted(t *testing.T) {
	assert.True(t, Exhausted(decimal.Zero))
	assert.True(t, Exhausted(decimal.RequireFromString("0.001")))
	assert.False(t, Exhausted(decimal.RequireFromString("0.002")))
}
