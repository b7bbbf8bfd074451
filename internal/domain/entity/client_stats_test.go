package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visit(closedAt time.Time, duration time.Duration, purchases ...Purchase) TabSession {
	return TabSession{
		ID:        uuid.New(),
		OpenedAt:  closedAt.Add(-duration),
		ClosedAt:  closedAt,
		Duration:  duration,
		Purchases: purchases,
	}
}

func bought(category string, quantity, paid string) Purchase {
	return Purchase{
		ID:            uuid.New(),
		Name:          category + " item",
		Category:      category,
		Quantity:      decimal.RequireFromString(quantity),
		AmountPaid:    decimal.RequireFromString(paid),
		PaymentMethod: enum.PaymentMethodCash,
	}
}

func TestClient_MedianVisitDuration(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
	}{
		{"no visits", nil, 0},
		{"odd count", []time.Duration{30 * time.Minute, 10 * time.Minute, 20 * time.Minute}, 20 * time.Minute},
		{"even count", []time.Duration{10 * time.Minute, 20 * time.Minute}, 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("Eleanor", day)
			for i, d := range tt.durations {
				c.History = append(c.History, visit(day.Add(time.Duration(i)*time.Hour), d))
			}
			assert.Equal(t, tt.want, c.MedianVisitDuration())
		})
	}
}

func TestClient_FavoriteCategory(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	c := NewClient("Eleanor", day)
	assert.Nil(t, c.FavoriteCategory())

	c.History = append(c.History,
		visit(day, time.Hour, bought("Snack", "1", "5"), bought("Beer", "0.5", "3.75")),
		visit(day.Add(time.Hour), time.Hour, bought("Beer", "0.5", "3.75")),
	)
	fav := c.FavoriteCategory()
	require.NotNil(t, fav)
	assert.Equal(t, "Snack", *fav, "tie goes to the first category seen")

	c.History = append(c.History, visit(day.Add(2*time.Hour), time.Hour, bought("Beer", "2", "15")))
	assert.Equal(t, "Beer", *c.FavoriteCategory())
}

func TestClient_TotalSpentAndVisitHistory(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	c := NewClient("Eleanor", day)
	older := visit(day, time.Hour, bought("Beer", "2", "15"))
	newer := visit(day.Add(48*time.Hour), time.Hour, bought("Food", "1", "12"), bought("Beer", "1", "6"))
	c.History = append(c.History, older, newer)

	assert.True(t, c.TotalSpent().Equal(decimal.RequireFromString("33")))

	history := c.VisitHistory()
	require.Len(t, history, 2)
	assert.Equal(t, newer.ID, history[0].ID)
	assert.True(t, history[0].Total().Equal(decimal.RequireFromString("18")))
	assert.Equal(t, older.ID, c.History[0].ID, "stored order is untouched")
}
