package entity

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// TotalSpent sums what the client paid across every closed session
func (c *Client) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for i := range c.History {
		total = total.Add(c.History[i].Total())
	}
	return total
}

// FavoriteCategory is the category with the most purchased quantity.
// Ties go to the category seen first. Nil when the client has no purchases.
func (c *Client) FavoriteCategory() *string {
	var order []string
	quantities := make(map[string]decimal.Decimal)
	for _, s := range c.History {
		for _, p := range s.Purchases {
			if _, seen := quantities[p.Category]; !seen {
				order = append(order, p.Category)
			}
			quantities[p.Category] = quantities[p.Category].Add(p.Quantity)
		}
	}
	if len(order) == 0 {
		return nil
	}

	best := order[0]
	for _, category := range order[1:] {
		if quantities[category].GreaterThan(quantities[best]) {
			best = category
		}
	}
	return &best
}

// MedianVisitDuration is the median of closed session durations, zero without history
func (c *Client) MedianVisitDuration() time.Duration {
	durations := make(stats.Float64Data, 0, len(c.History))
	for _, s := range c.History {
		durations = append(durations, float64(s.Duration))
	}

	median, err := stats.Median(durations)
	if err != nil {
		return 0
	}
	return time.Duration(median)
}

// VisitHistory returns closed sessions, most recently closed first
func (c *Client) VisitHistory() []TabSession {
	visits := append(c.History[:0:0], c.History...)
	sort.SliceStable(visits, func(i, j int) bool {
		return visits[i].ClosedAt.After(visits[j].ClosedAt)
	})
	return visits
}
