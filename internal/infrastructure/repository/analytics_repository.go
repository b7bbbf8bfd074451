package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type analyticsRepository struct {
	clients domainRepo.ClientRepository
}

// NewAnalyticsRepository creates rollups computed on demand from the client store
func NewAnalyticsRepository(clients domainRepo.ClientRepository) domainRepo.AnalyticsRepository {
	return &analyticsRepository{clients: clients}
}

// eachPurchase visits every settled purchase in history order
func eachPurchase(clients []entity.Client, fn func(c *entity.Client, s *entity.TabSession, p *entity.Purchase)) {
	for i := range clients {
		c := &clients[i]
		for j := range c.History {
			s := &c.History[j]
			for k := range s.Purchases {
				fn(c, s, &s.Purchases[k])
			}
		}
	}
}

func percentage(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func (r *analyticsRepository) GetTotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	clients, err := r.clients.All(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	eachPurchase(clients, func(_ *entity.Client, _ *entity.TabSession, p *entity.Purchase) {
		total = total.Add(p.AmountPaid)
	})
	return total, nil
}

func (r *analyticsRepository) GetSummary(ctx context.Context) (*domainRepo.SummaryResult, error) {
	clients, err := r.clients.All(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domainRepo.SummaryResult{Clients: len(clients)}
	for i := range clients {
		c := &clients[i]
		summary.TotalRevenue = summary.TotalRevenue.Add(c.TotalSpent())
		summary.SettledVisits += len(c.History)
		if c.HasOpenTab() {
			summary.OpenTabs++
			summary.OpenTabValue = summary.OpenTabValue.Add(c.Total())
		}
	}
	if summary.SettledVisits > 0 {
		summary.AverageVisitValue = summary.TotalRevenue.Div(decimal.NewFromInt(int64(summary.SettledVisits))).Round(2)
	}
	return summary, nil
}

func (r *analyticsRepository) GetTopClients(ctx context.Context, limit int) ([]domainRepo.TopClientResult, error) {
	clients, err := r.clients.All(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domainRepo.TopClientResult, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		results = append(results, domainRepo.TopClientResult{
			ClientID:         c.ID,
			ClientName:       c.Name,
			TotalSpent:       c.TotalSpent(),
			Visits:           len(c.History),
			FavoriteCategory: c.FavoriteCategory(),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalSpent.GreaterThan(results[j].TotalSpent)
	})
	return limitResults(results, limit), nil
}

func (r *analyticsRepository) GetTopProducts(ctx context.Context, limit int) ([]domainRepo.TopProductResult, error) {
	clients, err := r.clients.All(ctx)
	if err != nil {
		return nil, err
	}

	// products are keyed by id, or by name for lines that predate product ids
	type key struct {
		id   uuid.UUID
		name string
	}
	index := make(map[key]int)
	var results []domainRepo.TopProductResult

	eachPurchase(clients, func(_ *entity.Client, _ *entity.TabSession, p *entity.Purchase) {
		k := key{id: p.ProductID}
		if p.ProductID == uuid.Nil {
			k.name = p.Name
		}
		i, ok := index[k]
		if !ok {
			i = len(results)
			index[k] = i
			results = append(results, domainRepo.TopProductResult{
				ProductID:   p.ProductID,
				ProductName: p.Name,
				Category:    p.Category,
			})
		}
		results[i].QuantitySold = results[i].QuantitySold.Add(p.Quantity)
		results[i].Revenue = results[i].Revenue.Add(p.AmountPaid)
	})

	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].Revenue.Equal(results[j].Revenue) {
			return results[i].Revenue.GreaterThan(results[j].Revenue)
		}
		return results[i].QuantitySold.GreaterThan(results[j].QuantitySold)
	})
	if results == nil {
		results = []domainRepo.TopProductResult{}
	}
	return limitResults(results, limit), nil
}

func (r *analyticsRepository) GetSalesByCategory(ctx context.Context) ([]domainRepo.CategorySalesResult, error) {
	clients, err := r.clients.All(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	results := []domainRepo.CategorySalesResult{}
	total := decimal.Zero

	eachPurchase(clients, func(_ *entity.Client, _ *entity.TabSession, p *entity.Purchase) {
		i, ok := index[p.Category]
		if !ok {
			i = len(results)
			index[p.Category] = i
			results = append(results, domainRepo.CategorySalesResult{Category: p.Category})
		}
		results[i].TotalSales = results[i].TotalSales.Add(p.AmountPaid)
		results[i].Quantity = results[i].Quantity.Add(p.Quantity)
		total = total.Add(p.AmountPaid)
	})

	for i := range results {
		results[i].Percentage = percentage(results[i].TotalSales, total)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalSales.GreaterThan(results[j].TotalSales)
	})
	return results, nil
}

func (r *analyticsRepository) GetSalesByPaymentMethod(ctx context.Context) ([]domainRepo.PaymentMethodSalesResult, error) {
	clients, err := r.clients.All(ctx)
	if err != nil {
		return nil, err
	}

	methods := enum.PaymentMethods()
	results := make([]domainRepo.PaymentMethodSalesResult, len(methods))
	for i, m := range methods {
		results[i].Method = m
	}
	total := decimal.Zero

	eachPurchase(clients, func(_ *entity.Client, _ *entity.TabSession, p *entity.Purchase) {
		if !p.PaymentMethod.Valid() {
			return
		}
		results[p.PaymentMethod].TotalSales = results[p.PaymentMethod].TotalSales.Add(p.AmountPaid)
		results[p.PaymentMethod].Purchases++
		total = total.Add(p.AmountPaid)
	})

	for i := range results {
		results[i].Percentage = percentage(results[i].TotalSales, total)
	}
	return results, nil
}

func (r *analyticsRepository) GetDailySales(ctx context.Context, until time.Time, days int) ([]domainRepo.DailySalesResult, error) {
	if days < 1 {
		days = 1
	}
	clients, err := r.clients.All(ctx)
	if err != nil {
		return nil, err
	}

	until = until.UTC()
	last := time.Date(until.Year(), until.Month(), until.Day(), 0, 0, 0, 0, time.UTC)
	first := last.AddDate(0, 0, -(days - 1))

	results := make([]domainRepo.DailySalesResult, days)
	for i := range results {
		results[i].Date = first.AddDate(0, 0, i)
	}

	for i := range clients {
		for _, s := range clients[i].History {
			closed := s.ClosedAt.UTC()
			day := time.Date(closed.Year(), closed.Month(), closed.Day(), 0, 0, 0, 0, time.UTC)
			if day.Before(first) || day.After(last) {
				continue
			}
			idx := int(day.Sub(first).Hours() / 24)
			results[idx].Revenue = results[idx].Revenue.Add(s.Total())
			results[idx].Visits++
		}
	}
	return results, nil
}

func limitResults[T any](results []T, limit int) []T {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
