package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultTopLimit  = 5
	defaultDailyDays = 30
	maxDailyDays     = 366
)

// AnalyticsService provides revenue and visit statistics. Every figure is recomputed
// from current client state on each call.
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	clients       *ClientService
	clock         Clock
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, clients *ClientService, clock Clock) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		clients:       clients,
		clock:         clock,
	}
}

// ClientStats is the per-client analytics view
type ClientStats struct {
	ClientID              uuid.UUID       `json:"client_id"`
	Name                  string          `json:"name"`
	TotalSpent            decimal.Decimal `json:"total_spent"`
	Visits                int             `json:"visits"`
	FavoriteCategory      *string         `json:"favorite_category"`
	MedianVisitDuration   time.Duration   `json:"-"`
	MedianVisitDurationMs int64           `json:"median_visit_duration_ms"`
}

func topLimit(limit int) int {
	if limit <= 0 {
		return defaultTopLimit
	}
	return limit
}

// GetSummary returns headline numbers
func (s *AnalyticsService) GetSummary(ctx context.Context) (*repository.SummaryResult, error) {
	return s.analyticsRepo.GetSummary(ctx)
}

// GetTotalRevenue sums everything ever paid
func (s *AnalyticsService) GetTotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	return s.analyticsRepo.GetTotalRevenue(ctx)
}

// GetTopClients ranks clients by total spent, five by default
func (s *AnalyticsService) GetTopClients(ctx context.Context, limit int) ([]repository.TopClientResult, error) {
	return s.analyticsRepo.GetTopClients(ctx, topLimit(limit))
}

// GetTopProducts ranks products by revenue, five by default
func (s *AnalyticsService) GetTopProducts(ctx context.Context, limit int) ([]repository.TopProductResult, error) {
	return s.analyticsRepo.GetTopProducts(ctx, topLimit(limit))
}

// GetSalesByCategory returns revenue per category
func (s *AnalyticsService) GetSalesByCategory(ctx context.Context) ([]repository.CategorySalesResult, error) {
	return s.analyticsRepo.GetSalesByCategory(ctx)
}

// GetSalesByPaymentMethod returns revenue per payment method
func (s *AnalyticsService) GetSalesByPaymentMethod(ctx context.Context) ([]repository.PaymentMethodSalesResult, error) {
	return s.analyticsRepo.GetSalesByPaymentMethod(ctx)
}

// GetDailySales returns revenue per day up to today
func (s *AnalyticsService) GetDailySales(ctx context.Context, days int) ([]repository.DailySalesResult, error) {
	if days <= 0 {
		days = defaultDailyDays
	}
	if days > maxDailyDays {
		days = maxDailyDays
	}
	return s.analyticsRepo.GetDailySales(ctx, s.clock.now(), days)
}

// GetClientStats returns total spent, favorite category and median visit duration for one client
func (s *AnalyticsService) GetClientStats(ctx context.Context, clientID uuid.UUID) (*ClientStats, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	median := client.MedianVisitDuration()
	return &ClientStats{
		ClientID:              client.ID,
		Name:                  client.Name,
		TotalSpent:            client.TotalSpent(),
		Visits:                len(client.History),
		FavoriteCategory:      client.FavoriteCategory(),
		MedianVisitDuration:   median,
		MedianVisitDurationMs: median.Milliseconds(),
	}, nil
}

// GetVisitHistory returns the client's closed sessions, most recent first
func (s *AnalyticsService) GetVisitHistory(ctx context.Context, clientID uuid.UUID) ([]entity.TabSession, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return client.VisitHistory(), nil
}
