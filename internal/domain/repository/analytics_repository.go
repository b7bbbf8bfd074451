package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Category     string          `json:"category"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// CategorySalesResult represents sales aggregated by category
type CategorySalesResult struct {
	Category   string          `json:"category"`
	TotalSales decimal.Decimal `json:"total_sales"`
	Quantity   decimal.Decimal `json:"quantity"`
	Percentage float64         `json:"percentage"`
}

// PaymentMethodSalesResult represents sales aggregated by payment method
type PaymentMethodSalesResult struct {
	Method     enum.PaymentMethod `json:"method"`
	TotalSales decimal.Decimal    `json:"total_sales"`
	Purchases  int                `json:"purchases"`
	Percentage float64            `json:"percentage"`
}

// TopClientResult represents a client's spending data
type TopClientResult struct {
	ClientID         uuid.UUID       `json:"client_id"`
	ClientName       string          `json:"client_name"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	Visits           int             `json:"visits"`
	FavoriteCategory *string         `json:"favorite_category"`
}

// DailySalesResult represents sales data for a single day
type DailySalesResult struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Visits  int             `json:"visits"`
}

// SummaryResult is the headline numbers across all clients
type SummaryResult struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	SettledVisits     int             `json:"settled_visits"`
	AverageVisitValue decimal.Decimal `json:"average_visit_value"`
	Clients           int             `json:"clients"`
	OpenTabs          int             `json:"open_tabs"`
	OpenTabValue      decimal.Decimal `json:"open_tab_value"`
}

// AnalyticsRepository defines read-side rollups over settled tab history
type AnalyticsRepository interface {
	// GetTotalRevenue sums amount paid over every purchase of every closed session
	GetTotalRevenue(ctx context.Context) (decimal.Decimal, error)

	// GetSummary returns headline numbers including open tabs
	GetSummary(ctx context.Context) (*SummaryResult, error)

	// GetTopClients ranks clients by total spent, highest first. limit <= 0 returns all.
	GetTopClients(ctx context.Context, limit int) ([]TopClientResult, error)

	// GetTopProducts ranks products by revenue, highest first. limit <= 0 returns all.
	GetTopProducts(ctx context.Context, limit int) ([]TopProductResult, error)

	// GetSalesByCategory returns sales aggregated by category with percentages
	GetSalesByCategory(ctx context.Context) ([]CategorySalesResult, error)

	// GetSalesByPaymentMethod returns sales for every payment method, including unused ones
	GetSalesByPaymentMethod(ctx context.Context) ([]PaymentMethodSalesResult, error)

	// GetDailySales returns one point per day for the days ending on until, oldest first
	GetDailySales(ctx context.Context, until time.Time, days int) ([]DailySalesResult, error)
}
