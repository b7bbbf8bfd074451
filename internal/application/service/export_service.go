package service

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportService renders analytics as spreadsheet downloads
type ExportService struct {
	analytics  *AnalyticsService
	clientRepo repository.ClientRepository
	logger     *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(analytics *AnalyticsService, clientRepo repository.ClientRepository, logger *zap.Logger) *ExportService {
	return &ExportService{
		analytics:  analytics,
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// LedgerRow is one settled purchase in the CSV ledger
type LedgerRow struct {
	ClientID      string `csv:"client_id"`
	ClientName    string `csv:"client_name"`
	SessionID     string `csv:"session_id"`
	OpenedAt      string `csv:"opened_at"`
	ClosedAt      string `csv:"closed_at"`
	Product       string `csv:"product"`
	Category      string `csv:"category"`
	UnitPrice     string `csv:"unit_price"`
	Quantity      string `csv:"quantity"`
	LineQuantity  int    `csv:"line_quantity"`
	PaymentMethod string `csv:"payment_method"`
	AmountPaid    string `csv:"amount_paid"`
}

// LedgerRows flattens every settled purchase, client by client in creation order
func (s *ExportService) LedgerRows(ctx context.Context) ([]*LedgerRow, error) {
	clients, err := s.clientRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	rows := []*LedgerRow{}
	for _, c := range clients {
		for _, session := range c.History {
			for _, p := range session.Purchases {
				rows = append(rows, &LedgerRow{
					ClientID:      c.ID.String(),
					ClientName:    c.Name,
					SessionID:     session.ID.String(),
					OpenedAt:      session.OpenedAt.UTC().Format(time.RFC3339),
					ClosedAt:      session.ClosedAt.UTC().Format(time.RFC3339),
					Product:       p.Name,
					Category:      p.Category,
					UnitPrice:     p.UnitPrice.StringFixed(2),
					Quantity:      p.Quantity.String(),
					LineQuantity:  p.LineQuantity,
					PaymentMethod: p.PaymentMethod.String(),
					AmountPaid:    p.AmountPaid.StringFixed(2),
				})
			}
		}
	}
	return rows, nil
}

// WriteLedgerCSV writes the purchase ledger as CSV with a header row
func (s *ExportService) WriteLedgerCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.LedgerRows(ctx)
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, w)
}

// Workbook sheet names
const (
	SheetSummary  = "Summary"
	SheetClients  = "Clients"
	SheetProducts = "Products"
	SheetPayments = "Payment Methods"
)

// BuildWorkbook assembles the analytics workbook. Callers must close it.
func (s *ExportService) BuildWorkbook(ctx context.Context) (*excelize.File, error) {
	summary, err := s.analytics.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.analytics.analyticsRepo.GetTopClients(ctx, 0)
	if err != nil {
		return nil, err
	}
	products, err := s.analytics.analyticsRepo.GetTopProducts(ctx, 0)
	if err != nil {
		return nil, err
	}
	payments, err := s.analytics.GetSalesByPaymentMethod(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	sheets := map[string][][]interface{}{
		SheetSummary: {
			{"Metric", "Value"},
			{"Total revenue", summary.TotalRevenue.InexactFloat64()},
			{"Settled visits", summary.SettledVisits},
			{"Average visit value", summary.AverageVisitValue.InexactFloat64()},
			{"Clients", summary.Clients},
			{"Open tabs", summary.OpenTabs},
			{"Open tab value", summary.OpenTabValue.InexactFloat64()},
		},
		SheetClients:  {{"Client", "Total spent", "Visits", "Favorite category"}},
		SheetProducts: {{"Product", "Category", "Quantity sold", "Revenue"}},
		SheetPayments: {{"Payment method", "Total", "Purchases", "Share %"}},
	}
	for _, c := range clients {
		favorite := ""
		if c.FavoriteCategory != nil {
			favorite = *c.FavoriteCategory
		}
		sheets[SheetClients] = append(sheets[SheetClients], []interface{}{c.ClientName, c.TotalSpent.InexactFloat64(), c.Visits, favorite})
	}
	for _, p := range products {
		sheets[SheetProducts] = append(sheets[SheetProducts], []interface{}{p.ProductName, p.Category, p.QuantitySold.InexactFloat64(), p.Revenue.InexactFloat64()})
	}
	for _, p := range payments {
		sheets[SheetPayments] = append(sheets[SheetPayments], []interface{}{p.Method.String(), p.TotalSales.InexactFloat64(), p.Purchases, p.Percentage})
	}

	for _, name := range []string{SheetSummary, SheetClients, SheetProducts, SheetPayments} {
		if name != SheetSummary {
			if _, err := f.NewSheet(name); err != nil {
				f.Close()
				return nil, err
			}
		}
		for i, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

// WriteWorkbook writes the analytics workbook as xlsx
func (s *ExportService) WriteWorkbook(ctx context.Context, w io.Writer) error {
	f, err := s.BuildWorkbook(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("closing workbook", zap.Error(err))
		}
	}()

	return f.Write(w)
}
