package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bartab-api/internal/application/service"
	"github.com/sangkips/bartab-api/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyticsHandler handles revenue and visit analytics requests
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	exportService    *service.ExportService
	clock            service.Clock
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, exportService *service.ExportService, clock service.Clock) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		exportService:    exportService,
		clock:            clock,
	}
}

// Summary handles the headline numbers
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsService.GetSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Analytics summary retrieved successfully", summary)
}

// TopClients handles the client ranking by total spent
func (h *AnalyticsHandler) TopClients(c *gin.Context) {
	clients, err := h.analyticsService.GetTopClients(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top clients retrieved successfully", clients)
}

// TopProducts handles the product ranking by revenue
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	products, err := h.analyticsService.GetTopProducts(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top products retrieved successfully", products)
}

// PaymentMethods handles revenue by payment method
func (h *AnalyticsHandler) PaymentMethods(c *gin.Context) {
	methods, err := h.analyticsService.GetSalesByPaymentMethod(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Revenue by payment method retrieved successfully", methods)
}

// Categories handles revenue by category
func (h *AnalyticsHandler) Categories(c *gin.Context) {
	categories, err := h.analyticsService.GetSalesByCategory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Revenue by category retrieved successfully", categories)
}

// Daily handles daily revenue for the last ?days days
func (h *AnalyticsHandler) Daily(c *gin.Context) {
	daily, err := h.analyticsService.GetDailySales(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily revenue retrieved successfully", daily)
}

// ExportWorkbook streams the analytics workbook
func (h *AnalyticsHandler) ExportWorkbook(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.WriteWorkbook(c.Request.Context(), &buf); err != nil {
		response.Error(c, err)
		return
	}

	h.attachment(c, "bartab-analytics", "xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportPurchases streams the settled purchase ledger as CSV
func (h *AnalyticsHandler) ExportPurchases(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.WriteLedgerCSV(c.Request.Context(), &buf); err != nil {
		response.Error(c, err)
		return
	}

	h.attachment(c, "bartab-purchases", "csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *AnalyticsHandler) attachment(c *gin.Context, name, ext string) {
	now := time.Now
	if h.clock != nil {
		now = h.clock
	}
	stamp := now().UTC().Format("20060102-150405")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.%s"`, name, stamp, ext))
}
