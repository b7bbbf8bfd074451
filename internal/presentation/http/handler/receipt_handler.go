package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/bartab-api/internal/application/service"
	"github.com/sangkips/bartab-api/internal/presentation/http/dto/response"
)

// ReceiptHandler handles receipt printing requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Status reports whether a printer is configured and reachable
func (h *ReceiptHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status retrieved successfully", h.receiptService.GetStatus(c.Request.Context()))
}

// Print prints the receipt for a settled visit. The receipt is returned even
// when no printer is configured.
func (h *ReceiptHandler) Print(c *gin.Context) {
	clientID, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}
	sessionID, ok := paramUUID(c, "session", "visit")
	if !ok {
		return
	}

	result, err := h.receiptService.PrintReceipt(c.Request.Context(), clientID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Receipt printed"
	if !result.Printed {
		message = "No printer configured; receipt returned only"
	}
	response.OK(c, message, result)
}
