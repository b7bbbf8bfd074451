package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/bartab-api/internal/application/service"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/sangkips/bartab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bartab-api/internal/presentation/http/dto/response"
)

// ClientHandler handles client, tab and settlement HTTP requests
type ClientHandler struct {
	clientService     *service.ClientService
	tabService        *service.TabService
	settlementService *service.SettlementService
	analyticsService  *service.AnalyticsService
}

// NewClientHandler creates a new client handler
func NewClientHandler(
	clientService *service.ClientService,
	tabService *service.TabService,
	settlementService *service.SettlementService,
	analyticsService *service.AnalyticsService,
) *ClientHandler {
	return &ClientHandler{
		clientService:     clientService,
		tabService:        tabService,
		settlementService: settlementService,
		analyticsService:  analyticsService,
	}
}

// List handles listing clients
func (h *ClientHandler) List(c *gin.Context) {
	var req request.ClientFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), &service.ListClientsInput{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		Status:     enum.ParseClientStatus(req.Status),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Create handles creating a client
func (h *ClientHandler) Create(c *gin.Context) {
	var req request.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Get handles getting a single client with its open tab
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Delete removes a client and its history. Requires ?confirm=true.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		response.BadRequest(c, "Deleting a client removes its whole history; repeat with confirm=true")
		return
	}

	removed, err := h.clientService.RemoveClient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client deleted successfully", gin.H{"removed": removed})
}

// AddItem handles putting a product on the client's tab
func (h *ClientHandler) AddItem(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.tabService.AddItem(c.Request.Context(), id, req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to tab", result)
}

// RemoveItem handles taking one unit of a line off the tab
func (h *ClientHandler) RemoveItem(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id", "item")
	if !ok {
		return
	}

	client, err := h.tabService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from tab", client)
}

// Settle handles closing the tab against split payments
func (h *ClientHandler) Settle(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}

	var req request.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.settlementService.Settle(c.Request.Context(), id, req.SplitPayments())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Tab settled successfully", result)
}

// Visits handles the visit history view, most recent first
func (h *ClientHandler) Visits(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}

	visits, err := h.analyticsService.GetVisitHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Visit history retrieved successfully", visits)
}

// RemoveVisit deletes a closed session by id or opened-at timestamp
func (h *ClientHandler) RemoveVisit(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}

	removed, err := h.clientService.RemoveSession(c.Request.Context(), id, c.Param("session"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Visit removed", gin.H{"removed": removed})
}

// Stats handles per-client analytics
func (h *ClientHandler) Stats(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetClientStats(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client statistics retrieved successfully", stats)
}

// Merge folds the client in the path into the destination client
func (h *ClientHandler) Merge(c *gin.Context) {
	id, ok := paramUUID(c, "id", "client")
	if !ok {
		return
	}

	var req request.MergeClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.MergeClients(c.Request.Context(), id, req.DestinationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Clients merged successfully", client)
}
