package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retail_sales/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// uuidParam parses the named path parameter, answering 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (h *salesHandler) respondSale(c *gin.Context, status int, sale *sales.Sale) {
	resp, err := toSale(sale)
	if err != nil {
		abortWithError(c, h.logger, "failed to render sale", err)
		return
	}
	c.JSON(status, resp)
}

// handleListSales handles GET /sales.
func (h *salesHandler) handleListSales(c *gin.Context) {
	var filter sales.SaleFilter
	for name, dst := range map[string]*uuid.UUID{"customer_id": &filter.CustomerID, "branch_id": &filter.BranchID} {
		if v := c.Query(name); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				badRequest(c, "invalid "+name)
				return
			}
			*dst = id
		}
	}
	for name, dst := range map[string]*time.Time{"start_date": &filter.From, "end_date": &filter.To} {
		if v := c.Query(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				badRequest(c, name+" must be an RFC3339 timestamp")
				return
			}
			*dst = t.UTC()
		}
	}

	found, err := h.salesService.ListSales(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, h.logger, "failed to list sales", err)
		return
	}
	resp := make([]saleResponse, 0, len(found))
	for _, s := range found {
		r, err := toSale(s)
		if err != nil {
			abortWithError(c, h.logger, "failed to render sale", err)
			return
		}
		resp = append(resp, r)
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetSale handles GET /sales/:id.
func (h *salesHandler) handleGetSale(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.salesService.GetSale(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, h.logger, "failed to get sale", err)
		return
	}
	h.respondSale(c, http.StatusOK, sale)
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		badRequest(c, "invalid request payload")
		return
	}

	in := sales.CreateSaleInput{
		CustomerExternalID: req.CustomerExternalID,
		BranchExternalID:   req.BranchExternalID,
		Items:              make([]sales.ItemInput, len(req.Items)),
	}
	for i, item := range req.Items {
		in.Items[i] = item.input()
	}

	sale, err := h.salesService.CreateSale(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, h.logger, "failed to create sale", err)
		return
	}
	h.respondSale(c, http.StatusCreated, sale)
}

// handleUpdateSale handles PUT /sales/:id.
func (h *salesHandler) handleUpdateSale(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	in := sales.UpdateSaleInput{SaleID: id, Items: make([]sales.ItemQuantity, len(req.Items))}
	for i, item := range req.Items {
		in.Items[i] = sales.ItemQuantity{ItemID: item.ItemID, Quantity: item.Quantity}
	}

	sale, err := h.salesService.UpdateSale(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, h.logger, "failed to update sale", err)
		return
	}
	h.respondSale(c, http.StatusOK, sale)
}

// handleAddItem handles POST /sales/:id/items.
func (h *salesHandler) handleAddItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}

	_, item, err := h.salesService.AddSaleItem(c.Request.Context(), id, req.input())
	if err != nil {
		abortWithError(c, h.logger, "failed to add item", err)
		return
	}
	c.JSON(http.StatusCreated, toItem(item))
}

// bindReason reads the optional {"reason": "..."} body.
func bindReason(c *gin.Context) (string, bool) {
	var req cancelRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return "", false
	}
	return req.Reason, true
}

// handleCancelSale handles POST /sales/:id/cancel.
func (h *salesHandler) handleCancelSale(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	if _, err := h.salesService.CancelSale(c.Request.Context(), id, reason); err != nil {
		abortWithError(c, h.logger, "failed to cancel sale", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleCancelItem handles POST /sales/:id/items/:itemId/cancel.
func (h *salesHandler) handleCancelItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	if _, err := h.salesService.CancelSaleItem(c.Request.Context(), id, itemID, reason); err != nil {
		abortWithError(c, h.logger, "failed to cancel sale item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleRemoveSale handles DELETE /sales/:id.
func (h *salesHandler) handleRemoveSale(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.salesService.RemoveSale(c.Request.Context(), id); err != nil {
		abortWithError(c, h.logger, "failed to remove sale", err)
		return
	}
	c.Status(http.StatusNoContent)
}
