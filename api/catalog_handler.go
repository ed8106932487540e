package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_sales/internal/sales"
)

// catalogHandler serves customers, branches and products.
type catalogHandler struct {
	catalog *sales.Catalog
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *sales.Catalog, logger *zap.Logger) *catalogHandler {
	return &catalogHandler{catalog: catalog, logger: logger}
}

func bindCatalog(c *gin.Context) (catalogRequest, bool) {
	var req catalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return req, false
	}
	return req, true
}

func (r catalogRequest) customer() sales.CustomerInput {
	return sales.CustomerInput{ExternalID: r.ExternalID, Name: r.Name, Email: r.Email, Document: r.Document}
}

func (r catalogRequest) branch() sales.BranchInput {
	return sales.BranchInput{ExternalID: r.ExternalID, Name: r.Name, Location: r.Location}
}

func (r catalogRequest) product() sales.ProductInput {
	return sales.ProductInput{
		ExternalID:  r.ExternalID,
		Name:        r.Name,
		Description: r.Description,
		BasePrice:   r.BasePrice,
		Currency:    r.Currency,
	}
}

func (h *catalogHandler) createCustomer(c *gin.Context) {
	req, ok := bindCatalog(c)
	if !ok {
		return
	}
	customer, err := h.catalog.CreateCustomer(c.Request.Context(), req.customer())
	if err != nil {
		abortWithError(c, h.logger, "failed to create customer", err)
		return
	}
	c.JSON(http.StatusCreated, toCustomer(customer))
}

func (h *catalogHandler) updateCustomer(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindCatalog(c)
	if !ok {
		return
	}
	customer, err := h.catalog.UpdateCustomer(c.Request.Context(), id, req.customer())
	if err != nil {
		abortWithError(c, h.logger, "failed to update customer", err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(customer))
}

func (h *catalogHandler) getCustomer(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.catalog.GetCustomer(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, h.logger, "failed to get customer", err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(customer))
}

func (h *catalogHandler) listCustomers(c *gin.Context) {
	all, err := h.catalog.ListCustomers(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, "failed to list customers", err)
		return
	}
	resp := make([]*customerResponse, len(all))
	for i, v := range all {
		resp[i] = toCustomer(v)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *catalogHandler) removeCustomer(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.RemoveCustomer(c.Request.Context(), id); err != nil {
		abortWithError(c, h.logger, "failed to remove customer", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *catalogHandler) createBranch(c *gin.Context) {
	req, ok := bindCatalog(c)
	if !ok {
		return
	}
	branch, err := h.catalog.CreateBranch(c.Request.Context(), req.branch())
	if err != nil {
		abortWithError(c, h.logger, "failed to create branch", err)
		return
	}
	c.JSON(http.StatusCreated, toBranch(branch))
}

func (h *catalogHandler) updateBranch(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindCatalog(c)
	if !ok {
		return
	}
	branch, err := h.catalog.UpdateBranch(c.Request.Context(), id, req.branch())
	if err != nil {
		abortWithError(c, h.logger, "failed to update branch", err)
		return
	}
	c.JSON(http.StatusOK, toBranch(branch))
}

func (h *catalogHandler) getBranch(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	branch, err := h.catalog.GetBranch(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, h.logger, "failed to get branch", err)
		return
	}
	c.JSON(http.StatusOK, toBranch(branch))
}

func (h *catalogHandler) listBranches(c *gin.Context) {
	all, err := h.catalog.ListBranches(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, "failed to list branches", err)
		return
	}
	resp := make([]*branchResponse, len(all))
	for i, v := range all {
		resp[i] = toBranch(v)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *catalogHandler) removeBranch(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.RemoveBranch(c.Request.Context(), id); err != nil {
		abortWithError(c, h.logger, "failed to remove branch", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *catalogHandler) createProduct(c *gin.Context) {
	req, ok := bindCatalog(c)
	if !ok {
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), req.product())
	if err != nil {
		abortWithError(c, h.logger, "failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, toProduct(product))
}

func (h *catalogHandler) updateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindCatalog(c)
	if !ok {
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, req.product())
	if err != nil {
		abortWithError(c, h.logger, "failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, toProduct(product))
}

func (h *catalogHandler) getProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, h.logger, "failed to get product", err)
		return
	}
	c.JSON(http.StatusOK, toProduct(product))
}

func (h *catalogHandler) listProducts(c *gin.Context) {
	all, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, "failed to list products", err)
		return
	}
	resp := make([]*productResponse, len(all))
	for i, v := range all {
		resp[i] = toProduct(v)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *catalogHandler) removeProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.RemoveProduct(c.Request.Context(), id); err != nil {
		abortWithError(c, h.logger, "failed to remove product", err)
		return
	}
	c.Status(http.StatusNoContent)
}
