package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_sales/internal/metrics"
	"retail_sales/internal/sales"
)

// InitRoutes registers the sales and catalog endpoints on the given Gin engine.
// When m is not nil every request is instrumented and /metrics is exposed.
func InitRoutes(e *gin.Engine, salesService *sales.Service, catalog *sales.Catalog, m *metrics.Metrics, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", gin.WrapH(m.Handler()))
	}

	salesHandler := NewSalesHandler(salesService, logger)
	s := e.Group("/sales")
	s.GET("", salesHandler.handleListSales)
	s.POST("", salesHandler.handleCreateSale)
	s.GET("/:id", salesHandler.handleGetSale)
	s.PUT("/:id", salesHandler.handleUpdateSale)
	s.DELETE("/:id", salesHandler.handleRemoveSale)
	s.POST("/:id/items", salesHandler.handleAddItem)
	s.POST("/:id/cancel", salesHandler.handleCancelSale)
	s.POST("/:id/items/:itemId/cancel", salesHandler.handleCancelItem)

	catalogHandler := NewCatalogHandler(catalog, logger)
	customers := e.Group("/customers")
	customers.POST("", catalogHandler.createCustomer)
	customers.GET("", catalogHandler.listCustomers)
	customers.GET("/:id", catalogHandler.getCustomer)
	customers.PUT("/:id", catalogHandler.updateCustomer)
	customers.DELETE("/:id", catalogHandler.removeCustomer)

	branches := e.Group("/branches")
	branches.POST("", catalogHandler.createBranch)
	branches.GET("", catalogHandler.listBranches)
	branches.GET("/:id", catalogHandler.getBranch)
	branches.PUT("/:id", catalogHandler.updateBranch)
	branches.DELETE("/:id", catalogHandler.removeBranch)

	products := e.Group("/products")
	products.POST("", catalogHandler.createProduct)
	products.GET("", catalogHandler.listProducts)
	products.GET("/:id", catalogHandler.getProduct)
	products.PUT("/:id", catalogHandler.updateProduct)
	products.DELETE("/:id", catalogHandler.removeProduct)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
