package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"retail_sales/api"
	"retail_sales/internal/metrics"
	"retail_sales/internal/sales"
)

type moneyBody struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type itemBody struct {
	ID                 string    `json:"id"`
	Quantity           int       `json:"quantity"`
	DiscountPercentage string    `json:"discount_percentage"`
	TotalPrice         moneyBody `json:"total_price"`
	Cancelled          bool      `json:"cancelled"`
}

type customerBody struct {
	Name string `json:"name"`
}

type saleBody struct {
	ID          string        `json:"id"`
	SaleNumber  string        `json:"sale_number"`
	CustomerID  string        `json:"customer_id"`
	Customer    *customerBody `json:"customer"`
	TotalAmount moneyBody     `json:"total_amount"`
	Cancelled   bool          `json:"cancelled"`
	Version     int           `json:"version"`
	Items       []itemBody    `json:"items"`
}

func InitRoutesTests(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := zaptest.NewLogger(t)
	storage := sales.NewLocalStorage()
	api.InitRoutes(router,
		sales.NewService(storage, nil, logger),
		sales.NewCatalog(storage, logger),
		metrics.New(),
		logger,
	)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func seedCatalog(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/customers", map[string]any{
		"external_id": "CUST123", "name": "João Silva", "email": "joao@email.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customerID := decode[map[string]any](t, w)["id"].(string)

	w = do(t, router, http.MethodPost, "/branches", map[string]any{"external_id": "BR001", "name": "Loja Central"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, p := range []map[string]any{
		{"external_id": "PROD001", "name": "Smartphone", "base_price": "1500.00"},
		{"external_id": "PROD002", "name": "Tablet", "base_price": "2500.00"},
	} {
		w = do(t, router, http.MethodPost, "/products", p)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	return customerID
}

// TestSalesHappyPath_FullFlow covers create, update, add item, cancel item and list.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	router := InitRoutesTests(t)
	customerID := seedCatalog(t, router)

	var sale saleBody

	t.Run("POST_CreateSale", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/sales", map[string]any{
			"customer_external_id": "CUST123",
			"branch_external_id":   "BR001",
			"items": []map[string]any{
				{"product_external_id": "PROD001", "quantity": 5, "unit_price": "1500.00"},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, "Expected HTTP 201 Created status for successful sale creation")

		sale = decode[saleBody](t, w)
		assert.NotEmpty(t, sale.ID, "Expected sale ID to be generated")
		assert.Len(t, sale.SaleNumber, 14)
		assert.Equal(t, customerID, sale.CustomerID)
		require.NotNil(t, sale.Customer)
		assert.Equal(t, "João Silva", sale.Customer.Name)
		assert.Equal(t, moneyBody{Amount: "6750", Currency: "BRL"}, sale.TotalAmount)
		assert.Equal(t, 1, sale.Version, "Expected initial version to be 1")
		require.Len(t, sale.Items, 1)
		assert.Equal(t, "10", sale.Items[0].DiscountPercentage)
	})
	require.NotEmpty(t, sale.ID, "Sale ID was not generated in POST_CreateSale step")

	t.Run("PUT_UpdateSale", func(t *testing.T) {
		w := do(t, router, http.MethodPut, "/sales/"+sale.ID, map[string]any{
			"items": []map[string]any{{"item_id": sale.Items[0].ID, "quantity": 10}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated := decode[saleBody](t, w)
		assert.Equal(t, moneyBody{Amount: "12000", Currency: "BRL"}, updated.TotalAmount)
		assert.Equal(t, 2, updated.Version, "Expected version to increment to 2")
	})

	var tabletItem itemBody
	t.Run("POST_AddItem", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/sales/"+sale.ID+"/items", map[string]any{
			"product_external_id": "PROD002", "quantity": 1, "unit_price": "2500",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		tabletItem = decode[itemBody](t, w)
		assert.Equal(t, moneyBody{Amount: "2500", Currency: "BRL"}, tabletItem.TotalPrice)
	})

	t.Run("POST_CancelItem", func(t *testing.T) {
		w := do(t, router, http.MethodPost, fmt.Sprintf("/sales/%s/items/%s/cancel", sale.ID, tabletItem.ID), map[string]any{"reason": "damaged"})
		assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = do(t, router, http.MethodGet, "/sales/"+sale.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[saleBody](t, w)
		assert.Equal(t, "12000", got.TotalAmount.Amount)
		require.Len(t, got.Items, 2)
		assert.True(t, got.Items[1].Cancelled)
	})

	t.Run("GET_ListByCustomer", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/sales?customer_id="+customerID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]saleBody](t, w), 1)

		w = do(t, router, http.MethodGet, "/sales?start_date=2100-01-01T00:00:00Z", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]saleBody](t, w))
	})

	t.Run("DELETE_RemoveSale", func(t *testing.T) {
		w := do(t, router, http.MethodDelete, "/sales/"+sale.ID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = do(t, router, http.MethodGet, "/sales/"+sale.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[saleBody](t, w)
		assert.True(t, got.Cancelled)
		assert.Equal(t, "0", got.TotalAmount.Amount)
	})

	t.Run("POST_AddItemToCancelledSale", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/sales/"+sale.ID+"/items", map[string]any{
			"product_external_id": "PROD002", "quantity": 1, "unit_price": "2500",
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func TestSales_ErrorMapping(t *testing.T) {
	router := InitRoutesTests(t)
	seedCatalog(t, router)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed id", http.MethodGet, "/sales/not-a-uuid", nil, http.StatusBadRequest},
		{"missing sale", http.MethodGet, "/sales/7f1c3c1e-7b1a-4f5e-9d1c-3b2a1f0e9d8c", nil, http.StatusNotFound},
		{"invalid payload", http.MethodPost, "/sales", map[string]any{"items": "x"}, http.StatusBadRequest},
		{"unknown customer", http.MethodPost, "/sales", map[string]any{
			"customer_external_id": "NOPE", "branch_external_id": "BR001",
		}, http.StatusBadRequest},
		{"quantity above limit", http.MethodPost, "/sales", map[string]any{
			"customer_external_id": "CUST123", "branch_external_id": "BR001",
			"items": []map[string]any{{"product_external_id": "PROD001", "quantity": 21, "unit_price": "1"}},
		}, http.StatusBadRequest},
		{"currency mismatch", http.MethodPost, "/sales", map[string]any{
			"customer_external_id": "CUST123", "branch_external_id": "BR001",
			"items": []map[string]any{
				{"product_external_id": "PROD001", "quantity": 1, "unit_price": "1"},
				{"product_external_id": "PROD002", "quantity": 1, "unit_price": "1", "currency": "USD"},
			},
		}, http.StatusBadRequest},
		{"bad date", http.MethodGet, "/sales?end_date=yesterday", nil, http.StatusBadRequest},
		{"inverted range", http.MethodGet, "/sales?start_date=2025-04-03T00:00:00Z&end_date=2025-04-02T00:00:00Z", nil, http.StatusBadRequest},
		{"duplicate customer", http.MethodPost, "/customers", map[string]any{"external_id": "CUST123", "name": "Outro"}, http.StatusConflict},
		{"product without price", http.MethodPost, "/products", map[string]any{"external_id": "P9", "name": "x"}, http.StatusBadRequest},
		{"price finer than storage", http.MethodPost, "/products", map[string]any{"external_id": "P9", "name": "x", "base_price": "1.00001"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestPingAndMetrics(t *testing.T) {
	router := InitRoutesTests(t)

	w := do(t, router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/ping"`)
}
