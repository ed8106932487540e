package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"retail_sales/internal/money"
	"retail_sales/internal/sales"
)

type itemRequest struct {
	ProductExternalID string          `json:"product_external_id" binding:"required"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Currency          string          `json:"currency"`
}

func (r itemRequest) input() sales.ItemInput {
	return sales.ItemInput{
		ProductExternalID: r.ProductExternalID,
		Quantity:          r.Quantity,
		UnitPrice:         r.UnitPrice,
		Currency:          r.Currency,
	}
}

type createSaleRequest struct {
	CustomerExternalID string        `json:"customer_external_id" binding:"required"`
	BranchExternalID   string        `json:"branch_external_id" binding:"required"`
	Items              []itemRequest `json:"items"`
}

type updateSaleRequest struct {
	Items []struct {
		ItemID   uuid.UUID `json:"item_id"`
		Quantity int       `json:"quantity"`
	} `json:"items"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type catalogRequest struct {
	ExternalID  string           `json:"external_id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Document    string           `json:"document"`
	Location    string           `json:"location"`
	Description string           `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	Currency    string           `json:"currency"`
}

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoney(m money.Money) moneyResponse {
	return moneyResponse{Amount: m.Amount().String(), Currency: m.Currency()}
}

type customerResponse struct {
	ID         uuid.UUID  `json:"id"`
	ExternalID string     `json:"external_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Document   string     `json:"document,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func toCustomer(c *sales.Customer) *customerResponse {
	if c == nil {
		return nil
	}
	return &customerResponse{
		ID:         c.ID(),
		ExternalID: c.ExternalID(),
		Name:       c.Name(),
		Email:      c.Email(),
		Document:   c.Document(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
}

type branchResponse struct {
	ID         uuid.UUID  `json:"id"`
	ExternalID string     `json:"external_id"`
	Name       string     `json:"name"`
	Location   string     `json:"location,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func toBranch(b *sales.Branch) *branchResponse {
	if b == nil {
		return nil
	}
	return &branchResponse{
		ID:         b.ID(),
		ExternalID: b.ExternalID(),
		Name:       b.Name(),
		Location:   b.Location(),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

type productResponse struct {
	ID          uuid.UUID     `json:"id"`
	ExternalID  string        `json:"external_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	BasePrice   moneyResponse `json:"base_price"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

func toProduct(p *sales.Product) *productResponse {
	if p == nil {
		return nil
	}
	return &productResponse{
		ID:          p.ID(),
		ExternalID:  p.ExternalID(),
		Name:        p.Name(),
		Description: p.Description(),
		BasePrice:   toMoney(p.BasePrice()),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

type itemResponse struct {
	ID                 uuid.UUID        `json:"id"`
	ProductID          uuid.UUID        `json:"product_id"`
	Product            *productResponse `json:"product,omitempty"`
	Quantity           int              `json:"quantity"`
	UnitPrice          moneyResponse    `json:"unit_price"`
	DiscountPercentage string           `json:"discount_percentage"`
	TotalPrice         moneyResponse    `json:"total_price"`
	Cancelled          bool             `json:"cancelled"`
}

func toItem(item sales.SaleItem) itemResponse {
	return itemResponse{
		ID:                 item.ID(),
		ProductID:          item.ProductID(),
		Product:            toProduct(item.Product()),
		Quantity:           item.Quantity(),
		UnitPrice:          toMoney(item.UnitPrice()),
		DiscountPercentage: item.DiscountPercentage().String(),
		TotalPrice:         toMoney(item.TotalPrice()),
		Cancelled:          item.Cancelled(),
	}
}

type saleResponse struct {
	ID          uuid.UUID         `json:"id"`
	SaleNumber  string            `json:"sale_number"`
	SaleDate    time.Time         `json:"sale_date"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	Customer    *customerResponse `json:"customer,omitempty"`
	BranchID    uuid.UUID         `json:"branch_id"`
	Branch      *branchResponse   `json:"branch,omitempty"`
	TotalAmount moneyResponse     `json:"total_amount"`
	Cancelled   bool              `json:"cancelled"`
	Version     int               `json:"version"`
	Items       []itemResponse    `json:"items"`
}

func toSale(s *sales.Sale) (saleResponse, error) {
	total, err := s.TotalAmount()
	if err != nil {
		return saleResponse{}, err
	}
	items := s.Items()
	resp := saleResponse{
		ID:          s.ID(),
		SaleNumber:  s.SaleNumber(),
		SaleDate:    s.SaleDate(),
		CustomerID:  s.CustomerID(),
		Customer:    toCustomer(s.Customer()),
		BranchID:    s.BranchID(),
		Branch:      toBranch(s.Branch()),
		TotalAmount: toMoney(total),
		Cancelled:   s.Cancelled(),
		Version:     s.Version(),
		Items:       make([]itemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = toItem(item)
	}
	return resp, nil
}
