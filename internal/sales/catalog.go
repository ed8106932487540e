package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"retail_sales/internal/money"
)

// Catalog manages customers, branches and products. These are created and
// updated independently of sales.
type Catalog struct {
	storage Storage
	logger  *zap.Logger
}

func NewCatalog(storage Storage, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{storage: storage, logger: logger}
}

type CustomerInput struct {
	ExternalID string
	Name       string
	Email      string
	Document   string
}

type BranchInput struct {
	ExternalID string
	Name       string
	Location   string
}

// ProductInput carries product fields. BasePrice is required on create and
// optional on update.
type ProductInput struct {
	ExternalID  string
	Name        string
	Description string
	BasePrice   *decimal.Decimal
	Currency    string
}

func (c *Catalog) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	customer, err := NewCustomer(in.ExternalID, in.Name, in.Email, in.Document)
	if err != nil {
		return nil, err
	}
	if err := c.storage.Customers.Add(ctx, customer); err != nil {
		c.logger.Error("failed to save customer", zap.String("external_id", in.ExternalID), zap.Error(err))
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	c.logger.Info("customer created", zap.String("customer_id", customer.ID().String()))
	return customer, nil
}

func (c *Catalog) UpdateCustomer(ctx context.Context, id uuid.UUID, in CustomerInput) (*Customer, error) {
	customer, err := c.storage.Customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Update(in.Name, in.Email, in.Document)
	if err := c.storage.Customers.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (c *Catalog) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return c.storage.Customers.Get(ctx, id)
}

func (c *Catalog) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return c.storage.Customers.List(ctx)
}

func (c *Catalog) RemoveCustomer(ctx context.Context, id uuid.UUID) error {
	return c.storage.Customers.Remove(ctx, id)
}

func (c *Catalog) CreateBranch(ctx context.Context, in BranchInput) (*Branch, error) {
	branch, err := NewBranch(in.ExternalID, in.Name, in.Location)
	if err != nil {
		return nil, err
	}
	if err := c.storage.Branches.Add(ctx, branch); err != nil {
		c.logger.Error("failed to save branch", zap.String("external_id", in.ExternalID), zap.Error(err))
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}
	c.logger.Info("branch created", zap.String("branch_id", branch.ID().String()))
	return branch, nil
}

func (c *Catalog) UpdateBranch(ctx context.Context, id uuid.UUID, in BranchInput) (*Branch, error) {
	branch, err := c.storage.Branches.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	branch.Update(in.Name, in.Location)
	if err := c.storage.Branches.Update(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}
	return branch, nil
}

func (c *Catalog) GetBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return c.storage.Branches.Get(ctx, id)
}

func (c *Catalog) ListBranches(ctx context.Context) ([]*Branch, error) {
	return c.storage.Branches.List(ctx)
}

func (c *Catalog) RemoveBranch(ctx context.Context, id uuid.UUID) error {
	return c.storage.Branches.Remove(ctx, id)
}

func (c *Catalog) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if in.BasePrice == nil {
		return nil, fmt.Errorf("%w: base price is required", ErrInvalidArgument)
	}
	product, err := NewProduct(in.ExternalID, in.Name, in.Description, money.New(*in.BasePrice, in.Currency))
	if err != nil {
		return nil, err
	}
	if err := c.storage.Products.Add(ctx, product); err != nil {
		c.logger.Error("failed to save product", zap.String("external_id", in.ExternalID), zap.Error(err))
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	c.logger.Info("product created", zap.String("product_id", product.ID().String()))
	return product, nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*Product, error) {
	product, err := c.storage.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var price *money.Money
	if in.BasePrice != nil {
		currency := in.Currency
		if currency == "" {
			currency = product.BasePrice().Currency()
		}
		p := money.New(*in.BasePrice, currency)
		if err := validatePriceScale("base price", p); err != nil {
			return nil, err
		}
		price = &p
	}
	product.Update(in.Name, in.Description, price)
	if err := c.storage.Products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (c *Catalog) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return c.storage.Products.Get(ctx, id)
}

func (c *Catalog) ListProducts(ctx context.Context) ([]*Product, error) {
	return c.storage.Products.List(ctx)
}

func (c *Catalog) RemoveProduct(ctx context.Context, id uuid.UUID) error {
	return c.storage.Products.Remove(ctx, id)
}
