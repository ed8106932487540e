package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"retail_sales/internal/money"
)

// Quantity bounds for a single sale line.
const (
	MinItemQuantity = 1
	MaxItemQuantity = 20
)

// MaxPriceScale is the number of decimal places a stored price keeps.
const MaxPriceScale = 4

var (
	tenPercent     = decimal.NewFromInt(10)
	twentyPercent  = decimal.NewFromInt(20)
	oneHundred     = decimal.NewFromInt(100)
	fullPriceRatio = decimal.NewFromInt(1)
)

// DiscountFor returns the discount percentage granted for a quantity:
// 0 for 1-3 units, 10 for 4-9 units and 20 for 10-20 units.
func DiscountFor(quantity int) decimal.Decimal {
	switch {
	case quantity >= 10:
		return twentyPercent
	case quantity >= 4:
		return tenPercent
	default:
		return decimal.Zero
	}
}

// SaleItem is one product line of a Sale.
type SaleItem struct {
	entity
	saleID    uuid.UUID
	productID uuid.UUID
	product   *Product
	quantity  int
	unitPrice money.Money
	discount  decimal.Decimal
	cancelled bool
}

// SaleItemRecord holds the persisted fields of a SaleItem.
type SaleItemRecord struct {
	ID                 uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	SaleID             uuid.UUID
	ProductID          uuid.UUID
	Product            *Product
	Quantity           int
	UnitPrice          money.Money
	DiscountPercentage decimal.Decimal
	Cancelled          bool
}

// NewSaleItem validates the line and applies the discount tier for quantity.
func NewSaleItem(saleID uuid.UUID, product *Product, quantity int, unitPrice money.Money) (*SaleItem, error) {
	if saleID == uuid.Nil {
		return nil, fmt.Errorf("%w: sale id cannot be empty", ErrInvalidArgument)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product is required", ErrInvalidArgument)
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if !unitPrice.IsPositive() {
		return nil, fmt.Errorf("%w: unit price must be greater than zero", ErrInvalidArgument)
	}
	if err := validatePriceScale("unit price", unitPrice); err != nil {
		return nil, err
	}
	return &SaleItem{
		entity:    newEntity(),
		saleID:    saleID,
		productID: product.ID(),
		product:   product,
		quantity:  quantity,
		unitPrice: unitPrice,
		discount:  DiscountFor(quantity),
	}, nil
}

// RestoreSaleItem rebuilds a line loaded from storage. The discount is derived
// from the stored quantity; DiscountPercentage in the record is ignored.
func RestoreSaleItem(r SaleItemRecord) (*SaleItem, error) {
	if r.ID == uuid.Nil || r.SaleID == uuid.Nil || r.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: sale item record missing identifiers", ErrInvalidArgument)
	}
	return &SaleItem{
		entity:    restoreEntity(r.ID, r.CreatedAt, r.UpdatedAt),
		saleID:    r.SaleID,
		productID: r.ProductID,
		product:   r.Product,
		quantity:  r.Quantity,
		unitPrice: r.UnitPrice,
		discount:  DiscountFor(r.Quantity),
		cancelled: r.Cancelled,
	}, nil
}

func validatePriceScale(field string, price money.Money) error {
	if amount := price.Amount(); !amount.Equal(amount.Round(MaxPriceScale)) {
		return fmt.Errorf("%w: %s cannot have more than %d decimal places", ErrInvalidArgument, field, MaxPriceScale)
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < MinItemQuantity {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidArgument)
	}
	if quantity > MaxItemQuantity {
		return fmt.Errorf("%w: quantity cannot exceed %d items", ErrInvalidArgument, MaxItemQuantity)
	}
	return nil
}

func (i *SaleItem) SaleID() uuid.UUID    { return i.saleID }
func (i *SaleItem) ProductID() uuid.UUID { return i.productID }

// Product may be nil when the line was loaded without its product.
func (i *SaleItem) Product() *Product { return i.product }

func (i *SaleItem) Quantity() int                       { return i.quantity }
func (i *SaleItem) UnitPrice() money.Money              { return i.unitPrice }
func (i *SaleItem) DiscountPercentage() decimal.Decimal { return i.discount }
func (i *SaleItem) Cancelled() bool                     { return i.cancelled }

// ProductName returns the denormalized product name, or "" when not loaded.
func (i *SaleItem) ProductName() string {
	if i.product == nil {
		return ""
	}
	return i.product.Name()
}

// UpdateQuantity changes the quantity and re-applies the discount tier.
func (i *SaleItem) UpdateQuantity(quantity int) error {
	if i.cancelled {
		return fmt.Errorf("%w: cannot update a cancelled item", ErrInvalidState)
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	i.quantity = quantity
	i.discount = DiscountFor(quantity)
	i.touch()
	return nil
}

// Cancel marks the line cancelled. Cancelling twice is a no-op.
func (i *SaleItem) Cancel() {
	if i.cancelled {
		return
	}
	i.cancelled = true
	i.touch()
}

// TotalPrice is unitPrice * quantity * (1 - discount/100), or zero once cancelled.
func (i *SaleItem) TotalPrice() money.Money {
	if i.cancelled {
		return money.Zero(i.unitPrice.Currency())
	}
	ratio := fullPriceRatio.Sub(i.discount.Div(oneHundred))
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity))).Mul(ratio)
}

// clone copies the line together with its product.
func (i *SaleItem) clone() *SaleItem {
	c := *i
	c.product = copyOf(i.product)
	return &c
}

func (i *SaleItem) Record() SaleItemRecord {
	return SaleItemRecord{
		ID:                 i.id,
		CreatedAt:          i.createdAt,
		UpdatedAt:          i.UpdatedAt(),
		SaleID:             i.saleID,
		ProductID:          i.productID,
		Product:            copyOf(i.product),
		Quantity:           i.quantity,
		UnitPrice:          i.unitPrice,
		DiscountPercentage: i.discount,
		Cancelled:          i.cancelled,
	}
}
