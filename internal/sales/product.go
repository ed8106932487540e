package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"retail_sales/internal/money"
)

// Product is a sellable article with a reference price.
type Product struct {
	entity
	externalID  string
	name        string
	description string
	basePrice   money.Money
}

// ProductRecord holds the persisted fields of a Product.
type ProductRecord struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	ExternalID  string
	Name        string
	Description string
	BasePrice   money.Money
}

func NewProduct(externalID, name, description string, basePrice money.Money) (*Product, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("%w: product external id cannot be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: product name cannot be empty", ErrInvalidArgument)
	}
	if basePrice.IsNegative() {
		return nil, fmt.Errorf("%w: base price cannot be negative", ErrInvalidArgument)
	}
	if err := validatePriceScale("base price", basePrice); err != nil {
		return nil, err
	}
	return &Product{
		entity:      newEntity(),
		externalID:  externalID,
		name:        name,
		description: description,
		basePrice:   basePrice,
	}, nil
}

func RestoreProduct(r ProductRecord) (*Product, error) {
	if r.ID == uuid.Nil || r.ExternalID == "" {
		return nil, fmt.Errorf("%w: product record missing identifiers", ErrInvalidArgument)
	}
	return &Product{
		entity:      restoreEntity(r.ID, r.CreatedAt, r.UpdatedAt),
		externalID:  r.ExternalID,
		name:        r.Name,
		description: r.Description,
		basePrice:   r.BasePrice,
	}, nil
}

func (p *Product) ExternalID() string     { return p.externalID }
func (p *Product) Name() string           { return p.name }
func (p *Product) Description() string    { return p.description }
func (p *Product) BasePrice() money.Money { return p.basePrice }

// Update overwrites non-blank text fields. A nil price keeps the current one;
// a negative price is ignored.
func (p *Product) Update(name, description string, basePrice *money.Money) {
	if strings.TrimSpace(name) != "" {
		p.name = name
	}
	if strings.TrimSpace(description) != "" {
		p.description = description
	}
	if basePrice != nil && !basePrice.IsNegative() {
		p.basePrice = *basePrice
	}
	p.touch()
}

func (p *Product) Record() ProductRecord {
	return ProductRecord{
		ID:          p.id,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.UpdatedAt(),
		ExternalID:  p.externalID,
		Name:        p.name,
		Description: p.description,
		BasePrice:   p.basePrice,
	}
}
