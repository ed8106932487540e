package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer known by an upstream system's identifier.
type Customer struct {
	entity
	externalID string
	name       string
	email      string
	document   string
}

// CustomerRecord holds the persisted fields of a Customer.
type CustomerRecord struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	ExternalID string
	Name       string
	Email      string
	Document   string
}

// NewCustomer validates and creates a Customer.
func NewCustomer(externalID, name, email, document string) (*Customer, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("%w: customer external id cannot be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: customer name cannot be empty", ErrInvalidArgument)
	}
	return &Customer{
		entity:     newEntity(),
		externalID: externalID,
		name:       name,
		email:      email,
		document:   document,
	}, nil
}

// RestoreCustomer rebuilds a Customer loaded from storage.
func RestoreCustomer(r CustomerRecord) (*Customer, error) {
	if r.ID == uuid.Nil || r.ExternalID == "" {
		return nil, fmt.Errorf("%w: customer record missing identifiers", ErrInvalidArgument)
	}
	return &Customer{
		entity:     restoreEntity(r.ID, r.CreatedAt, r.UpdatedAt),
		externalID: r.ExternalID,
		name:       r.Name,
		email:      r.Email,
		document:   r.Document,
	}, nil
}

func (c *Customer) ExternalID() string { return c.externalID }
func (c *Customer) Name() string       { return c.name }
func (c *Customer) Email() string      { return c.email }
func (c *Customer) Document() string   { return c.document }

// Update overwrites only the non-blank fields.
func (c *Customer) Update(name, email, document string) {
	if strings.TrimSpace(name) != "" {
		c.name = name
	}
	if strings.TrimSpace(email) != "" {
		c.email = email
	}
	if strings.TrimSpace(document) != "" {
		c.document = document
	}
	c.touch()
}

func (c *Customer) Record() CustomerRecord {
	return CustomerRecord{
		ID:         c.id,
		CreatedAt:  c.createdAt,
		UpdatedAt:  c.UpdatedAt(),
		ExternalID: c.externalID,
		Name:       c.name,
		Email:      c.email,
		Document:   c.document,
	}
}
