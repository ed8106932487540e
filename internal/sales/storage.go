package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleFilter narrows SaleRepository.List. Zero values mean "any".
// From and To are inclusive bounds on the sale date.
type SaleFilter struct {
	CustomerID uuid.UUID
	BranchID   uuid.UUID
	From       time.Time
	To         time.Time
}

// Match reports whether s passes the filter.
func (f SaleFilter) Match(s *Sale) bool {
	if f.CustomerID != uuid.Nil && s.CustomerID() != f.CustomerID {
		return false
	}
	if f.BranchID != uuid.Nil && s.BranchID() != f.BranchID {
		return false
	}
	if !f.From.IsZero() && s.SaleDate().Before(f.From) {
		return false
	}
	if !f.To.IsZero() && s.SaleDate().After(f.To) {
		return false
	}
	return true
}

// SaleRepository persists Sale aggregates. Every write is its own transaction.
//
// Get and List return sales with customer, branch, items and each item's
// product loaded. Add fails with ErrDuplicateSaleNumber when the number is
// taken. Update fails with ErrConflict when the stored version differs from
// Sale.Version and bumps the version on success. Sales are never deleted.
type SaleRepository interface {
	NumberSource
	Get(ctx context.Context, id uuid.UUID) (*Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*Sale, error)
	Add(ctx context.Context, sale *Sale) error
	Update(ctx context.Context, sale *Sale) error
}

// CatalogRepository persists reference entities looked up by external identifier.
// Missing entities are reported as ErrNotFound; Add fails with ErrConflict on a
// duplicate external identifier.
type CatalogRepository[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (T, error)
	GetByExternalID(ctx context.Context, externalID string) (T, error)
	List(ctx context.Context) ([]T, error)
	Add(ctx context.Context, v T) error
	Update(ctx context.Context, v T) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type (
	CustomerRepository = CatalogRepository[*Customer]
	BranchRepository   = CatalogRepository[*Branch]
	ProductRepository  = CatalogRepository[*Product]
)

// Storage groups the repositories needed by the services.
type Storage struct {
	Sales     SaleRepository
	Customers CustomerRepository
	Branches  BranchRepository
	Products  ProductRepository
}
