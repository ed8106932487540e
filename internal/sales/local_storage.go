package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// NewLocalStorage returns map-backed repositories. Values are copied on the way
// in and out so callers never share state with the store.
func NewLocalStorage() Storage {
	return Storage{
		Sales:     NewLocalSaleRepository(),
		Customers: newLocalCatalog(func(c *Customer) (*Customer, error) { return RestoreCustomer(c.Record()) }),
		Branches:  newLocalCatalog(func(b *Branch) (*Branch, error) { return RestoreBranch(b.Record()) }),
		Products:  newLocalCatalog(func(p *Product) (*Product, error) { return RestoreProduct(p.Record()) }),
	}
}

// LocalSaleRepository provides an in-memory SaleRepository.
type LocalSaleRepository struct {
	mu sync.RWMutex
	m  map[uuid.UUID]*Sale
}

func NewLocalSaleRepository() *LocalSaleRepository {
	return &LocalSaleRepository{m: map[uuid.UUID]*Sale{}}
}

func cloneSale(s *Sale) *Sale {
	c, err := RestoreSale(s.Record())
	if err != nil {
		// Record of a live aggregate always restores.
		panic(err)
	}
	return c
}

func (l *LocalSaleRepository) Get(_ context.Context, id uuid.UUID) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.m[id]
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, id)
	}
	return cloneSale(s), nil
}

// List returns matching sales ordered by sale number.
func (l *LocalSaleRepository) List(_ context.Context, filter SaleFilter) ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sales := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		if filter.Match(s) {
			sales = append(sales, cloneSale(s))
		}
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].SaleNumber() < sales[j].SaleNumber() })
	return sales, nil
}

// Add stores a new sale. The sale number must be unique.
func (l *LocalSaleRepository) Add(_ context.Context, sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.m[sale.ID()]; ok {
		return fmt.Errorf("%w: sale %s already stored", ErrConflict, sale.ID())
	}
	for _, s := range l.m {
		if s.SaleNumber() == sale.SaleNumber() {
			return fmt.Errorf("%w: %s", ErrDuplicateSaleNumber, sale.SaleNumber())
		}
	}
	l.m[sale.ID()] = cloneSale(sale)
	return nil
}

// Update replaces a stored sale when its version matches.
func (l *LocalSaleRepository) Update(_ context.Context, sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, ok := l.m[sale.ID()]
	if !ok {
		return fmt.Errorf("%w: sale %s", ErrNotFound, sale.ID())
	}
	if stored.Version() != sale.Version() {
		return fmt.Errorf("%w: sale %s was modified concurrently", ErrConflict, sale.SaleNumber())
	}
	sale.SetVersion(sale.Version() + 1)
	l.m[sale.ID()] = cloneSale(sale)
	return nil
}

func (l *LocalSaleRepository) LastSaleNumber(_ context.Context, prefix string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	last := ""
	for _, s := range l.m {
		n := s.SaleNumber()
		if strings.HasPrefix(n, prefix) && n > last {
			last = n
		}
	}
	return last, nil
}

type catalogEntity interface {
	ID() uuid.UUID
	ExternalID() string
}

// localCatalog is an in-memory CatalogRepository.
type localCatalog[T catalogEntity] struct {
	mu    sync.RWMutex
	m     map[uuid.UUID]T
	clone func(T) (T, error)
}

func newLocalCatalog[T catalogEntity](clone func(T) (T, error)) *localCatalog[T] {
	return &localCatalog[T]{m: map[uuid.UUID]T{}, clone: clone}
}

func (l *localCatalog[T]) Get(_ context.Context, id uuid.UUID) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	v, ok := l.m[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return l.clone(v)
}

func (l *localCatalog[T]) GetByExternalID(_ context.Context, externalID string) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, v := range l.m {
		if v.ExternalID() == externalID {
			return l.clone(v)
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: external id %q", ErrNotFound, externalID)
}

// List returns every entity ordered by external identifier.
func (l *localCatalog[T]) List(_ context.Context) ([]T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, 0, len(l.m))
	for _, v := range l.m {
		c, err := l.clone(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID() < out[j].ExternalID() })
	return out, nil
}

func (l *localCatalog[T]) Add(_ context.Context, v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.m {
		if existing.ExternalID() == v.ExternalID() {
			return fmt.Errorf("%w: external id %q already registered", ErrConflict, v.ExternalID())
		}
	}
	c, err := l.clone(v)
	if err != nil {
		return err
	}
	l.m[v.ID()] = c
	return nil
}

func (l *localCatalog[T]) Update(_ context.Context, v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.m[v.ID()]; !ok {
		return fmt.Errorf("%w: id %s", ErrNotFound, v.ID())
	}
	c, err := l.clone(v)
	if err != nil {
		return err
	}
	l.m[v.ID()] = c
	return nil
}

func (l *localCatalog[T]) Remove(_ context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.m[id]; !ok {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	delete(l.m, id)
	return nil
}
