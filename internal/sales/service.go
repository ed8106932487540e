package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"retail_sales/internal/money"
)

// RemovedReason is the cancellation reason recorded by RemoveSale.
const RemovedReason = "Sale removed from system"

const (
	defaultNumberAttempts = 5
	defaultPublishTimeout = 5 * time.Second
)

// Service orchestrates the Sale aggregate: it loads sales from storage,
// applies one operation, saves the result and publishes the matching event.
type Service struct {
	storage        Storage
	numbers        NumberGenerator
	publisher      Publisher
	logger         *zap.Logger
	numberAttempts int
	publishTimeout time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithNumberGenerator replaces the store-backed sale number generator.
func WithNumberGenerator(g NumberGenerator) Option {
	return func(s *Service) { s.numbers = g }
}

// WithNumberAttempts bounds how many sale numbers CreateSale tries before giving up.
func WithNumberAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.numberAttempts = n
		}
	}
}

// WithPublishTimeout bounds each event delivery.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewService creates a new Service.
func NewService(storage Storage, publisher Publisher, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = NewLogPublisher(logger)
	}
	s := &Service{
		storage:        storage,
		numbers:        NewStoreNumberGenerator(storage.Sales),
		publisher:      publisher,
		logger:         logger,
		numberAttempts: defaultNumberAttempts,
		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ItemInput describes a line to add, referencing the product by external id.
type ItemInput struct {
	ProductExternalID string
	Quantity          int
	UnitPrice         decimal.Decimal
	Currency          string
}

type CreateSaleInput struct {
	CustomerExternalID string
	BranchExternalID   string
	Items              []ItemInput
}

type ItemQuantity struct {
	ItemID   uuid.UUID
	Quantity int
}

type UpdateSaleInput struct {
	SaleID uuid.UUID
	Items  []ItemQuantity
}

// GetSale returns a sale with all its details.
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.storage.Sales.Get(ctx, id)
}

// ListSales returns the sales matching filter.
func (s *Service) ListSales(ctx context.Context, filter SaleFilter) ([]*Sale, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, fmt.Errorf("%w: start date must be before or equal to end date", ErrInvalidArgument)
	}
	sales, err := s.storage.Sales.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}
	return sales, nil
}

// CreateSale resolves customer, branch and products, numbers the sale and stores it.
// A sale number taken by a concurrent request is replaced by a fresh one.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*Sale, error) {
	customer, err := s.storage.Customers.GetByExternalID(ctx, in.CustomerExternalID)
	if err != nil {
		return nil, lookupError("customer", in.CustomerExternalID, err)
	}
	branch, err := s.storage.Branches.GetByExternalID(ctx, in.BranchExternalID)
	if err != nil {
		return nil, lookupError("branch", in.BranchExternalID, err)
	}
	products := make([]*Product, len(in.Items))
	for i, item := range in.Items {
		if products[i], err = s.storage.Products.GetByExternalID(ctx, item.ProductExternalID); err != nil {
			return nil, lookupError("product", item.ProductExternalID, err)
		}
	}

	var sale *Sale
	for attempt := 1; ; attempt++ {
		number, err := s.numbers.Generate(ctx)
		if err != nil {
			s.logger.Error("failed to generate sale number", zap.Error(err))
			return nil, err
		}
		if sale, err = NewSale(number, customer, branch); err != nil {
			return nil, err
		}
		for i, item := range in.Items {
			if _, err := sale.AddItem(products[i], item.Quantity, money.New(item.UnitPrice, item.Currency)); err != nil {
				return nil, fmt.Errorf("item %d (%s): %w", i+1, item.ProductExternalID, err)
			}
		}

		err = s.storage.Sales.Add(ctx, sale)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateSaleNumber) && attempt < s.numberAttempts {
			s.logger.Warn("sale number taken, retrying",
				zap.String("sale_number", number),
				zap.Int("attempt", attempt),
			)
			continue
		}
		s.logger.Error("failed to save sale", zap.String("sale_number", number), zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID().String()),
		zap.String("sale_number", sale.SaleNumber()),
		zap.Int("items", len(in.Items)),
	)
	s.publish(ctx, NewSaleCreated(sale))
	return sale, nil
}

// AddSaleItem adds a product line to an open sale.
func (s *Service) AddSaleItem(ctx context.Context, saleID uuid.UUID, in ItemInput) (*Sale, SaleItem, error) {
	product, err := s.storage.Products.GetByExternalID(ctx, in.ProductExternalID)
	if err != nil {
		return nil, SaleItem{}, lookupError("product", in.ProductExternalID, err)
	}

	var added SaleItem
	sale, err := s.mutate(ctx, saleID, func(sale *Sale) (Event, error) {
		item, err := sale.AddItem(product, in.Quantity, money.New(in.UnitPrice, in.Currency))
		if err != nil {
			return nil, err
		}
		added = item
		return NewSaleModified(sale), nil
	})
	if err != nil {
		return nil, SaleItem{}, err
	}
	return sale, added, nil
}

// UpdateSale changes item quantities. Either every change is applied or none is.
func (s *Service) UpdateSale(ctx context.Context, in UpdateSaleInput) (*Sale, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: no items to update", ErrInvalidArgument)
	}
	return s.mutate(ctx, in.SaleID, func(sale *Sale) (Event, error) {
		for _, item := range in.Items {
			if err := sale.UpdateItem(item.ItemID, item.Quantity); err != nil {
				return nil, err
			}
		}
		return NewSaleModified(sale), nil
	})
}

// CancelSale cancels the sale and all its items. Cancelling a cancelled sale succeeds
// without publishing anything.
func (s *Service) CancelSale(ctx context.Context, saleID uuid.UUID, reason string) (*Sale, error) {
	return s.mutate(ctx, saleID, func(sale *Sale) (Event, error) {
		if sale.Cancelled() {
			return nil, nil
		}
		sale.Cancel()
		return NewSaleCancelled(sale, reason), nil
	})
}

// CancelSaleItem cancels one item of an open sale.
func (s *Service) CancelSaleItem(ctx context.Context, saleID, itemID uuid.UUID, reason string) (*Sale, error) {
	return s.mutate(ctx, saleID, func(sale *Sale) (Event, error) {
		before, found := sale.Item(itemID)
		if err := sale.CancelItem(itemID); err != nil {
			return nil, err
		}
		if !found || before.Cancelled() {
			return nil, nil
		}
		item, _ := sale.Item(itemID)
		return NewItemCancelled(sale, item, reason), nil
	})
}

// RemoveSale cancels the sale; sales are never deleted.
func (s *Service) RemoveSale(ctx context.Context, saleID uuid.UUID) (*Sale, error) {
	return s.CancelSale(ctx, saleID, RemovedReason)
}

// mutate loads a sale, applies fn and saves the result. A nil event means fn
// changed nothing, so nothing is written or published.
func (s *Service) mutate(ctx context.Context, saleID uuid.UUID, fn func(*Sale) (Event, error)) (*Sale, error) {
	sale, err := s.storage.Sales.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}

	event, err := fn(sale)
	if err != nil {
		s.logger.Warn("sale operation rejected", zap.String("sale_id", saleID.String()), zap.Error(err))
		return nil, err
	}
	if event == nil {
		return sale, nil
	}

	if err := s.storage.Sales.Update(ctx, sale); err != nil {
		s.logger.Error("failed to update sale", zap.String("sale_id", saleID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	s.logger.Info("sale updated",
		zap.String("sale_id", saleID.String()),
		zap.String("event", event.EventName()),
		zap.Int("version", sale.Version()),
	)
	s.publish(ctx, event)
	return sale, nil
}

// publish delivers the event after the change has been committed. Failures are
// logged and dropped.
func (s *Service) publish(ctx context.Context, event Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event", event.EventName()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

// lookupError turns a missing reference into a request validation failure.
func lookupError(kind, externalID string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s with external id %q not found", ErrInvalidArgument, kind, externalID)
	}
	return fmt.Errorf("failed to look up %s %q: %w", kind, externalID, err)
}
