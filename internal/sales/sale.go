package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"retail_sales/internal/money"
)

// Sale is the aggregate root of a sales transaction. All changes to its
// items go through its methods.
type Sale struct {
	entity
	saleNumber string
	saleDate   time.Time
	customerID uuid.UUID
	customer   *Customer
	branchID   uuid.UUID
	branch     *Branch
	cancelled  bool
	items      []*SaleItem
	version    int
}

// SaleRecord holds the persisted fields of a Sale.
type SaleRecord struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	SaleNumber string
	SaleDate   time.Time
	CustomerID uuid.UUID
	Customer   *Customer
	BranchID   uuid.UUID
	Branch     *Branch
	Cancelled  bool
	Items      []*SaleItem
	Version    int
}

// NewSale opens a sale for the customer at the branch.
func NewSale(saleNumber string, customer *Customer, branch *Branch) (*Sale, error) {
	if strings.TrimSpace(saleNumber) == "" {
		return nil, fmt.Errorf("%w: sale number cannot be empty", ErrInvalidArgument)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer is required", ErrInvalidArgument)
	}
	if branch == nil {
		return nil, fmt.Errorf("%w: branch is required", ErrInvalidArgument)
	}
	e := newEntity()
	return &Sale{
		entity:     e,
		saleNumber: saleNumber,
		saleDate:   e.createdAt,
		customerID: customer.ID(),
		customer:   customer,
		branchID:   branch.ID(),
		branch:     branch,
		version:    1,
	}, nil
}

// RestoreSale rebuilds a sale loaded from storage. Items must belong to the sale.
func RestoreSale(r SaleRecord) (*Sale, error) {
	if r.ID == uuid.Nil || r.SaleNumber == "" || r.CustomerID == uuid.Nil || r.BranchID == uuid.Nil {
		return nil, fmt.Errorf("%w: sale record missing identifiers", ErrInvalidArgument)
	}
	items := make([]*SaleItem, 0, len(r.Items))
	for _, item := range r.Items {
		if item == nil || item.saleID != r.ID {
			return nil, fmt.Errorf("%w: sale record holds an item of another sale", ErrInvalidArgument)
		}
		items = append(items, item)
	}
	return &Sale{
		entity:     restoreEntity(r.ID, r.CreatedAt, r.UpdatedAt),
		saleNumber: r.SaleNumber,
		saleDate:   r.SaleDate,
		customerID: r.CustomerID,
		customer:   r.Customer,
		branchID:   r.BranchID,
		branch:     r.Branch,
		cancelled:  r.Cancelled,
		items:      items,
		version:    r.Version,
	}, nil
}

func (s *Sale) SaleNumber() string    { return s.saleNumber }
func (s *Sale) SaleDate() time.Time   { return s.saleDate }
func (s *Sale) CustomerID() uuid.UUID { return s.customerID }
func (s *Sale) Customer() *Customer   { return s.customer }
func (s *Sale) BranchID() uuid.UUID   { return s.branchID }
func (s *Sale) Branch() *Branch       { return s.branch }
func (s *Sale) Cancelled() bool       { return s.cancelled }

// Version is the optimistic-concurrency counter maintained by storage.
func (s *Sale) Version() int { return s.version }

// SetVersion is called by storage after a successful write.
func (s *Sale) SetVersion(v int) { s.version = v }

// Items returns a snapshot of the lines in insertion order.
func (s *Sale) Items() []SaleItem {
	out := make([]SaleItem, len(s.items))
	for i, item := range s.items {
		out[i] = *item.clone()
	}
	return out
}

// Item returns a snapshot of one line.
func (s *Sale) Item(itemID uuid.UUID) (SaleItem, bool) {
	item := s.find(itemID)
	if item == nil {
		return SaleItem{}, false
	}
	return *item.clone(), true
}

// Currency is the currency of the first line, or the default currency for an empty sale.
func (s *Sale) Currency() string {
	if len(s.items) == 0 {
		return money.DefaultCurrency
	}
	return s.items[0].unitPrice.Currency()
}

// AddItem appends a new line for product. Only one active line per product is allowed.
func (s *Sale) AddItem(product *Product, quantity int, unitPrice money.Money) (SaleItem, error) {
	if s.cancelled {
		return SaleItem{}, fmt.Errorf("%w: cannot add items to a cancelled sale", ErrInvalidState)
	}
	if product == nil {
		return SaleItem{}, fmt.Errorf("%w: product is required", ErrInvalidArgument)
	}
	for _, item := range s.items {
		if item.productID == product.ID() && !item.cancelled {
			return SaleItem{}, fmt.Errorf("%w: product already in sale, update the existing item instead", ErrInvalidState)
		}
	}
	if len(s.items) > 0 && unitPrice.Currency() != s.Currency() {
		return SaleItem{}, fmt.Errorf("%w: sale is priced in %s, item in %s", ErrCurrencyMismatch, s.Currency(), unitPrice.Currency())
	}
	item, err := NewSaleItem(s.id, product, quantity, unitPrice)
	if err != nil {
		return SaleItem{}, err
	}
	s.items = append(s.items, item)
	s.touch()
	return *item, nil
}

// UpdateItem changes the quantity of a line.
func (s *Sale) UpdateItem(itemID uuid.UUID, quantity int) error {
	if s.cancelled {
		return fmt.Errorf("%w: cannot update items in a cancelled sale", ErrInvalidState)
	}
	item := s.find(itemID)
	if item == nil {
		return fmt.Errorf("%w: item %s not in sale %s", ErrNotFound, itemID, s.saleNumber)
	}
	if err := item.UpdateQuantity(quantity); err != nil {
		return err
	}
	s.touch()
	return nil
}

// CancelItem cancels a line. Cancelling a line that is already cancelled is a no-op.
func (s *Sale) CancelItem(itemID uuid.UUID) error {
	if s.cancelled {
		return fmt.Errorf("%w: cannot cancel items in a cancelled sale", ErrInvalidState)
	}
	item := s.find(itemID)
	if item == nil {
		return fmt.Errorf("%w: item %s not in sale %s", ErrNotFound, itemID, s.saleNumber)
	}
	if item.cancelled {
		return nil
	}
	item.Cancel()
	s.touch()
	return nil
}

// Cancel cancels the sale and every active line. Cancelled is terminal;
// repeated calls do nothing.
func (s *Sale) Cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	for _, item := range s.items {
		item.Cancel()
	}
	s.touch()
}

// TotalAmount sums the active lines, or returns zero once the sale is cancelled.
func (s *Sale) TotalAmount() (money.Money, error) {
	total := money.Zero(s.Currency())
	if s.cancelled {
		return total, nil
	}
	for _, item := range s.items {
		if item.cancelled {
			continue
		}
		var err error
		if total, err = total.Add(item.TotalPrice()); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

func (s *Sale) Record() SaleRecord {
	items := make([]*SaleItem, len(s.items))
	for i, item := range s.items {
		items[i] = item.clone()
	}
	return SaleRecord{
		ID:         s.id,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.UpdatedAt(),
		SaleNumber: s.saleNumber,
		SaleDate:   s.saleDate,
		CustomerID: s.customerID,
		Customer:   copyOf(s.customer),
		BranchID:   s.branchID,
		Branch:     copyOf(s.branch),
		Cancelled:  s.cancelled,
		Items:      items,
		Version:    s.version,
	}
}

func (s *Sale) find(itemID uuid.UUID) *SaleItem {
	for _, item := range s.items {
		if item.id == itemID {
			return item
		}
	}
	return nil
}
