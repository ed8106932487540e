package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event names as published to the notification sink.
const (
	EventSaleCreated   = "SaleCreated"
	EventSaleModified  = "SaleModified"
	EventSaleCancelled = "SaleCancelled"
	EventItemCancelled = "ItemCancelled"
)

// Event is a notification emitted after a sale change has been committed.
type Event interface {
	EventID() uuid.UUID
	OccurredAt() time.Time
	EventName() string
	AggregateID() uuid.UUID
}

// Publisher delivers events. Delivery failures never undo the committed change.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type eventHeader struct {
	ID        uuid.UUID `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

func newEventHeader() eventHeader {
	return eventHeader{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

func (h eventHeader) EventID() uuid.UUID    { return h.ID }
func (h eventHeader) OccurredAt() time.Time { return h.Timestamp }

type SaleCreated struct {
	eventHeader
	SaleID       uuid.UUID `json:"sale_id"`
	SaleNumber   string    `json:"sale_number"`
	SaleDate     time.Time `json:"sale_date"`
	CustomerName string    `json:"customer_name"`
	BranchName   string    `json:"branch_name"`
}

func NewSaleCreated(s *Sale) SaleCreated {
	e := SaleCreated{
		eventHeader: newEventHeader(),
		SaleID:      s.ID(),
		SaleNumber:  s.SaleNumber(),
		SaleDate:    s.SaleDate(),
	}
	if s.Customer() != nil {
		e.CustomerName = s.Customer().Name()
	}
	if s.Branch() != nil {
		e.BranchName = s.Branch().Name()
	}
	return e
}

func (e SaleCreated) EventName() string      { return EventSaleCreated }
func (e SaleCreated) AggregateID() uuid.UUID { return e.SaleID }

type SaleModified struct {
	eventHeader
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
}

func NewSaleModified(s *Sale) SaleModified {
	return SaleModified{eventHeader: newEventHeader(), SaleID: s.ID(), SaleNumber: s.SaleNumber()}
}

func (e SaleModified) EventName() string      { return EventSaleModified }
func (e SaleModified) AggregateID() uuid.UUID { return e.SaleID }

type SaleCancelled struct {
	eventHeader
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	Reason     string    `json:"reason"`
}

func NewSaleCancelled(s *Sale, reason string) SaleCancelled {
	return SaleCancelled{
		eventHeader: newEventHeader(),
		SaleID:      s.ID(),
		SaleNumber:  s.SaleNumber(),
		Reason:      reason,
	}
}

func (e SaleCancelled) EventName() string      { return EventSaleCancelled }
func (e SaleCancelled) AggregateID() uuid.UUID { return e.SaleID }

type ItemCancelled struct {
	eventHeader
	SaleID      uuid.UUID `json:"sale_id"`
	SaleNumber  string    `json:"sale_number"`
	ItemID      uuid.UUID `json:"item_id"`
	ProductName string    `json:"product_name"`
	Reason      string    `json:"reason"`
}

func NewItemCancelled(s *Sale, item SaleItem, reason string) ItemCancelled {
	return ItemCancelled{
		eventHeader: newEventHeader(),
		SaleID:      s.ID(),
		SaleNumber:  s.SaleNumber(),
		ItemID:      item.ID(),
		ProductName: item.ProductName(),
		Reason:      reason,
	}
}

func (e ItemCancelled) EventName() string      { return EventItemCancelled }
func (e ItemCancelled) AggregateID() uuid.UUID { return e.SaleID }
