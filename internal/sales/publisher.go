package sales

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes every event to the logger instead of a broker.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	fields := []zap.Field{
		zap.String("event", event.EventName()),
		zap.String("event_id", event.EventID().String()),
		zap.String("sale_id", event.AggregateID().String()),
		zap.Time("timestamp", event.OccurredAt()),
	}

	switch e := event.(type) {
	case SaleCreated:
		fields = append(fields,
			zap.String("sale_number", e.SaleNumber),
			zap.String("customer", e.CustomerName),
			zap.String("branch", e.BranchName),
		)
	case SaleModified:
		fields = append(fields, zap.String("sale_number", e.SaleNumber))
	case SaleCancelled:
		fields = append(fields, zap.String("sale_number", e.SaleNumber), zap.String("reason", e.Reason))
	case ItemCancelled:
		fields = append(fields,
			zap.String("sale_number", e.SaleNumber),
			zap.String("item_id", e.ItemID.String()),
			zap.String("product", e.ProductName),
			zap.String("reason", e.Reason),
		)
	}

	p.logger.Info("event published", fields...)
	return nil
}

// MultiPublisher fans an event out to several publishers and reports the first error.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
