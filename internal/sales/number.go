package sales

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	saleNumberDateLayout = "20060102"
	saleNumberSeqDigits  = 6

	// MaxSaleSequence is the last sequence that fits in a sale number.
	MaxSaleSequence = 999999
)

// NumberGenerator produces sale numbers for new sales.
type NumberGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// NumberSource looks up the greatest sale number that starts with prefix.
// It returns "" when there is none.
type NumberSource interface {
	LastSaleNumber(ctx context.Context, prefix string) (string, error)
}

// FormatSaleNumber renders the "{YYYYMMDD}{6-digit sequence}" sale number.
func FormatSaleNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%0*d", day.UTC().Format(saleNumberDateLayout), saleNumberSeqDigits, seq)
}

// StoreNumberGenerator derives the next number from the last one persisted today.
// Two concurrent calls can produce the same number; the unique index on the
// sale number rejects the loser and Service.CreateSale retries.
type StoreNumberGenerator struct {
	source NumberSource
	clock  func() time.Time
}

func NewStoreNumberGenerator(source NumberSource) *StoreNumberGenerator {
	return &StoreNumberGenerator{source: source, clock: now}
}

// WithClock replaces the time source. Intended for tests.
func (g *StoreNumberGenerator) WithClock(clock func() time.Time) *StoreNumberGenerator {
	g.clock = clock
	return g
}

// Generate returns the next sale number for the current UTC day, starting at 000001.
func (g *StoreNumberGenerator) Generate(ctx context.Context) (string, error) {
	today := g.clock().UTC()
	prefix := today.Format(saleNumberDateLayout)

	last, err := g.source.LastSaleNumber(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read last sale number: %w", err)
	}

	var seq int64 = 1
	if last != "" && strings.HasPrefix(last, prefix) {
		n, err := strconv.ParseInt(last[len(prefix):], 10, 64)
		if err != nil {
			return "", fmt.Errorf("last sale number %q has a non-numeric sequence", last)
		}
		seq = n + 1
	}
	if seq > MaxSaleSequence {
		return "", fmt.Errorf("%w: no sale numbers left for %s", ErrSequenceExhausted, prefix)
	}
	return FormatSaleNumber(today, seq), nil
}
