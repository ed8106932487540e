package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a Money is created without a currency.
const DefaultCurrency = "BRL"

// ErrCurrencyMismatch is returned when two values of different currencies are combined or compared.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an immutable amount tagged with a currency code.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money. An empty currency falls back to DefaultCurrency.
// The sign of amount is not checked; callers that forbid negatives must do so.
func New(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return New(decimal.Zero, currency)
}

// Parse builds a Money from a decimal string such as "1500.00".
func Parse(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return New(d, currency), nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other, "add"); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.Currency()}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other, "subtract"); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.Currency()}, nil
}

// Mul scales m by a dimensionless factor. It never fails.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.Currency()}
}

// Cmp returns -1, 0 or +1 when m is less than, equal to or greater than other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other, "compare"); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports whether both amount and currency match.
// 1500 and 1500.00 are equal amounts.
func (m Money) Equal(other Money) bool {
	return m.Currency() == other.Currency() && m.amount.Equal(other.amount)
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// String formats the value as "1234.56 BRL".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.Currency())
}

func (m Money) sameCurrency(other Money, op string) error {
	if m.Currency() != other.Currency() {
		return fmt.Errorf("%w: cannot %s %s and %s", ErrCurrencyMismatch, op, m.Currency(), other.Currency())
	}
	return nil
}
