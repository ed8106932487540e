package sales

import (
	"errors"

	"retail_sales/internal/money"
)

// Error kinds. Operations wrap one of these with context; callers match with errors.Is.
var (
	// ErrInvalidArgument is returned for malformed input detected before any state change.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when the lifecycle state does not allow the operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound is returned when a sale, item, customer, branch or product does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write loses an optimistic-concurrency race
	// or collides with a unique external identifier.
	ErrConflict = errors.New("conflict")

	// ErrDuplicateSaleNumber is returned by storage when the sale number is already taken.
	ErrDuplicateSaleNumber = errors.New("duplicate sale number")

	// ErrSequenceExhausted is returned when every sale number of the day has been issued.
	ErrSequenceExhausted = errors.New("sale sequence exhausted")

	// ErrCurrencyMismatch aliases the money error so callers only import this package.
	ErrCurrencyMismatch = money.ErrCurrencyMismatch
)
