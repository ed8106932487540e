package sales

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// now is the clock used to stamp entities. Tests may replace it.
var now = func() time.Time { return time.Now().UTC() }

// entity carries the identity fields shared by every persisted type.
type entity struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt *time.Time
}

func newEntity() entity {
	return entity{id: uuid.New(), createdAt: now()}
}

func restoreEntity(id uuid.UUID, createdAt time.Time, updatedAt *time.Time) entity {
	e := entity{id: id, createdAt: createdAt}
	if updatedAt != nil {
		t := *updatedAt
		e.updatedAt = &t
	}
	return e
}

func (e *entity) ID() uuid.UUID { return e.id }

func (e *entity) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns nil until the first mutation.
func (e *entity) UpdatedAt() *time.Time {
	if e.updatedAt == nil {
		return nil
	}
	t := *e.updatedAt
	return &t
}

func (e *entity) touch() {
	t := now()
	e.updatedAt = &t
}

// Identified is implemented by every entity in this package.
type Identified interface {
	ID() uuid.UUID
}

// SameEntity reports whether a and b carry the same identifier.
// Field values are never compared.
func SameEntity(a, b Identified) bool {
	if isNil(a) || isNil(b) {
		return false
	}
	return a.ID() == b.ID()
}

// isNil also catches typed nil pointers such as (*Sale)(nil).
func isNil(v Identified) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// copyOf returns a detached copy of an entity, or nil. Entities hold only
// values and touch replaces updatedAt, so a struct copy shares nothing.
func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
