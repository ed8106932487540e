package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Branch is a store location where sales happen.
type Branch struct {
	entity
	externalID string
	name       string
	location   string
}

// BranchRecord holds the persisted fields of a Branch.
type BranchRecord struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	ExternalID string
	Name       string
	Location   string
}

func NewBranch(externalID, name, location string) (*Branch, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("%w: branch external id cannot be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: branch name cannot be empty", ErrInvalidArgument)
	}
	return &Branch{
		entity:     newEntity(),
		externalID: externalID,
		name:       name,
		location:   location,
	}, nil
}

func RestoreBranch(r BranchRecord) (*Branch, error) {
	if r.ID == uuid.Nil || r.ExternalID == "" {
		return nil, fmt.Errorf("%w: branch record missing identifiers", ErrInvalidArgument)
	}
	return &Branch{
		entity:     restoreEntity(r.ID, r.CreatedAt, r.UpdatedAt),
		externalID: r.ExternalID,
		name:       r.Name,
		location:   r.Location,
	}, nil
}

func (b *Branch) ExternalID() string { return b.externalID }
func (b *Branch) Name() string       { return b.name }
func (b *Branch) Location() string   { return b.location }

// Update overwrites only the non-blank fields.
func (b *Branch) Update(name, location string) {
	if strings.TrimSpace(name) != "" {
		b.name = name
	}
	if strings.TrimSpace(location) != "" {
		b.location = location
	}
	b.touch()
}

func (b *Branch) Record() BranchRecord {
	return BranchRecord{
		ID:         b.id,
		CreatedAt:  b.createdAt,
		UpdatedAt:  b.UpdatedAt(),
		ExternalID: b.externalID,
		Name:       b.name,
		Location:   b.location,
	}
}
