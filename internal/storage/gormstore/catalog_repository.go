package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retail_sales/internal/sales"
)

// CatalogRepository is a GORM sales.CatalogRepository for one reference
// entity type T stored as model M.
type CatalogRepository[T any, M any] struct {
	db       *gorm.DB
	kind     string
	toModel  func(T) M
	toDomain func(*M) (T, error)
}

func newCatalogRepository[T any, M any](db *gorm.DB, kind string, toModel func(T) M, toDomain func(*M) (T, error)) *CatalogRepository[T, M] {
	return &CatalogRepository[T, M]{db: db, kind: kind, toModel: toModel, toDomain: toDomain}
}

func NewCustomerRepository(db *gorm.DB) *CatalogRepository[*sales.Customer, CustomerModel] {
	return newCatalogRepository(db, "customer", fromDomainCustomer, toDomainCustomer)
}

func NewBranchRepository(db *gorm.DB) *CatalogRepository[*sales.Branch, BranchModel] {
	return newCatalogRepository(db, "branch", fromDomainBranch, toDomainBranch)
}

func NewProductRepository(db *gorm.DB) *CatalogRepository[*sales.Product, ProductModel] {
	return newCatalogRepository(db, "product", fromDomainProduct, toDomainProduct)
}

func (r *CatalogRepository[T, M]) first(ctx context.Context, key string, query string, arg any) (T, error) {
	var (
		model M
		zero  T
	)
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%w: %s %s", sales.ErrNotFound, r.kind, key)
		}
		return zero, err
	}
	return r.toDomain(&model)
}

func (r *CatalogRepository[T, M]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	return r.first(ctx, id.String(), "id = ?", id)
}

func (r *CatalogRepository[T, M]) GetByExternalID(ctx context.Context, externalID string) (T, error) {
	return r.first(ctx, externalID, "external_id = ?", externalID)
}

// List returns all entities ordered by external identifier.
func (r *CatalogRepository[T, M]) List(ctx context.Context) ([]T, error) {
	var models []M
	if err := r.db.WithContext(ctx).Order("external_id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]T, 0, len(models))
	for i := range models {
		v, err := r.toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *CatalogRepository[T, M]) Add(ctx context.Context, v T) error {
	model := r.toModel(v)
	err := r.db.WithContext(ctx).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s already exists", sales.ErrConflict, r.kind)
	}
	return err
}

// Update overwrites every column of the stored row.
func (r *CatalogRepository[T, M]) Update(ctx context.Context, v T) error {
	model := r.toModel(v)
	res := r.db.WithContext(ctx).Model(&model).Select("*").Updates(&model)
	switch {
	case errors.Is(res.Error, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", sales.ErrConflict, r.kind)
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return fmt.Errorf("%w: %s", sales.ErrNotFound, r.kind)
	}
	return nil
}

// Remove deletes the row. Rows still referenced by sales are reported as ErrConflict.
func (r *CatalogRepository[T, M]) Remove(ctx context.Context, id uuid.UUID) error {
	var model M
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	switch {
	case errors.Is(res.Error, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s %s is referenced by sales", sales.ErrConflict, r.kind, id)
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return fmt.Errorf("%w: %s %s", sales.ErrNotFound, r.kind, id)
	}
	return nil
}
