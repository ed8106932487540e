package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retail_sales/internal/sales"
)

// SaleRepository is the GORM implementation of sales.SaleRepository.
type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// withDetails preloads customer, branch, items in insertion order and each item's product.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Branch").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Items.Product")
}

func (r *SaleRepository) Get(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model SaleModel
	err := withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %s", sales.ErrNotFound, id)
		}
		return nil, err
	}
	return toDomainSale(&model)
}

// List returns matching sales ordered by sale number.
func (r *SaleRepository) List(ctx context.Context, filter sales.SaleFilter) ([]*sales.Sale, error) {
	q := withDetails(r.db.WithContext(ctx)).Model(&SaleModel{})
	if filter.CustomerID != uuid.Nil {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.BranchID != uuid.Nil {
		q = q.Where("branch_id = ?", filter.BranchID)
	}
	if !filter.From.IsZero() {
		q = q.Where("sale_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("sale_date <= ?", filter.To)
	}

	var models []SaleModel
	if err := q.Order("sale_number").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*sales.Sale, 0, len(models))
	for i := range models {
		s, err := toDomainSale(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Add inserts the sale and its items in one transaction.
func (r *SaleRepository) Add(ctx context.Context, sale *sales.Sale) error {
	model := fromDomainSale(sale)
	items := model.Items
	model.Items = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&model).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", sales.ErrDuplicateSaleNumber, sale.SaleNumber())
	}
	return err
}

// Update writes the sale and upserts its items when the stored version matches,
// then bumps the version.
func (r *SaleRepository) Update(ctx context.Context, sale *sales.Sale) error {
	model := fromDomainSale(sale)
	next := model.Version + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&SaleModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]any{
				"cancelled":  model.Cancelled,
				"updated_at": model.UpdatedAt,
				"version":    next,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&SaleModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: sale %s", sales.ErrNotFound, model.ID)
			}
			return fmt.Errorf("%w: sale %s was modified concurrently", sales.ErrConflict, model.SaleNumber)
		}

		if len(model.Items) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"position", "quantity", "discount_percentage", "cancelled", "updated_at",
				}),
			}).
			Create(&model.Items).Error
	})
	if err != nil {
		return err
	}
	sale.SetVersion(next)
	return nil
}

// LastSaleNumber returns the greatest sale number starting with prefix.
func (r *SaleRepository) LastSaleNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&SaleModel{}).
		Where("sale_number LIKE ?", prefix+"%").
		Order("sale_number DESC").
		Limit(1).
		Pluck("sale_number", &numbers).Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}
