package gormstore

import (
	"gorm.io/gorm"

	"retail_sales/internal/sales"
)

// New returns the repositories backed by db. The schema must already be migrated.
func New(db *gorm.DB) sales.Storage {
	return sales.Storage{
		Sales:     NewSaleRepository(db),
		Customers: NewCustomerRepository(db),
		Branches:  NewBranchRepository(db),
		Products:  NewProductRepository(db),
	}
}
