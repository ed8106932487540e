package gormstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel maps the customers table.
type CustomerModel struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	ExternalID string     `gorm:"size:64;not null;uniqueIndex"`
	Name       string     `gorm:"size:255;not null"`
	Email      string     `gorm:"size:255"`
	Document   string     `gorm:"size:64"`
	CreatedAt  time.Time  `gorm:"autoCreateTime:false;not null"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false"`
}

func (CustomerModel) TableName() string { return "customers" }

// BranchModel maps the branches table.
type BranchModel struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	ExternalID string     `gorm:"size:64;not null;uniqueIndex"`
	Name       string     `gorm:"size:255;not null"`
	Location   string     `gorm:"size:255"`
	CreatedAt  time.Time  `gorm:"autoCreateTime:false;not null"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false"`
}

func (BranchModel) TableName() string { return "branches" }

// ProductModel maps the products table.
type ProductModel struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey"`
	ExternalID  string          `gorm:"size:64;not null;uniqueIndex"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency    string          `gorm:"size:3;not null;default:'BRL'"`
	CreatedAt   time.Time       `gorm:"autoCreateTime:false;not null"`
	UpdatedAt   *time.Time      `gorm:"autoUpdateTime:false"`
}

func (ProductModel) TableName() string { return "products" }

// SaleModel maps the sales table. SaleNumber carries a unique index so that
// concurrently generated duplicates are rejected at insert time.
type SaleModel struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey"`
	SaleNumber string          `gorm:"size:32;not null;uniqueIndex"`
	SaleDate   time.Time       `gorm:"not null;index"`
	CustomerID uuid.UUID       `gorm:"type:char(36);not null;index"`
	Customer   CustomerModel   `gorm:"foreignKey:CustomerID"`
	BranchID   uuid.UUID       `gorm:"type:char(36);not null;index"`
	Branch     BranchModel     `gorm:"foreignKey:BranchID"`
	Cancelled  bool            `gorm:"not null;default:false"`
	Version    int             `gorm:"not null;default:1"`
	CreatedAt  time.Time       `gorm:"autoCreateTime:false;not null"`
	UpdatedAt  *time.Time      `gorm:"autoUpdateTime:false"`
	Items      []SaleItemModel `gorm:"foreignKey:SaleID"`
}

func (SaleModel) TableName() string { return "sales" }

// SaleItemModel maps the sale_items table. Position keeps insertion order.
type SaleItemModel struct {
	ID                 uuid.UUID       `gorm:"type:char(36);primaryKey"`
	SaleID             uuid.UUID       `gorm:"type:char(36);not null;index"`
	Position           int             `gorm:"not null"`
	ProductID          uuid.UUID       `gorm:"type:char(36);not null;index"`
	Product            ProductModel    `gorm:"foreignKey:ProductID"`
	Quantity           int             `gorm:"not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency           string          `gorm:"size:3;not null;default:'BRL'"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Cancelled          bool            `gorm:"not null;default:false"`
	CreatedAt          time.Time       `gorm:"autoCreateTime:false;not null"`
	UpdatedAt          *time.Time      `gorm:"autoUpdateTime:false"`
}

func (SaleItemModel) TableName() string { return "sale_items" }
