package gormstore

import (
	"github.com/google/uuid"

	"retail_sales/internal/money"
	"retail_sales/internal/sales"
)

func fromDomainCustomer(c *sales.Customer) CustomerModel {
	r := c.Record()
	return CustomerModel{
		ID:         r.ID,
		ExternalID: r.ExternalID,
		Name:       r.Name,
		Email:      r.Email,
		Document:   r.Document,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toDomainCustomer(m *CustomerModel) (*sales.Customer, error) {
	return sales.RestoreCustomer(sales.CustomerRecord{
		ID:         m.ID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		Email:      m.Email,
		Document:   m.Document,
	})
}

func fromDomainBranch(b *sales.Branch) BranchModel {
	r := b.Record()
	return BranchModel{
		ID:         r.ID,
		ExternalID: r.ExternalID,
		Name:       r.Name,
		Location:   r.Location,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toDomainBranch(m *BranchModel) (*sales.Branch, error) {
	return sales.RestoreBranch(sales.BranchRecord{
		ID:         m.ID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		Location:   m.Location,
	})
}

func fromDomainProduct(p *sales.Product) ProductModel {
	r := p.Record()
	return ProductModel{
		ID:          r.ID,
		ExternalID:  r.ExternalID,
		Name:        r.Name,
		Description: r.Description,
		BasePrice:   r.BasePrice.Amount(),
		Currency:    r.BasePrice.Currency(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toDomainProduct(m *ProductModel) (*sales.Product, error) {
	return sales.RestoreProduct(sales.ProductRecord{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ExternalID:  m.ExternalID,
		Name:        m.Name,
		Description: m.Description,
		BasePrice:   money.New(m.BasePrice, m.Currency),
	})
}

// fromDomainSale converts the aggregate without its associations; customer,
// branch and product rows are owned by their own repositories.
func fromDomainSale(s *sales.Sale) SaleModel {
	r := s.Record()
	m := SaleModel{
		ID:         r.ID,
		SaleNumber: r.SaleNumber,
		SaleDate:   r.SaleDate,
		CustomerID: r.CustomerID,
		BranchID:   r.BranchID,
		Cancelled:  r.Cancelled,
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Items:      make([]SaleItemModel, len(r.Items)),
	}
	for i, item := range r.Items {
		ir := item.Record()
		m.Items[i] = SaleItemModel{
			ID:                 ir.ID,
			SaleID:             ir.SaleID,
			Position:           i,
			ProductID:          ir.ProductID,
			Quantity:           ir.Quantity,
			UnitPrice:          ir.UnitPrice.Amount(),
			Currency:           ir.UnitPrice.Currency(),
			DiscountPercentage: ir.DiscountPercentage,
			Cancelled:          ir.Cancelled,
			CreatedAt:          ir.CreatedAt,
			UpdatedAt:          ir.UpdatedAt,
		}
	}
	return m
}

// toDomainSale rebuilds the aggregate from a row loaded with its associations.
// Associations that were not loaded stay nil.
func toDomainSale(m *SaleModel) (*sales.Sale, error) {
	var (
		customer *sales.Customer
		branch   *sales.Branch
		err      error
	)
	if m.Customer.ID != uuid.Nil {
		if customer, err = toDomainCustomer(&m.Customer); err != nil {
			return nil, err
		}
	}
	if m.Branch.ID != uuid.Nil {
		if branch, err = toDomainBranch(&m.Branch); err != nil {
			return nil, err
		}
	}

	items := make([]*sales.SaleItem, len(m.Items))
	for i := range m.Items {
		im := &m.Items[i]
		var product *sales.Product
		if im.Product.ID != uuid.Nil {
			if product, err = toDomainProduct(&im.Product); err != nil {
				return nil, err
			}
		}
		if items[i], err = sales.RestoreSaleItem(sales.SaleItemRecord{
			ID:                 im.ID,
			CreatedAt:          im.CreatedAt,
			UpdatedAt:          im.UpdatedAt,
			SaleID:             im.SaleID,
			ProductID:          im.ProductID,
			Product:            product,
			Quantity:           im.Quantity,
			UnitPrice:          money.New(im.UnitPrice, im.Currency),
			DiscountPercentage: im.DiscountPercentage,
			Cancelled:          im.Cancelled,
		}); err != nil {
			return nil, err
		}
	}

	return sales.RestoreSale(sales.SaleRecord{
		ID:         m.ID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		SaleNumber: m.SaleNumber,
		SaleDate:   m.SaleDate,
		CustomerID: m.CustomerID,
		Customer:   customer,
		BranchID:   m.BranchID,
		Branch:     branch,
		Cancelled:  m.Cancelled,
		Items:      items,
		Version:    m.Version,
	})
}
