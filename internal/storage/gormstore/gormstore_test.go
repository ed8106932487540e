package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"retail_sales/internal/money"
	"retail_sales/internal/sales"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "sales.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := Open(DriverSQLite, dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type seed struct {
	storage  sales.Storage
	customer *sales.Customer
	branch   *sales.Branch
	phone    *sales.Product
	tablet   *sales.Product
}

func brl(s string) money.Money {
	return money.New(decimal.RequireFromString(s), money.DefaultCurrency)
}

func newSeed(t *testing.T) seed {
	t.Helper()
	ctx := context.Background()
	s := seed{storage: New(openTestDB(t))}

	var err error
	s.customer, err = sales.NewCustomer("CUST123", "João Silva", "joao@email.com", "12345678900")
	require.NoError(t, err)
	require.NoError(t, s.storage.Customers.Add(ctx, s.customer))

	s.branch, err = sales.NewBranch("BR001", "Loja Central", "Av. Paulista, 1000")
	require.NoError(t, err)
	require.NoError(t, s.storage.Branches.Add(ctx, s.branch))

	s.phone, err = sales.NewProduct("PROD001", "Smartphone", "Smartphone XYZ", brl("1500.00"))
	require.NoError(t, err)
	require.NoError(t, s.storage.Products.Add(ctx, s.phone))

	s.tablet, err = sales.NewProduct("PROD002", "Tablet", "Tablet ABC", brl("2500.00"))
	require.NoError(t, err)
	require.NoError(t, s.storage.Products.Add(ctx, s.tablet))
	return s
}

func (s seed) newSale(t *testing.T, number string) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(number, s.customer, s.branch)
	require.NoError(t, err)
	return sale
}

func TestSaleRepository_AddAndGet(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)

	sale := s.newSale(t, "20250402000001")
	_, err := sale.AddItem(s.phone, 5, brl("1500.00"))
	require.NoError(t, err)
	_, err = sale.AddItem(s.tablet, 1, brl("2500.00"))
	require.NoError(t, err)
	require.NoError(t, s.storage.Sales.Add(ctx, sale))

	got, err := s.storage.Sales.Get(ctx, sale.ID())
	require.NoError(t, err)
	assert.Equal(t, "20250402000001", got.SaleNumber())
	assert.Equal(t, 1, got.Version())
	require.NotNil(t, got.Customer())
	assert.Equal(t, "João Silva", got.Customer().Name())
	require.NotNil(t, got.Branch())
	assert.Equal(t, "Loja Central", got.Branch().Name())
	assert.WithinDuration(t, sale.SaleDate(), got.SaleDate(), time.Millisecond)

	items := got.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Smartphone", items[0].ProductName(), "items keep insertion order")
	assert.Equal(t, "Tablet", items[1].ProductName())
	assert.True(t, items[0].DiscountPercentage().Equal(decimal.NewFromInt(10)))

	totalAmount, err := got.TotalAmount()
	require.NoError(t, err)
	assert.True(t, totalAmount.Equal(brl("9250")), totalAmount.String())
}

func TestSaleRepository_GetMissing(t *testing.T) {
	s := newSeed(t)
	_, err := s.storage.Sales.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sales.ErrNotFound)
}

func TestSaleRepository_DuplicateSaleNumber(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)

	require.NoError(t, s.storage.Sales.Add(ctx, s.newSale(t, "20250402000001")))
	err := s.storage.Sales.Add(ctx, s.newSale(t, "20250402000001"))
	assert.ErrorIs(t, err, sales.ErrDuplicateSaleNumber)
}

func TestSaleRepository_UpdateBumpsVersionAndUpsertsItems(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)

	sale := s.newSale(t, "20250402000001")
	item, err := sale.AddItem(s.phone, 2, brl("1500.00"))
	require.NoError(t, err)
	require.NoError(t, s.storage.Sales.Add(ctx, sale))

	loaded, err := s.storage.Sales.Get(ctx, sale.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.UpdateItem(item.ID(), 10))
	_, err = loaded.AddItem(s.tablet, 4, brl("2500.00"))
	require.NoError(t, err)
	require.NoError(t, s.storage.Sales.Update(ctx, loaded))
	assert.Equal(t, 2, loaded.Version())

	again, err := s.storage.Sales.Get(ctx, sale.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version())
	items := again.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 10, items[0].Quantity())
	assert.True(t, items[0].DiscountPercentage().Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 4, items[1].Quantity())
	assert.NotNil(t, again.UpdatedAt())
}

func TestSaleRepository_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)

	sale := s.newSale(t, "20250402000001")
	require.NoError(t, s.storage.Sales.Add(ctx, sale))

	first, err := s.storage.Sales.Get(ctx, sale.ID())
	require.NoError(t, err)
	second, err := s.storage.Sales.Get(ctx, sale.ID())
	require.NoError(t, err)

	first.Cancel()
	require.NoError(t, s.storage.Sales.Update(ctx, first))

	_, err = second.AddItem(s.phone, 1, brl("1500.00"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.storage.Sales.Update(ctx, second), sales.ErrConflict)

	stored, err := s.storage.Sales.Get(ctx, sale.ID())
	require.NoError(t, err)
	assert.True(t, stored.Cancelled())
	assert.Empty(t, stored.Items())
}

func TestSaleRepository_UpdateMissing(t *testing.T) {
	s := newSeed(t)
	err := s.storage.Sales.Update(context.Background(), s.newSale(t, "20250402000001"))
	assert.ErrorIs(t, err, sales.ErrNotFound)
}

func TestSaleRepository_LastSaleNumber(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)

	last, err := s.storage.Sales.LastSaleNumber(ctx, "20250402")
	require.NoError(t, err)
	assert.Empty(t, last)

	for _, n := range []string{"20250402000002", "20250402000010", "20250401000099"} {
		require.NoError(t, s.storage.Sales.Add(ctx, s.newSale(t, n)))
	}

	last, err = s.storage.Sales.LastSaleNumber(ctx, "20250402")
	require.NoError(t, err)
	assert.Equal(t, "20250402000010", last)
}

func TestSaleRepository_List(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)

	other, err := sales.NewCustomer("CUST999", "Maria", "", "")
	require.NoError(t, err)
	require.NoError(t, s.storage.Customers.Add(ctx, other))

	a := s.newSale(t, "20250402000002")
	b := s.newSale(t, "20250402000001")
	c, err := sales.NewSale("20250402000003", other, s.branch)
	require.NoError(t, err)
	for _, sale := range []*sales.Sale{a, b, c} {
		require.NoError(t, s.storage.Sales.Add(ctx, sale))
	}

	all, err := s.storage.Sales.List(ctx, sales.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "20250402000001", all[0].SaleNumber())
	assert.Equal(t, "20250402000003", all[2].SaleNumber())

	mine, err := s.storage.Sales.List(ctx, sales.SaleFilter{CustomerID: s.customer.ID()})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	future, err := s.storage.Sales.List(ctx, sales.SaleFilter{From: time.Now().UTC().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)

	past, err := s.storage.Sales.List(ctx, sales.SaleFilter{To: time.Now().UTC().Add(time.Hour), BranchID: s.branch.ID()})
	require.NoError(t, err)
	assert.Len(t, past, 3)
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)
	repo := s.storage.Products

	got, err := repo.GetByExternalID(ctx, "PROD001")
	require.NoError(t, err)
	assert.Equal(t, s.phone.ID(), got.ID())
	assert.True(t, got.BasePrice().Equal(brl("1500")))

	dup, err := sales.NewProduct("PROD001", "Clone", "", brl("1"))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Add(ctx, dup), sales.ErrConflict)

	price := brl("1399.90")
	got.Update("Smartphone Pro", "", &price)
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.Get(ctx, s.phone.ID())
	require.NoError(t, err)
	assert.Equal(t, "Smartphone Pro", again.Name())
	assert.Equal(t, "Smartphone XYZ", again.Description())
	assert.True(t, again.BasePrice().Equal(price))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "PROD001", all[0].ExternalID())

	require.NoError(t, repo.Remove(ctx, s.tablet.ID()))
	_, err = repo.Get(ctx, s.tablet.ID())
	assert.ErrorIs(t, err, sales.ErrNotFound)
	assert.ErrorIs(t, repo.Remove(ctx, s.tablet.ID()), sales.ErrNotFound)

	_, err = s.storage.Customers.GetByExternalID(ctx, "NOPE")
	assert.ErrorIs(t, err, sales.ErrNotFound)
}

func TestService_OnSQLite(t *testing.T) {
	ctx := context.Background()
	s := newSeed(t)
	svc := sales.NewService(s.storage, nil, zaptest.NewLogger(t))

	created, err := svc.CreateSale(ctx, sales.CreateSaleInput{
		CustomerExternalID: "CUST123",
		BranchExternalID:   "BR001",
		Items: []sales.ItemInput{
			{ProductExternalID: "PROD001", Quantity: 5, UnitPrice: decimal.RequireFromString("1500.00")},
		},
	})
	require.NoError(t, err)

	next, err := svc.CreateSale(ctx, sales.CreateSaleInput{CustomerExternalID: "CUST123", BranchExternalID: "BR001"})
	require.NoError(t, err)
	assert.Greater(t, next.SaleNumber(), created.SaleNumber())

	cancelled, err := svc.CancelSale(ctx, created.ID(), "customer request")
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled())

	stored, err := svc.GetSale(ctx, created.ID())
	require.NoError(t, err)
	assert.True(t, stored.Cancelled())
	require.Len(t, stored.Items(), 1)
	assert.True(t, stored.Items()[0].Cancelled())
}
