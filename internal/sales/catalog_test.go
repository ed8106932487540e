package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCatalog_Customers(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(NewLocalStorage(), zaptest.NewLogger(t))

	created, err := c.CreateCustomer(ctx, CustomerInput{ExternalID: "CUST123", Name: "João Silva", Email: "joao@email.com"})
	require.NoError(t, err)

	_, err = c.CreateCustomer(ctx, CustomerInput{ExternalID: "CUST123", Name: "Outro"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = c.CreateCustomer(ctx, CustomerInput{ExternalID: "", Name: "Sem id"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	updated, err := c.UpdateCustomer(ctx, created.ID(), CustomerInput{Name: "João S.", Email: " "})
	require.NoError(t, err)
	assert.Equal(t, "João S.", updated.Name())
	assert.Equal(t, "joao@email.com", updated.Email(), "blank fields are kept")
	assert.NotNil(t, updated.UpdatedAt())

	got, err := c.GetCustomer(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, "João S.", got.Name())

	all, err := c.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, c.RemoveCustomer(ctx, created.ID()))
	_, err = c.GetCustomer(ctx, created.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.RemoveCustomer(ctx, created.ID()), ErrNotFound)
}

func TestCatalog_Branches(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(NewLocalStorage(), zaptest.NewLogger(t))

	created, err := c.CreateBranch(ctx, BranchInput{ExternalID: "BR001", Name: "Loja Central", Location: "Av. Paulista"})
	require.NoError(t, err)

	updated, err := c.UpdateBranch(ctx, created.ID(), BranchInput{Location: "Rua Augusta"})
	require.NoError(t, err)
	assert.Equal(t, "Loja Central", updated.Name())
	assert.Equal(t, "Rua Augusta", updated.Location())

	_, err = c.UpdateBranch(ctx, uuid.New(), BranchInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := c.ListBranches(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCatalog_Products(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(NewLocalStorage(), zaptest.NewLogger(t))

	_, err := c.CreateProduct(ctx, ProductInput{ExternalID: "P", Name: "Sem preço"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.CreateProduct(ctx, ProductInput{ExternalID: "P", Name: "Negativo", BasePrice: decimalPtr("-1")})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.CreateProduct(ctx, ProductInput{ExternalID: "P", Name: "Fracionado", BasePrice: decimalPtr("1.23456")})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	created, err := c.CreateProduct(ctx, ProductInput{ExternalID: "PROD001", Name: "Smartphone", BasePrice: decimalPtr("1500.00")})
	require.NoError(t, err)
	assert.Equal(t, "1500.00 BRL", created.BasePrice().String())

	updated, err := c.UpdateProduct(ctx, created.ID(), ProductInput{BasePrice: decimalPtr("-5")})
	require.NoError(t, err)
	assert.Equal(t, "1500.00 BRL", updated.BasePrice().String(), "negative price ignored")

	_, err = c.UpdateProduct(ctx, created.ID(), ProductInput{BasePrice: decimalPtr("1499.99999")})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	updated, err = c.UpdateProduct(ctx, created.ID(), ProductInput{Description: "XYZ", BasePrice: decimalPtr("1399.90")})
	require.NoError(t, err)
	assert.Equal(t, "1399.90 BRL", updated.BasePrice().String())
	assert.Equal(t, "XYZ", updated.Description())

	got, err := c.GetProduct(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, "1399.90 BRL", got.BasePrice().String())

	all, err := c.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, c.RemoveProduct(ctx, created.ID()))
}

func TestLocalStorage_CopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewLocalSaleRepository()

	sale := f.sale(t)
	require.NoError(t, repo.Add(ctx, sale))

	// Mutating after Add must not leak into the store.
	_, err := sale.AddItem(f.phone, 1, brl("10"))
	require.NoError(t, err)

	loaded, err := repo.Get(ctx, sale.ID())
	require.NoError(t, err)
	assert.Empty(t, loaded.Items())

	loaded.Cancel()
	again, err := repo.Get(ctx, sale.ID())
	require.NoError(t, err)
	assert.False(t, again.Cancelled())
}

func TestLocalStorage_CopiesReferencedEntities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewLocalSaleRepository()

	sale := f.sale(t)
	_, err := sale.AddItem(f.phone, 1, brl("1500"))
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, sale))

	got, err := repo.Get(ctx, sale.ID())
	require.NoError(t, err)
	got.Customer().Update("Mutated", "", "")
	got.Branch().Update("Mutated", "")
	got.Items()[0].Product().Update("MutatedProduct", "", nil)

	stored, err := repo.Get(ctx, sale.ID())
	require.NoError(t, err)
	assert.Equal(t, "João Silva", stored.Customer().Name())
	assert.Equal(t, "Loja Central", stored.Branch().Name())
	assert.Equal(t, "Smartphone", stored.Items()[0].Product().Name())

	listed, err := repo.List(ctx, SaleFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Customer().Update("Listed", "", "")

	stored, err = repo.Get(ctx, sale.ID())
	require.NoError(t, err)
	assert.Equal(t, "João Silva", stored.Customer().Name())
}

func TestLocalStorage_DuplicateSaleNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewLocalSaleRepository()

	require.NoError(t, repo.Add(ctx, f.sale(t)))
	assert.ErrorIs(t, repo.Add(ctx, f.sale(t)), ErrDuplicateSaleNumber)

	last, err := repo.LastSaleNumber(ctx, "20250402")
	require.NoError(t, err)
	assert.Equal(t, "20250402000001", last)

	last, err = repo.LastSaleNumber(ctx, "20250403")
	require.NoError(t, err)
	assert.Empty(t, last)
}
