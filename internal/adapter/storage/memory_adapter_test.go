package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

func seedMemory(t *testing.T, m *MemoryAdapter, customers []domain.Customer, products []domain.Product) {
	t.Helper()
	err := m.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		for _, c := range customers {
			if err := tx.InsertCustomer(ctx, c); err != nil {
				return err
			}
		}
		for _, p := range products {
			if err := tx.InsertProduct(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryInTx_RollbackDiscardsWrites(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	boom := errors.New("boom")
	err := m.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		require.NoError(t, tx.InsertCustomer(ctx, domain.Customer{ID: "c1", Name: "A", Email: "a@x.com"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := m.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryInTx_CanceledContext(t *testing.T) {
	m := NewMemoryAdapter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := m.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemoryInsertCustomer_DuplicateEmail(t *testing.T) {
	m := NewMemoryAdapter()
	seedMemory(t, m, []domain.Customer{{ID: "c1", Name: "A", Email: "a@x.com"}}, nil)

	err := m.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		return tx.InsertCustomer(ctx, domain.Customer{ID: "c2", Name: "B", Email: "a@x.com"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestMemoryInsertCustomer_DuplicateEmailIgnoresCase(t *testing.T) {
	m := NewMemoryAdapter()
	seedMemory(t, m, []domain.Customer{{ID: "c1", Name: "A", Email: "a@x.com"}}, nil)

	err := m.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		exists, err := tx.CustomerEmailExists(ctx, "A@X.COM")
		require.NoError(t, err)
		assert.True(t, exists)
		return tx.InsertCustomer(ctx, domain.Customer{ID: "c2", Name: "B", Email: "A@x.com"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	got, err := m.ListCustomers(context.Background(), domain.CustomerFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, customerIDs(got))
}

func TestMemoryListCustomers_FilterAndSort(t *testing.T) {
	m := NewMemoryAdapter()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMemory(t, m, []domain.Customer{
		{ID: "c1", Name: "Charlie", Email: "charlie@example.com", CreatedAt: base},
		{ID: "c2", Name: "alice", Email: "alice@example.com", CreatedAt: base.Add(time.Hour)},
		{ID: "c3", Name: "Bob", Email: "bob@other.org", CreatedAt: base.Add(2 * time.Hour)},
	}, nil)

	ctx := context.Background()

	got, err := m.ListCustomers(ctx, domain.CustomerFilter{EmailContains: "EXAMPLE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, customerIDs(got))

	got, err = m.ListCustomers(ctx, domain.CustomerFilter{OrderBy: "-createdAt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c2", "c1"}, customerIDs(got))

	got, err = m.ListCustomers(ctx, domain.CustomerFilter{NameContains: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = m.ListCustomers(ctx, domain.CustomerFilter{OrderBy: "phone"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrderBy)
}

func TestMemoryListProducts_Filters(t *testing.T) {
	m := NewMemoryAdapter()
	seedMemory(t, m, nil, []domain.Product{
		{ID: "p1", Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 3},
		{ID: "p2", Name: "Mouse", Price: decimal.RequireFromString("19.99"), Stock: 50},
		{ID: "p3", Name: "Laptop Bag", Price: decimal.RequireFromString("49.50"), Stock: 8},
	})

	ctx := context.Background()
	gte := decimal.RequireFromString("40")
	lte := decimal.RequireFromString("1000")
	stockLt := 10

	got, err := m.ListProducts(ctx, domain.ProductFilter{
		NameContains: "laptop",
		PriceGte:     &gte,
		PriceLte:     &lte,
		StockLt:      &stockLt,
		OrderBy:      "price",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p3", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)
}

func TestMemoryInsertOrder_PopulatesAssociations(t *testing.T) {
	m := NewMemoryAdapter()
	seedMemory(t, m,
		[]domain.Customer{{ID: "c1", Name: "A", Email: "a@x.com"}},
		[]domain.Product{
			{ID: "p1", Name: "One", Price: decimal.NewFromInt(1), Stock: 1},
			{ID: "p2", Name: "Two", Price: decimal.NewFromInt(2), Stock: 1},
		},
	)

	ctx := context.Background()
	err := m.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.InsertOrder(ctx, domain.Order{
			ID:          "o1",
			CustomerID:  "c1",
			Products:    []domain.Product{{ID: "p2"}, {ID: "p1"}},
			TotalAmount: decimal.NewFromInt(3),
			OrderDate:   time.Now().UTC(),
		})
	})
	require.NoError(t, err)

	orders, err := m.ListOrders(ctx, domain.OrderFilter{CustomerID: "c1"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Customer)
	assert.Equal(t, "a@x.com", orders[0].Customer.Email)
	assert.Equal(t, []string{"p2", "p1"}, orders[0].ProductIDs())
	assert.Equal(t, "Two", orders[0].Products[0].Name)
}

func TestMemoryInsertOrder_UnknownReferences(t *testing.T) {
	m := NewMemoryAdapter()
	seedMemory(t, m, []domain.Customer{{ID: "c1", Name: "A", Email: "a@x.com"}}, nil)

	err := m.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		return tx.InsertOrder(ctx, domain.Order{ID: "o1", CustomerID: "missing"})
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	err = m.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		return tx.InsertOrder(ctx, domain.Order{ID: "o1", CustomerID: "c1", Products: []domain.Product{{ID: "nope"}}})
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProductIDs)
}

func TestMemoryGetProductsByIDs_Distinct(t *testing.T) {
	m := NewMemoryAdapter()
	seedMemory(t, m, nil, []domain.Product{{ID: "p1", Name: "One", Price: decimal.NewFromInt(1)}})

	err := m.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		got, err := tx.GetProductsByIDs(ctx, []string{"p1", "p1", "missing"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryIncrementStockBelow_Concurrent(t *testing.T) {
	m := NewMemoryAdapter()
	seedMemory(t, m, nil, []domain.Product{{ID: "p1", Name: "One", Price: decimal.NewFromInt(1), Stock: 2}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.InTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
				_, err := tx.IncrementStockBelow(ctx, "p1", 10, 10)
				return err
			})
		}()
	}
	wg.Wait()

	products, err := m.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 12, products[0].Stock)
}

func customerIDs(customers []domain.Customer) []string {
	ids := make([]string, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	return ids
}
