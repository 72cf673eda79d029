package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

type memoryState struct {
	customers     map[string]domain.Customer
	customerOrder []string
	products      map[string]domain.Product
	productOrder  []string
	orders        map[string]memoryOrder
	orderOrder    []string
}

type memoryOrder struct {
	order      domain.Order
	productIDs []string
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		customers:     make(map[string]domain.Customer, len(s.customers)),
		customerOrder: slices.Clone(s.customerOrder),
		products:      make(map[string]domain.Product, len(s.products)),
		productOrder:  slices.Clone(s.productOrder),
		orders:        make(map[string]memoryOrder, len(s.orders)),
		orderOrder:    slices.Clone(s.orderOrder),
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// MemoryAdapter keeps all rows in process. Transactions are serialised and work on a
// copy of the state that replaces the live state only on commit.
type MemoryAdapter struct {
	mu    sync.RWMutex
	state *memoryState
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{state: &memoryState{
		customers: make(map[string]domain.Customer),
		products:  make(map[string]domain.Product),
		orders:    make(map[string]memoryOrder),
	}}
}

func (m *MemoryAdapter) InTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.state.clone()
	if err := fn(ctx, &memoryTx{state: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryAdapter) CountCustomers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.customers), nil
}

func (m *MemoryAdapter) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	key, err := domain.ParseOrderBy(filter.OrderBy, domain.CustomerSortFields)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Customer{}
	for _, id := range m.state.customerOrder {
		c := m.state.customers[id]
		if !containsFold(c.Name, filter.NameContains) || !containsFold(c.Email, filter.EmailContains) {
			continue
		}
		out = append(out, c)
	}

	if key != nil {
		slices.SortStableFunc(out, func(a, b domain.Customer) int {
			var r int
			switch key.Field {
			case "name":
				r = cmp.Compare(a.Name, b.Name)
			case "email":
				r = cmp.Compare(a.Email, b.Email)
			case "createdAt":
				r = a.CreatedAt.Compare(b.CreatedAt)
			}
			return direction(r, key.Desc)
		})
	}
	return out, nil
}

func (m *MemoryAdapter) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	key, err := domain.ParseOrderBy(filter.OrderBy, domain.ProductSortFields)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Product{}
	for _, id := range m.state.productOrder {
		p := m.state.products[id]
		if !containsFold(p.Name, filter.NameContains) {
			continue
		}
		if filter.PriceGte != nil && p.Price.LessThan(*filter.PriceGte) {
			continue
		}
		if filter.PriceLte != nil && p.Price.GreaterThan(*filter.PriceLte) {
			continue
		}
		if filter.StockLt != nil && p.Stock >= *filter.StockLt {
			continue
		}
		out = append(out, p)
	}

	if key != nil {
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			var r int
			switch key.Field {
			case "name":
				r = cmp.Compare(a.Name, b.Name)
			case "price":
				r = a.Price.Cmp(b.Price)
			case "stock":
				r = cmp.Compare(a.Stock, b.Stock)
			case "createdAt":
				r = a.CreatedAt.Compare(b.CreatedAt)
			}
			return direction(r, key.Desc)
		})
	}
	return out, nil
}

func (m *MemoryAdapter) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	key, err := domain.ParseOrderBy(filter.OrderBy, domain.OrderSortFields)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Order{}
	for _, id := range m.state.orderOrder {
		row := m.state.orders[id]
		o := row.order
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.OrderDateGte != nil && o.OrderDate.Before(*filter.OrderDateGte) {
			continue
		}
		if filter.OrderDateLte != nil && o.OrderDate.After(*filter.OrderDateLte) {
			continue
		}
		if filter.TotalAmountGte != nil && o.TotalAmount.LessThan(*filter.TotalAmountGte) {
			continue
		}

		if c, ok := m.state.customers[o.CustomerID]; ok {
			o.Customer = &c
		}
		o.Products = make([]domain.Product, 0, len(row.productIDs))
		for _, pid := range row.productIDs {
			o.Products = append(o.Products, m.state.products[pid])
		}
		out = append(out, o)
	}

	if key != nil {
		slices.SortStableFunc(out, func(a, b domain.Order) int {
			var r int
			switch key.Field {
			case "orderDate":
				r = a.OrderDate.Compare(b.OrderDate)
			case "totalAmount":
				r = a.TotalAmount.Cmp(b.TotalAmount)
			}
			return direction(r, key.Desc)
		})
	}
	return out, nil
}

type memoryTx struct {
	state *memoryState
}

// CustomerEmailExists compares case-insensitively, like the MySQL email column.
func (t *memoryTx) CustomerEmailExists(ctx context.Context, email string) (bool, error) {
	for _, c := range t.state.customers {
		if strings.EqualFold(c.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) InsertCustomer(ctx context.Context, customer domain.Customer) error {
	exists, _ := t.CustomerEmailExists(ctx, customer.Email)
	if exists {
		return domain.ErrDuplicateEmail
	}
	t.state.customers[customer.ID] = customer
	t.state.customerOrder = append(t.state.customerOrder, customer.ID)
	return nil
}

func (t *memoryTx) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	c, ok := t.state.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memoryTx) InsertProduct(ctx context.Context, product domain.Product) error {
	t.state.products[product.ID] = product
	t.state.productOrder = append(t.state.productOrder, product.ID)
	return nil
}

func (t *memoryTx) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := t.state.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memoryTx) InsertOrder(ctx context.Context, order domain.Order) error {
	if _, ok := t.state.customers[order.CustomerID]; !ok {
		return domain.ErrInvalidCustomer
	}
	ids := order.ProductIDs()
	for _, id := range ids {
		if _, ok := t.state.products[id]; !ok {
			return domain.ErrInvalidProductIDs
		}
	}
	order.Customer = nil
	order.Products = nil
	t.state.orders[order.ID] = memoryOrder{order: order, productIDs: ids}
	t.state.orderOrder = append(t.state.orderOrder, order.ID)
	return nil
}

func (t *memoryTx) LockLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range t.state.productOrder {
		if p := t.state.products[id]; p.Stock < threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memoryTx) IncrementStockBelow(ctx context.Context, productID string, increment, threshold int) (bool, error) {
	p, ok := t.state.products[productID]
	if !ok || p.Stock >= threshold {
		return false, nil
	}
	p.Stock += increment
	t.state.products[productID] = p
	return true, nil
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func direction(r int, desc bool) int {
	if desc {
		return -r
	}
	return r
}
