package port

import (
	"context"

	"github.com/rl1809/crm/internal/core/domain"
)

// Store is the datastore boundary. Writes happen only through the Tx handed to InTx;
// the transaction commits when fn returns nil and rolls back otherwise.
type Store interface {
	Reader
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Reader interface {
	ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	// ListOrders returns orders with their customer and products populated.
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	CountCustomers(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type Tx interface {
	CustomerEmailExists(ctx context.Context, email string) (bool, error)
	InsertCustomer(ctx context.Context, customer domain.Customer) error
	// GetCustomer returns nil, nil when the customer does not exist.
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)

	InsertProduct(ctx context.Context, product domain.Product) error
	// GetProductsByIDs returns each matching product once, regardless of repeats in ids.
	GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// InsertOrder persists the order row and its product associations.
	InsertOrder(ctx context.Context, order domain.Order) error

	// LockLowStockProducts returns products with stock below threshold, locked until the tx ends.
	LockLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error)
	// IncrementStockBelow adds increment only while stock is still below threshold.
	IncrementStockBelow(ctx context.Context, productID string, increment, threshold int) (bool, error)
}
