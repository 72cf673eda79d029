package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

type CreateOrderInput struct {
	CustomerID string
	ProductIDs []string
	// OrderDate defaults to the commit time when nil.
	OrderDate      *time.Time
	IdempotencyKey string
}

type OrderService struct {
	store port.Store
	cache port.CacheRepository
	log   *slog.Logger
	now   func() time.Time
}

func NewOrderService(store port.Store, cache port.CacheRepository, log *slog.Logger) *OrderService {
	return &OrderService{
		store: store,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// CreateOrder prices the order from the products' current prices and persists it
// with its product associations in a single transaction.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	claimed, err := claimRequest(ctx, s.cache, "order", in.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var order domain.Order
	err = s.store.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		customer, err := tx.GetCustomer(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrInvalidCustomer
		}

		if len(in.ProductIDs) == 0 {
			return domain.ErrEmptyProductList
		}

		products, err := tx.GetProductsByIDs(ctx, in.ProductIDs)
		if err != nil {
			return err
		}
		if err := domain.ValidateProductIDs(in.ProductIDs, products); err != nil {
			return err
		}

		order = domain.Order{
			ID:          newID(),
			CustomerID:  customer.ID,
			Customer:    customer,
			Products:    inRequestOrder(in.ProductIDs, products),
			TotalAmount: domain.TotalPrice(products),
		}
		if in.OrderDate != nil {
			order.OrderDate = in.OrderDate.UTC()
		} else {
			order.OrderDate = s.now().UTC()
		}

		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		releaseRequest(s.cache, s.log, claimed)
		return nil, storeError(err)
	}

	s.log.Info("order created", "order_id", order.ID, "customer_id", order.CustomerID, "total", order.TotalAmount.String())
	return &order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if _, err := domain.ParseOrderBy(filter.OrderBy, domain.OrderSortFields); err != nil {
		return nil, err
	}
	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return orders, nil
}

func inRequestOrder(ids []string, products []domain.Product) []domain.Product {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	return ordered
}
