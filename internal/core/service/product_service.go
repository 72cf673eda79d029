package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

const (
	DefaultRestockThreshold = 10
	DefaultRestockIncrement = 10

	restockLockName = "restock:lock"
	restockLockTTL  = 30 * time.Second
)

// RestockPolicy: products with stock below Threshold receive Increment units.
type RestockPolicy struct {
	Threshold int
	Increment int
}

type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

type RestockResult struct {
	Products []domain.Product
	Message  string
}

type ProductService struct {
	store  port.Store
	cache  port.CacheRepository
	policy RestockPolicy
	log    *slog.Logger
	now    func() time.Time
}

func NewProductService(store port.Store, cache port.CacheRepository, policy RestockPolicy, log *slog.Logger) (*ProductService, error) {
	if policy.Threshold == 0 && policy.Increment == 0 {
		policy = RestockPolicy{Threshold: DefaultRestockThreshold, Increment: DefaultRestockIncrement}
	}
	if policy.Threshold <= 0 || policy.Increment <= 0 {
		return nil, fmt.Errorf("restock threshold and increment must be positive, got %d/%d", policy.Threshold, policy.Increment)
	}
	return &ProductService{
		store:  store,
		cache:  cache,
		policy: policy,
		log:    log,
		now:    time.Now,
	}, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrice(in.Price); err != nil {
		return nil, err
	}
	if err := domain.ValidateStock(in.Stock); err != nil {
		return nil, err
	}

	product := domain.Product{
		ID:        newID(),
		Name:      name,
		Price:     in.Price,
		Stock:     in.Stock,
		CreatedAt: s.now().UTC(),
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.InsertProduct(ctx, product)
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.log.Info("product created", "product_id", product.ID)
	return &product, nil
}

// UpdateLowStockProducts restocks every product below the threshold. Rows are locked
// for the transaction and each increment is a compare-and-swap on the threshold, so
// concurrent runs never restock the same product twice.
func (s *ProductService) UpdateLowStockProducts(ctx context.Context) (*RestockResult, error) {
	if s.cache != nil {
		token, ok, err := s.cache.AcquireLock(ctx, restockLockName, restockLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire restock lock: %w", err)
		}
		if !ok {
			return nil, domain.ErrRestockInProgress
		}
		defer func() {
			if err := s.cache.ReleaseLock(context.Background(), restockLockName, token); err != nil {
				s.log.Warn("failed to release restock lock", "err", err)
			}
		}()
	}

	var updated []domain.Product
	err := s.store.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		updated = nil
		low, err := tx.LockLowStockProducts(ctx, s.policy.Threshold)
		if err != nil {
			return err
		}
		for _, p := range low {
			ok, err := tx.IncrementStockBelow(ctx, p.ID, s.policy.Increment, s.policy.Threshold)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			p.Stock += s.policy.Increment
			updated = append(updated, p)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	if len(updated) == 0 {
		return &RestockResult{Products: []domain.Product{}, Message: "No low-stock products found."}, nil
	}

	s.log.Info("low-stock products restocked", "count", len(updated))
	return &RestockResult{
		Products: updated,
		Message:  fmt.Sprintf("%d product(s) restocked successfully.", len(updated)),
	}, nil
}

func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if _, err := domain.ParseOrderBy(filter.OrderBy, domain.ProductSortFields); err != nil {
		return nil, err
	}
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return products, nil
}
