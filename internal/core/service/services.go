package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

const idempotencyKeyPrefix = "idem:"

type Config struct {
	PhoneMinDigits int
	BulkMode       BulkMode
	Restock        RestockPolicy
}

// Services bundles the use cases exposed by the transport adapters.
type Services struct {
	Customers *CustomerService
	Products  *ProductService
	Orders    *OrderService
	Reports   *ReportService
}

// New wires all services over one store. cache may be nil, which disables
// idempotency keys and the cross-process restock lock.
func New(store port.Store, cache port.CacheRepository, cfg Config, log *slog.Logger) (*Services, error) {
	phone, err := domain.NewPhoneValidator(cfg.PhoneMinDigits)
	if err != nil {
		return nil, err
	}
	customers, err := NewCustomerService(store, cache, phone, cfg.BulkMode, log)
	if err != nil {
		return nil, err
	}
	products, err := NewProductService(store, cache, cfg.Restock, log)
	if err != nil {
		return nil, err
	}
	return &Services{
		Customers: customers,
		Products:  products,
		Orders:    NewOrderService(store, cache, log),
		Reports:   NewReportService(store),
	}, nil
}

func newID() string {
	return uuid.NewString()
}

// storeError passes domain errors through and tags everything else as a datastore failure.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsValidation(err) ||
		errors.Is(err, domain.ErrDatastoreUnavailable) ||
		errors.Is(err, domain.ErrDuplicateRequest) ||
		errors.Is(err, domain.ErrRestockInProgress) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrDatastoreUnavailable, err)
}

// claimRequest registers an idempotency key. It returns the cache key to clear on
// failure, or "" when no key was claimed.
func claimRequest(ctx context.Context, cache port.CacheRepository, op, key string) (string, error) {
	if cache == nil || key == "" {
		return "", nil
	}
	cacheKey := fmt.Sprintf("%s%s:%s", idempotencyKeyPrefix, op, key)

	ok, err := cache.SetIdempotency(ctx, cacheKey)
	if err != nil {
		return "", fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return "", domain.ErrDuplicateRequest
	}
	return cacheKey, nil
}

func releaseRequest(cache port.CacheRepository, log *slog.Logger, cacheKey string) {
	if cacheKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.ClearIdempotency(ctx, cacheKey); err != nil {
		log.Warn("failed to clear idempotency key", "key", cacheKey, "err", err)
	}
}
