package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/crm/internal/adapter/storage"
	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

// Mock CacheRepository
type mockCacheRepo struct {
	idempotencySet map[string]bool
	locks          map[string]string
	acquired       int
	released       int
	mu             sync.Mutex
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		idempotencySet: make(map[string]bool),
		locks:          make(map[string]string),
	}
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ClearIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[name]; held {
		return "", false, nil
	}
	m.acquired++
	token := name + "-token"
	m.locks[name] = token
	return token, true, nil
}

func (m *mockCacheRepo) ReleaseLock(ctx context.Context, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locks[name] == token {
		delete(m.locks, name)
		m.released++
	}
	return nil
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")

// Store whose every call fails as if the database were down.
type downStore struct{}

func (downStore) InTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	return errConnRefused
}

func (downStore) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	return nil, errConnRefused
}

func (downStore) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return nil, errConnRefused
}

func (downStore) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return nil, errConnRefused
}

func (downStore) CountCustomers(ctx context.Context) (int, error) {
	return 0, errConnRefused
}

func (downStore) Ping(ctx context.Context) error {
	return errConnRefused
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServices(t *testing.T, cache port.CacheRepository, cfg Config) (*Services, *storage.MemoryAdapter) {
	t.Helper()
	if cfg.PhoneMinDigits == 0 {
		cfg.PhoneMinDigits = domain.DefaultPhoneMinDigits
	}
	store := storage.NewMemoryAdapter()
	svc, err := New(store, cache, cfg, discardLogger())
	require.NoError(t, err)
	return svc, store
}
