package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/crm/internal/core/domain"
)

func TestCreateCustomer_Success(t *testing.T) {
	svc, _ := newTestServices(t, nil, Config{})

	res, err := svc.Customers.CreateCustomer(context.Background(), CustomerInput{
		Name:  " Alice ",
		Email: "alice@example.com",
		Phone: "+1234567890",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "Customer created successfully.", res.Message)
	assert.Equal(t, "Alice", res.Customer.Name)
	assert.NotEmpty(t, res.Customer.ID)
	assert.False(t, res.Customer.CreatedAt.IsZero())
}

func TestCreateCustomer_DuplicateEmailWritesNothing(t *testing.T) {
	svc, store := newTestServices(t, nil, Config{})
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Alice", Email: "alice@example.com"}, "")
	require.NoError(t, err)

	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Alice Again", Email: "alice@example.com"}, "")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	n, err := store.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateCustomer_DuplicateEmailIgnoresCase(t *testing.T) {
	svc, store := newTestServices(t, nil, Config{})
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Alice", Email: "Alice@Example.com"}, "")
	require.NoError(t, err)

	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Alice", Email: "alice@example.com"}, "")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	res, err := svc.Customers.BulkCreateCustomers(ctx, []CustomerInput{{Name: "A", Email: "ALICE@EXAMPLE.COM"}})
	require.NoError(t, err)
	assert.Empty(t, res.Customers)
	assert.Equal(t, []string{"Duplicate email: ALICE@EXAMPLE.COM"}, res.Errors)

	n, _ := store.CountCustomers(ctx)
	assert.Equal(t, 1, n)
}

func TestCreateCustomer_InvalidPhone(t *testing.T) {
	svc, store := newTestServices(t, nil, Config{})
	ctx := context.Background()

	for _, phone := range []string{"12ab", "+12", "123/456/7890"} {
		_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Bob", Email: "bob@example.com", Phone: phone}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidPhone, phone)
	}

	n, _ := store.CountCustomers(ctx)
	assert.Zero(t, n)
}

func TestCreateCustomer_DuplicateCheckedBeforePhone(t *testing.T) {
	svc, _ := newTestServices(t, nil, Config{})
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Alice", Email: "alice@example.com"}, "")
	require.NoError(t, err)

	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Alice", Email: "alice@example.com", Phone: "bad"}, "")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestCreateCustomer_MissingFields(t *testing.T) {
	svc, _ := newTestServices(t, nil, Config{})
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Email: "x@example.com"}, "")
	assert.ErrorIs(t, err, domain.ErrMissingName)

	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "X", Email: "not-an-email"}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: strings.Repeat("x", 256), Email: "x@example.com"}, "")
	assert.ErrorIs(t, err, domain.ErrNameTooLong)

	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "X", Email: strings.Repeat("x", 250) + "@example.com"}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestCreateCustomer_Idempotency(t *testing.T) {
	cache := newMockCacheRepo()
	svc, store := newTestServices(t, cache, Config{})
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Alice", Email: "alice@example.com"}, "req-1")
	require.NoError(t, err)

	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Bob", Email: "bob@example.com"}, "req-1")
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	n, _ := store.CountCustomers(ctx)
	assert.Equal(t, 1, n)
	assert.True(t, cache.idempotencySet["idem:customer:req-1"])
}

func TestCreateCustomer_FailureReleasesIdempotencyKey(t *testing.T) {
	cache := newMockCacheRepo()
	svc, _ := newTestServices(t, cache, Config{})
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Bob", Email: "bob@example.com", Phone: "bad"}, "req-2")
	require.ErrorIs(t, err, domain.ErrInvalidPhone)

	// The corrected retry reuses the same key
	_, err = svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Bob", Email: "bob@example.com"}, "req-2")
	assert.NoError(t, err)
}

func TestCreateCustomer_DatastoreUnavailable(t *testing.T) {
	phone, _ := domain.NewPhoneValidator(domain.DefaultPhoneMinDigits)
	svc, err := NewCustomerService(downStore{}, nil, phone, "", discardLogger())
	require.NoError(t, err)

	_, err = svc.CreateCustomer(context.Background(), CustomerInput{Name: "A", Email: "a@example.com"}, "")
	assert.ErrorIs(t, err, domain.ErrDatastoreUnavailable)
	assert.ErrorIs(t, err, errConnRefused)
}

func TestBulkCreateCustomers_SkipInvalid(t *testing.T) {
	svc, store := newTestServices(t, nil, Config{})
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, CustomerInput{Name: "Existing", Email: "existing@example.com"}, "")
	require.NoError(t, err)

	res, err := svc.Customers.BulkCreateCustomers(ctx, []CustomerInput{
		{Name: "A", Email: "a@example.com"},
		{Name: "A2", Email: "a@example.com"},
		{Name: "E", Email: "existing@example.com"},
		{Name: "B", Email: "b@example.com", Phone: "bad"},
		{Name: "", Email: "c@example.com"},
		{Name: "D", Email: "d@example.com", Phone: "123-456-7890"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com", "d@example.com"}, []string{res.Customers[0].Email, res.Customers[1].Email})
	assert.Equal(t, []string{
		"Duplicate email: a@example.com",
		"Duplicate email: existing@example.com",
		"Invalid phone for b@example.com",
		"Invalid record 5: name is required",
	}, res.Errors)

	n, _ := store.CountCustomers(ctx)
	assert.Equal(t, 3, n)
}

func TestBulkCreateCustomers_AbortOnError(t *testing.T) {
	svc, store := newTestServices(t, nil, Config{BulkMode: BulkAbortOnError})
	ctx := context.Background()

	res, err := svc.Customers.BulkCreateCustomers(ctx, []CustomerInput{
		{Name: "A", Email: "a@example.com"},
		{Name: "B", Email: "b@example.com", Phone: "bad"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Customers)
	assert.Equal(t, []string{"Invalid phone for b@example.com"}, res.Errors)

	n, _ := store.CountCustomers(ctx)
	assert.Zero(t, n)
}

func TestBulkCreateCustomers_EmptyBatch(t *testing.T) {
	svc, _ := newTestServices(t, nil, Config{})

	res, err := svc.Customers.BulkCreateCustomers(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Customers)
	assert.NotNil(t, res.Errors)
	assert.Empty(t, res.Customers)
	assert.Empty(t, res.Errors)
}

func TestNewCustomerService_UnknownBulkMode(t *testing.T) {
	phone, _ := domain.NewPhoneValidator(domain.DefaultPhoneMinDigits)
	_, err := NewCustomerService(downStore{}, nil, phone, "sometimes", discardLogger())
	assert.Error(t, err)
}

func TestListCustomers_InvalidOrderBy(t *testing.T) {
	svc, _ := newTestServices(t, nil, Config{})
	_, err := svc.Customers.ListCustomers(context.Background(), domain.CustomerFilter{OrderBy: "phone"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrderBy)
}
