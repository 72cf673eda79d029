package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

type BulkMode string

const (
	// BulkSkipInvalid records per-record errors and commits the valid records.
	BulkSkipInvalid BulkMode = "skip"
	// BulkAbortOnError rolls the whole batch back when any record fails.
	BulkAbortOnError BulkMode = "abort"
)

var errBatchRejected = errors.New("batch rejected")

type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

type CreateCustomerResult struct {
	Customer domain.Customer
	Message  string
}

type BulkCreateResult struct {
	Customers []domain.Customer
	Errors    []string
}

type CustomerService struct {
	store    port.Store
	cache    port.CacheRepository
	phone    *domain.PhoneValidator
	bulkMode BulkMode
	log      *slog.Logger
	now      func() time.Time
}

func NewCustomerService(store port.Store, cache port.CacheRepository, phone *domain.PhoneValidator, mode BulkMode, log *slog.Logger) (*CustomerService, error) {
	switch mode {
	case "":
		mode = BulkSkipInvalid
	case BulkSkipInvalid, BulkAbortOnError:
	default:
		return nil, fmt.Errorf("unknown bulk mode %q", mode)
	}
	return &CustomerService{
		store:    store,
		cache:    cache,
		phone:    phone,
		bulkMode: mode,
		log:      log,
		now:      time.Now,
	}, nil
}

func (s *CustomerService) newCustomer(in CustomerInput) domain.Customer {
	return domain.Customer{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: s.now().UTC(),
	}
}

// CreateCustomer inserts one customer. The first violated rule is returned and nothing is written.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerInput, idempotencyKey string) (*CreateCustomerResult, error) {
	customer := s.newCustomer(in)
	if err := domain.ValidateCustomerFields(customer.Name, customer.Email); err != nil {
		return nil, err
	}

	claimed, err := claimRequest(ctx, s.cache, "customer", idempotencyKey)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		exists, err := tx.CustomerEmailExists(ctx, customer.Email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateEmail
		}
		if err := s.phone.Validate(customer.Phone); err != nil {
			return err
		}
		return tx.InsertCustomer(ctx, customer)
	})
	if err != nil {
		releaseRequest(s.cache, s.log, claimed)
		return nil, storeError(err)
	}

	s.log.Info("customer created", "customer_id", customer.ID)
	return &CreateCustomerResult{Customer: customer, Message: "Customer created successfully."}, nil
}

// BulkCreateCustomers checks every record against the rows inserted so far in the
// same transaction, so repeats inside one batch count as duplicates.
func (s *CustomerService) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (*BulkCreateResult, error) {
	var result BulkCreateResult

	err := s.store.InTx(ctx, func(ctx context.Context, tx port.Tx) error {
		result = BulkCreateResult{}
		for i, in := range inputs {
			customer := s.newCustomer(in)

			if err := domain.ValidateCustomerFields(customer.Name, customer.Email); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Invalid record %d: %v", i+1, err))
				continue
			}

			exists, err := tx.CustomerEmailExists(ctx, customer.Email)
			if err != nil {
				return err
			}
			if exists {
				result.Errors = append(result.Errors, "Duplicate email: "+customer.Email)
				continue
			}

			if err := s.phone.Validate(customer.Phone); err != nil {
				result.Errors = append(result.Errors, "Invalid phone for "+customer.Email)
				continue
			}

			if err := tx.InsertCustomer(ctx, customer); err != nil {
				if errors.Is(err, domain.ErrDuplicateEmail) {
					result.Errors = append(result.Errors, "Duplicate email: "+customer.Email)
					continue
				}
				return err
			}
			result.Customers = append(result.Customers, customer)
		}

		if s.bulkMode == BulkAbortOnError && len(result.Errors) > 0 {
			return errBatchRejected
		}
		return nil
	})

	if errors.Is(err, errBatchRejected) {
		s.log.Info("bulk customer batch rolled back", "records", len(inputs), "errors", len(result.Errors))
		return &BulkCreateResult{Customers: []domain.Customer{}, Errors: result.Errors}, nil
	}
	if err != nil {
		return nil, storeError(err)
	}

	if result.Customers == nil {
		result.Customers = []domain.Customer{}
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	s.log.Info("bulk customers created", "created", len(result.Customers), "errors", len(result.Errors))
	return &result, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	if _, err := domain.ParseOrderBy(filter.OrderBy, domain.CustomerSortFields); err != nil {
		return nil, err
	}
	customers, err := s.store.ListCustomers(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return customers, nil
}
