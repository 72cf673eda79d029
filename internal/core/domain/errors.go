package domain

import "errors"

var (
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrInvalidPhone         = errors.New("invalid phone format, use +1234567890 or 123-456-7890")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInvalidStock         = errors.New("stock cannot be negative")
	ErrInvalidCustomer      = errors.New("invalid customer id")
	ErrEmptyProductList     = errors.New("at least one product id is required")
	ErrInvalidProductIDs    = errors.New("one or more product ids are invalid")
	ErrDatastoreUnavailable = errors.New("datastore unavailable")

	ErrMissingName       = errors.New("name is required")
	ErrNameTooLong       = errors.New("name must be at most 255 characters")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrRestockInProgress = errors.New("restock already in progress")
	ErrInvalidOrderBy    = errors.New("invalid order by field")
	ErrInvalidFilter     = errors.New("invalid filter value")
)

// IsValidation reports whether err is caused by caller input rather than infrastructure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrDuplicateEmail, ErrInvalidPhone, ErrInvalidPrice, ErrInvalidStock,
		ErrInvalidCustomer, ErrEmptyProductList, ErrInvalidProductIDs,
		ErrMissingName, ErrNameTooLong, ErrInvalidEmail, ErrInvalidOrderBy, ErrInvalidFilter,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
