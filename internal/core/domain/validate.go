package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	DefaultPhoneMinDigits = 7
	maxPhoneDigits        = 15

	MaxNameLength  = 255
	MaxEmailLength = 254

	priceScale = 2
)

// MaxPrice is the largest price a DECIMAL(10, 2) column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// PhoneValidator checks the optional phone field. International numbers may carry
// a leading '+' and between MinDigits and 15 digits; local numbers use 123-456-7890.
type PhoneValidator struct {
	pattern *regexp.Regexp
}

func NewPhoneValidator(minDigits int) (*PhoneValidator, error) {
	if minDigits < 1 || minDigits > maxPhoneDigits {
		return nil, fmt.Errorf("phone min digits must be within 1..%d, got %d", maxPhoneDigits, minDigits)
	}
	expr := fmt.Sprintf(`^(\+?\d{%d,%d}|\d{3}-\d{3}-\d{4})$`, minDigits, maxPhoneDigits)
	return &PhoneValidator{pattern: regexp.MustCompile(expr)}, nil
}

// Validate accepts an empty phone.
func (v *PhoneValidator) Validate(phone string) error {
	if phone == "" {
		return nil
	}
	if !v.pattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidatePrice accepts positive amounts with at most two decimal places, up to MaxPrice.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if !price.Equal(price.Round(priceScale)) {
		return fmt.Errorf("%w, with at most %d decimal places", ErrInvalidPrice, priceScale)
	}
	if price.GreaterThan(MaxPrice) {
		return fmt.Errorf("%w, at most %s", ErrInvalidPrice, MaxPrice.StringFixed(priceScale))
	}
	return nil
}

// ValidateName checks a trimmed customer or product name.
func ValidateName(name string) error {
	if name == "" {
		return ErrMissingName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func ValidateStock(stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// ValidateProductIDs fails when any requested id is unknown or repeated.
func ValidateProductIDs(ids []string, resolved []Product) error {
	if len(ids) == 0 {
		return ErrEmptyProductList
	}
	seen := make(map[string]struct{}, len(resolved))
	for _, p := range resolved {
		seen[p.ID] = struct{}{}
	}
	if len(seen) != len(ids) {
		return ErrInvalidProductIDs
	}
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			return ErrInvalidProductIDs
		}
	}
	return nil
}

// ValidateCustomerFields checks the mandatory name and email.
func ValidateCustomerFields(name, email string) error {
	if err := ValidateName(strings.TrimSpace(name)); err != nil {
		return err
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return ErrInvalidEmail
	}
	local, host, ok := strings.Cut(email, "@")
	if !ok || local == "" || host == "" || strings.Contains(host, "@") || strings.ContainsAny(email, " \t\n") {
		return ErrInvalidEmail
	}
	return nil
}
