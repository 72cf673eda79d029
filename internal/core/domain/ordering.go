package domain

import "strings"

type SortKey struct {
	Field string
	Desc  bool
}

var (
	CustomerSortFields = []string{"name", "email", "createdAt"}
	ProductSortFields  = []string{"name", "price", "stock", "createdAt"}
	OrderSortFields    = []string{"orderDate", "totalAmount"}
)

var sortAliases = map[string]string{
	"created_at":   "createdAt",
	"order_date":   "orderDate",
	"total_amount": "totalAmount",
}

// ParseOrderBy reads "field" or "-field"; snake_case column names are accepted too.
// An empty value yields a nil key.
func ParseOrderBy(orderBy string, allowed []string) (*SortKey, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return nil, nil
	}
	key := SortKey{Field: orderBy}
	if strings.HasPrefix(orderBy, "-") {
		key = SortKey{Field: orderBy[1:], Desc: true}
	}
	if alias, ok := sortAliases[key.Field]; ok {
		key.Field = alias
	}
	for _, f := range allowed {
		if f == key.Field {
			return &key, nil
		}
	}
	return nil, ErrInvalidOrderBy
}
