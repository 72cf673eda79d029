package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          string
	CustomerID  string
	Customer    *Customer
	Products    []Product
	TotalAmount decimal.Decimal
	OrderDate   time.Time
}

// ProductIDs returns the ids of the order's associated products.
func (o Order) ProductIDs() []string {
	ids := make([]string, len(o.Products))
	for i, p := range o.Products {
		ids[i] = p.ID
	}
	return ids
}

type OrderFilter struct {
	CustomerID     string
	OrderDateGte   *time.Time
	OrderDateLte   *time.Time
	TotalAmountGte *decimal.Decimal
	OrderBy        string
}

// TotalPrice sums product prices exactly. The result is fixed at order creation.
func TotalPrice(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}
