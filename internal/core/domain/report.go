package domain

import "github.com/shopspring/decimal"

type Report struct {
	TotalCustomers int
	TotalOrders    int
	TotalRevenue   decimal.Decimal
}

// Summarize aggregates a result set of orders and a customer count into a Report.
func Summarize(orders []Order, customerCount int) Report {
	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
	}
	return Report{
		TotalCustomers: customerCount,
		TotalOrders:    len(orders),
		TotalRevenue:   revenue,
	}
}
