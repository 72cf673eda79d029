package rpc

import "time"

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID          string     `json:"id"`
	Customer    *Customer  `json:"customer,omitempty"`
	Products    []*Product `json:"products"`
	TotalAmount string     `json:"total_amount"`
	OrderDate   time.Time  `json:"order_date"`
}

type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CreateCustomerRequest struct {
	CustomerInput
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type CreateCustomerResponse struct {
	Customer *Customer `json:"customer"`
	Message  string    `json:"message"`
}

type BulkCreateCustomersRequest struct {
	Customers []CustomerInput `json:"customers"`
}

type BulkCreateCustomersResponse struct {
	Customers []*Customer `json:"customers"`
	Errors    []string    `json:"errors"`
}

type CreateProductRequest struct {
	Name string `json:"name"`
	// Price is a decimal string such as "19.99".
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

type CreateProductResponse struct {
	Product *Product `json:"product"`
}

type CreateOrderRequest struct {
	CustomerID     string     `json:"customer_id"`
	ProductIDs     []string   `json:"product_ids"`
	OrderDate      *time.Time `json:"order_date,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

type CreateOrderResponse struct {
	Order *Order `json:"order"`
}

type UpdateLowStockProductsRequest struct{}

type UpdateLowStockProductsResponse struct {
	UpdatedProducts []*Product `json:"updated_products"`
	Message         string     `json:"message"`
}

type ListCustomersRequest struct {
	NameContains  string `json:"name_contains,omitempty"`
	EmailContains string `json:"email_contains,omitempty"`
	OrderBy       string `json:"order_by,omitempty"`
}

type ListCustomersResponse struct {
	Customers []*Customer `json:"customers"`
}

type ListProductsRequest struct {
	NameContains string `json:"name_contains,omitempty"`
	PriceGte     string `json:"price_gte,omitempty"`
	PriceLte     string `json:"price_lte,omitempty"`
	StockLt      *int   `json:"stock_lt,omitempty"`
	OrderBy      string `json:"order_by,omitempty"`
}

type ListProductsResponse struct {
	Products []*Product `json:"products"`
}

type ListOrdersRequest struct {
	CustomerID     string     `json:"customer_id,omitempty"`
	OrderDateGte   *time.Time `json:"order_date_gte,omitempty"`
	OrderDateLte   *time.Time `json:"order_date_lte,omitempty"`
	TotalAmountGte string     `json:"total_amount_gte,omitempty"`
	OrderBy        string     `json:"order_by,omitempty"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

type GenerateReportRequest struct{}

type GenerateReportResponse struct {
	TotalCustomers int    `json:"total_customers"`
	TotalOrders    int    `json:"total_orders"`
	TotalRevenue   string `json:"total_revenue"`
}
