package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/core/service"
)

// View types are resolved by graphql-go's default resolver through their json tags.

type customerView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type productView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderView struct {
	ID          string        `json:"id"`
	Customer    *customerView `json:"customer"`
	Products    []productView `json:"products"`
	TotalAmount string        `json:"totalAmount"`
	OrderDate   time.Time     `json:"orderDate"`
}

type createCustomerPayload struct {
	Customer customerView `json:"customer"`
	Message  string       `json:"message"`
}

type bulkCreateCustomersPayload struct {
	Customers []customerView `json:"customers"`
	Errors    []string       `json:"errors"`
}

type createProductPayload struct {
	Product productView `json:"product"`
}

type createOrderPayload struct {
	Order orderView `json:"order"`
}

type updateLowStockProductsPayload struct {
	UpdatedProducts []productView `json:"updatedProducts"`
	Message         string        `json:"message"`
}

type reportView struct {
	TotalCustomers int    `json:"totalCustomers"`
	TotalOrders    int    `json:"totalOrders"`
	TotalRevenue   string `json:"totalRevenue"`
}

func toCustomerView(c domain.Customer) customerView {
	v := customerView{ID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt}
	if c.Phone != "" {
		phone := c.Phone
		v.Phone = &phone
	}
	return v
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
	}
}

func toProductViews(products []domain.Product) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = toProductView(p)
	}
	return out
}

func toOrderView(o domain.Order) orderView {
	v := orderView{
		ID:          o.ID,
		Products:    toProductViews(o.Products),
		TotalAmount: o.TotalAmount.StringFixed(2),
		OrderDate:   o.OrderDate,
	}
	if o.Customer != nil {
		c := toCustomerView(*o.Customer)
		v.Customer = &c
	}
	return v
}

type schemaBuilder struct {
	svc *service.Services
	log *slog.Logger
}

// NewSchema builds the CRM GraphQL schema over the service layer.
func NewSchema(svc *service.Services, log *slog.Logger) (graphql.Schema, error) {
	b := &schemaBuilder{svc: svc, log: log}

	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"phone":     &graphql.Field{Type: graphql.String},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"price":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"stock":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"customer":    &graphql.Field{Type: customerType},
			"products":    &graphql.Field{Type: graphql.NewList(productType)},
			"totalAmount": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"orderDate":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Report",
		Fields: graphql.Fields{
			"totalCustomers": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalOrders":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalRevenue":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	customerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CustomerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "Hello, GraphQL!", nil
				},
			},
			"customers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Args: graphql.FieldConfigArgument{
					"nameIcontains":  &graphql.ArgumentConfig{Type: graphql.String},
					"emailIcontains": &graphql.ArgumentConfig{Type: graphql.String},
					"orderBy":        &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: b.customers,
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"nameIcontains": &graphql.ArgumentConfig{Type: graphql.String},
					"priceGte":      &graphql.ArgumentConfig{Type: graphql.Float},
					"priceLte":      &graphql.ArgumentConfig{Type: graphql.Float},
					"stockLt":       &graphql.ArgumentConfig{Type: graphql.Int},
					"orderBy":       &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: b.products,
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"customerId":     &graphql.ArgumentConfig{Type: graphql.ID},
					"orderDateGte":   &graphql.ArgumentConfig{Type: graphql.String},
					"orderDateLte":   &graphql.ArgumentConfig{Type: graphql.String},
					"totalAmountGte": &graphql.ArgumentConfig{Type: graphql.Float},
					"orderBy":        &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: b.orders,
			},
			"report": &graphql.Field{
				Type:    reportType,
				Resolve: b.report,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "CreateCustomerPayload",
					Fields: graphql.Fields{
						"customer": &graphql.Field{Type: customerType},
						"message":  &graphql.Field{Type: graphql.String},
					},
				}),
				Args: graphql.FieldConfigArgument{
					"name":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"phone":          &graphql.ArgumentConfig{Type: graphql.String},
					"idempotencyKey": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: b.createCustomer,
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "BulkCreateCustomersPayload",
					Fields: graphql.Fields{
						"customers": &graphql.Field{Type: graphql.NewList(customerType)},
						"errors":    &graphql.Field{Type: graphql.NewList(graphql.String)},
					},
				}),
				Args: graphql.FieldConfigArgument{
					"customers": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerInput)))},
				},
				Resolve: b.bulkCreateCustomers,
			},
			"createProduct": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "CreateProductPayload",
					Fields: graphql.Fields{
						"product": &graphql.Field{Type: productType},
					},
				}),
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"price": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"stock": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: b.createProduct,
			},
			"createOrder": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "CreateOrderPayload",
					Fields: graphql.Fields{
						"order": &graphql.Field{Type: orderType},
					},
				}),
				Args: graphql.FieldConfigArgument{
					"customerId":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"productIds":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
					"orderDate":      &graphql.ArgumentConfig{Type: graphql.String},
					"idempotencyKey": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: b.createOrder,
			},
			"updateLowStockProducts": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "UpdateLowStockProductsPayload",
					Fields: graphql.Fields{
						"updatedProducts": &graphql.Field{Type: graphql.NewList(productType)},
						"message":         &graphql.Field{Type: graphql.String},
					},
				}),
				Resolve: b.updateLowStockProducts,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func (b *schemaBuilder) customers(p graphql.ResolveParams) (any, error) {
	customers, err := b.svc.Customers.ListCustomers(p.Context, domain.CustomerFilter{
		NameContains:  stringArg(p.Args, "nameIcontains"),
		EmailContains: stringArg(p.Args, "emailIcontains"),
		OrderBy:       stringArg(p.Args, "orderBy"),
	})
	if err != nil {
		return nil, b.publicError("customers", err)
	}
	out := make([]customerView, len(customers))
	for i, c := range customers {
		out[i] = toCustomerView(c)
	}
	return out, nil
}

func (b *schemaBuilder) products(p graphql.ResolveParams) (any, error) {
	filter := domain.ProductFilter{
		NameContains: stringArg(p.Args, "nameIcontains"),
		OrderBy:      stringArg(p.Args, "orderBy"),
		PriceGte:     decimalArg(p.Args, "priceGte"),
		PriceLte:     decimalArg(p.Args, "priceLte"),
	}
	if n, ok := intArg(p.Args, "stockLt"); ok {
		filter.StockLt = &n
	}

	products, err := b.svc.Products.ListProducts(p.Context, filter)
	if err != nil {
		return nil, b.publicError("products", err)
	}
	return toProductViews(products), nil
}

func (b *schemaBuilder) orders(p graphql.ResolveParams) (any, error) {
	filter := domain.OrderFilter{
		CustomerID:     stringArg(p.Args, "customerId"),
		OrderBy:        stringArg(p.Args, "orderBy"),
		TotalAmountGte: decimalArg(p.Args, "totalAmountGte"),
	}
	var err error
	if filter.OrderDateGte, err = timeArg(p.Args, "orderDateGte"); err != nil {
		return nil, err
	}
	if filter.OrderDateLte, err = timeArg(p.Args, "orderDateLte"); err != nil {
		return nil, err
	}

	orders, err := b.svc.Orders.ListOrders(p.Context, filter)
	if err != nil {
		return nil, b.publicError("orders", err)
	}
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = toOrderView(o)
	}
	return out, nil
}

func (b *schemaBuilder) report(p graphql.ResolveParams) (any, error) {
	r, err := b.svc.Reports.Generate(p.Context)
	if err != nil {
		return nil, b.publicError("report", err)
	}
	return reportView{
		TotalCustomers: r.TotalCustomers,
		TotalOrders:    r.TotalOrders,
		TotalRevenue:   r.TotalRevenue.StringFixed(2),
	}, nil
}

func (b *schemaBuilder) createCustomer(p graphql.ResolveParams) (any, error) {
	res, err := b.svc.Customers.CreateCustomer(p.Context, service.CustomerInput{
		Name:  stringArg(p.Args, "name"),
		Email: stringArg(p.Args, "email"),
		Phone: stringArg(p.Args, "phone"),
	}, stringArg(p.Args, "idempotencyKey"))
	if err != nil {
		return nil, b.publicError("createCustomer", err)
	}
	return createCustomerPayload{Customer: toCustomerView(res.Customer), Message: res.Message}, nil
}

func (b *schemaBuilder) bulkCreateCustomers(p graphql.ResolveParams) (any, error) {
	raw, _ := p.Args["customers"].([]any)
	inputs := make([]service.CustomerInput, 0, len(raw))
	for _, item := range raw {
		fields, _ := item.(map[string]any)
		inputs = append(inputs, service.CustomerInput{
			Name:  stringArg(fields, "name"),
			Email: stringArg(fields, "email"),
			Phone: stringArg(fields, "phone"),
		})
	}

	res, err := b.svc.Customers.BulkCreateCustomers(p.Context, inputs)
	if err != nil {
		return nil, b.publicError("bulkCreateCustomers", err)
	}
	out := bulkCreateCustomersPayload{
		Customers: make([]customerView, len(res.Customers)),
		Errors:    res.Errors,
	}
	for i, c := range res.Customers {
		out.Customers[i] = toCustomerView(c)
	}
	return out, nil
}

func (b *schemaBuilder) createProduct(p graphql.ResolveParams) (any, error) {
	price := decimalArg(p.Args, "price")
	if price == nil {
		return nil, domain.ErrInvalidPrice
	}
	stock, _ := intArg(p.Args, "stock")

	product, err := b.svc.Products.CreateProduct(p.Context, service.CreateProductInput{
		Name:  stringArg(p.Args, "name"),
		Price: *price,
		Stock: stock,
	})
	if err != nil {
		return nil, b.publicError("createProduct", err)
	}
	return createProductPayload{Product: toProductView(*product)}, nil
}

func (b *schemaBuilder) createOrder(p graphql.ResolveParams) (any, error) {
	raw, _ := p.Args["productIds"].([]any)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, fmt.Sprint(v))
	}
	orderDate, err := timeArg(p.Args, "orderDate")
	if err != nil {
		return nil, err
	}

	order, err := b.svc.Orders.CreateOrder(p.Context, service.CreateOrderInput{
		CustomerID:     stringArg(p.Args, "customerId"),
		ProductIDs:     ids,
		OrderDate:      orderDate,
		IdempotencyKey: stringArg(p.Args, "idempotencyKey"),
	})
	if err != nil {
		return nil, b.publicError("createOrder", err)
	}
	return createOrderPayload{Order: toOrderView(*order)}, nil
}

func (b *schemaBuilder) updateLowStockProducts(p graphql.ResolveParams) (any, error) {
	res, err := b.svc.Products.UpdateLowStockProducts(p.Context)
	if err != nil {
		return nil, b.publicError("updateLowStockProducts", err)
	}
	return updateLowStockProductsPayload{
		UpdatedProducts: toProductViews(res.Products),
		Message:         res.Message,
	}, nil
}

// publicError hides infrastructure detail from API callers.
func (b *schemaBuilder) publicError(op string, err error) error {
	if domain.IsValidation(err) ||
		errors.Is(err, domain.ErrDuplicateRequest) ||
		errors.Is(err, domain.ErrRestockInProgress) {
		return err
	}
	b.log.Error("graphql operation failed", "op", op, "err", err)
	if errors.Is(err, domain.ErrDatastoreUnavailable) {
		return domain.ErrDatastoreUnavailable
	}
	return errors.New("internal error")
}

func stringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, name string) (int, bool) {
	switch v := args[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func decimalArg(args map[string]any, name string) *decimal.Decimal {
	var d decimal.Decimal
	switch v := args[name].(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	default:
		return nil
	}
	return &d
}

// timeArg accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (taken as UTC midnight).
func timeArg(args map[string]any, name string) (*time.Time, error) {
	s := strings.TrimSpace(stringArg(args, name))
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", domain.ErrInvalidFilter, name)
}
