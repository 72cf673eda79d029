package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/crm/internal/adapter/handler/rpc"
	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/core/service"
)

type GRPCHandler struct {
	svc *service.Services
	log *slog.Logger
}

var _ rpc.CRMServiceServer = (*GRPCHandler)(nil)

func NewGRPCHandler(svc *service.Services, log *slog.Logger) *GRPCHandler {
	return &GRPCHandler{svc: svc, log: log}
}

func (h *GRPCHandler) CreateCustomer(ctx context.Context, req *rpc.CreateCustomerRequest) (*rpc.CreateCustomerResponse, error) {
	res, err := h.svc.Customers.CreateCustomer(ctx, service.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}, req.IdempotencyKey)
	if err != nil {
		return nil, h.statusError("CreateCustomer", err)
	}
	return &rpc.CreateCustomerResponse{Customer: toRPCCustomer(res.Customer), Message: res.Message}, nil
}

func (h *GRPCHandler) BulkCreateCustomers(ctx context.Context, req *rpc.BulkCreateCustomersRequest) (*rpc.BulkCreateCustomersResponse, error) {
	inputs := make([]service.CustomerInput, len(req.Customers))
	for i, c := range req.Customers {
		inputs[i] = service.CustomerInput{Name: c.Name, Email: c.Email, Phone: c.Phone}
	}

	res, err := h.svc.Customers.BulkCreateCustomers(ctx, inputs)
	if err != nil {
		return nil, h.statusError("BulkCreateCustomers", err)
	}

	out := &rpc.BulkCreateCustomersResponse{
		Customers: make([]*rpc.Customer, len(res.Customers)),
		Errors:    res.Errors,
	}
	for i, c := range res.Customers {
		out.Customers[i] = toRPCCustomer(c)
	}
	return out, nil
}

func (h *GRPCHandler) CreateProduct(ctx context.Context, req *rpc.CreateProductRequest) (*rpc.CreateProductResponse, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, domain.ErrInvalidPrice.Error())
	}

	product, err := h.svc.Products.CreateProduct(ctx, service.CreateProductInput{
		Name:  req.Name,
		Price: price,
		Stock: req.Stock,
	})
	if err != nil {
		return nil, h.statusError("CreateProduct", err)
	}
	return &rpc.CreateProductResponse{Product: toRPCProduct(*product)}, nil
}

func (h *GRPCHandler) CreateOrder(ctx context.Context, req *rpc.CreateOrderRequest) (*rpc.CreateOrderResponse, error) {
	order, err := h.svc.Orders.CreateOrder(ctx, service.CreateOrderInput{
		CustomerID:     req.CustomerID,
		ProductIDs:     req.ProductIDs,
		OrderDate:      req.OrderDate,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, h.statusError("CreateOrder", err)
	}
	return &rpc.CreateOrderResponse{Order: toRPCOrder(*order)}, nil
}

func (h *GRPCHandler) UpdateLowStockProducts(ctx context.Context, _ *rpc.UpdateLowStockProductsRequest) (*rpc.UpdateLowStockProductsResponse, error) {
	res, err := h.svc.Products.UpdateLowStockProducts(ctx)
	if err != nil {
		return nil, h.statusError("UpdateLowStockProducts", err)
	}
	return &rpc.UpdateLowStockProductsResponse{
		UpdatedProducts: toRPCProducts(res.Products),
		Message:         res.Message,
	}, nil
}

func (h *GRPCHandler) ListCustomers(ctx context.Context, req *rpc.ListCustomersRequest) (*rpc.ListCustomersResponse, error) {
	customers, err := h.svc.Customers.ListCustomers(ctx, domain.CustomerFilter{
		NameContains:  req.NameContains,
		EmailContains: req.EmailContains,
		OrderBy:       req.OrderBy,
	})
	if err != nil {
		return nil, h.statusError("ListCustomers", err)
	}

	out := &rpc.ListCustomersResponse{Customers: make([]*rpc.Customer, len(customers))}
	for i, c := range customers {
		out.Customers[i] = toRPCCustomer(c)
	}
	return out, nil
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *rpc.ListProductsRequest) (*rpc.ListProductsResponse, error) {
	filter := domain.ProductFilter{
		NameContains: req.NameContains,
		StockLt:      req.StockLt,
		OrderBy:      req.OrderBy,
	}
	var err error
	if filter.PriceGte, err = parseDecimalFilter(req.PriceGte); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if filter.PriceLte, err = parseDecimalFilter(req.PriceLte); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	products, err := h.svc.Products.ListProducts(ctx, filter)
	if err != nil {
		return nil, h.statusError("ListProducts", err)
	}
	return &rpc.ListProductsResponse{Products: toRPCProducts(products)}, nil
}

func (h *GRPCHandler) ListOrders(ctx context.Context, req *rpc.ListOrdersRequest) (*rpc.ListOrdersResponse, error) {
	total, err := parseDecimalFilter(req.TotalAmountGte)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	orders, err := h.svc.Orders.ListOrders(ctx, domain.OrderFilter{
		CustomerID:     req.CustomerID,
		OrderDateGte:   req.OrderDateGte,
		OrderDateLte:   req.OrderDateLte,
		TotalAmountGte: total,
		OrderBy:        req.OrderBy,
	})
	if err != nil {
		return nil, h.statusError("ListOrders", err)
	}

	out := &rpc.ListOrdersResponse{Orders: make([]*rpc.Order, len(orders))}
	for i, o := range orders {
		out.Orders[i] = toRPCOrder(o)
	}
	return out, nil
}

func (h *GRPCHandler) GenerateReport(ctx context.Context, _ *rpc.GenerateReportRequest) (*rpc.GenerateReportResponse, error) {
	r, err := h.svc.Reports.Generate(ctx)
	if err != nil {
		return nil, h.statusError("GenerateReport", err)
	}
	return &rpc.GenerateReportResponse{
		TotalCustomers: r.TotalCustomers,
		TotalOrders:    r.TotalOrders,
		TotalRevenue:   r.TotalRevenue.StringFixed(2),
	}, nil
}

func (h *GRPCHandler) statusError(method string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrInvalidCustomer):
		code = codes.NotFound
	case errors.Is(err, domain.ErrDuplicateRequest):
		code = codes.Aborted
	case errors.Is(err, domain.ErrRestockInProgress):
		code = codes.FailedPrecondition
	case domain.IsValidation(err):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrDatastoreUnavailable):
		h.log.Error("rpc failed", "method", method, "err", err)
		return status.Error(codes.Unavailable, domain.ErrDatastoreUnavailable.Error())
	default:
		h.log.Error("rpc failed", "method", method, "err", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func parseDecimalFilter(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, domain.ErrInvalidFilter
	}
	return &d, nil
}

func toRPCCustomer(c domain.Customer) *rpc.Customer {
	return &rpc.Customer{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

func toRPCProduct(p domain.Product) *rpc.Product {
	return &rpc.Product{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
	}
}

func toRPCProducts(products []domain.Product) []*rpc.Product {
	out := make([]*rpc.Product, len(products))
	for i, p := range products {
		out[i] = toRPCProduct(p)
	}
	return out
}

func toRPCOrder(o domain.Order) *rpc.Order {
	out := &rpc.Order{
		ID:          o.ID,
		Products:    toRPCProducts(o.Products),
		TotalAmount: o.TotalAmount.StringFixed(2),
		OrderDate:   o.OrderDate,
	}
	if o.Customer != nil {
		out.Customer = toRPCCustomer(*o.Customer)
	}
	return out
}
