// Package rpc defines the crm.v1.CRMService gRPC contract. Messages travel as JSON
// through the codec registered in this package.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "crm.v1.CRMService"

type CRMServiceServer interface {
	CreateCustomer(context.Context, *CreateCustomerRequest) (*CreateCustomerResponse, error)
	BulkCreateCustomers(context.Context, *BulkCreateCustomersRequest) (*BulkCreateCustomersResponse, error)
	CreateProduct(context.Context, *CreateProductRequest) (*CreateProductResponse, error)
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)
	UpdateLowStockProducts(context.Context, *UpdateLowStockProductsRequest) (*UpdateLowStockProductsResponse, error)
	ListCustomers(context.Context, *ListCustomersRequest) (*ListCustomersResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	GenerateReport(context.Context, *GenerateReportRequest) (*GenerateReportResponse, error)
}

func RegisterCRMServiceServer(s grpc.ServiceRegistrar, srv CRMServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CRMServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateCustomer", func(s CRMServiceServer, ctx context.Context, in *CreateCustomerRequest) (any, error) {
			return s.CreateCustomer(ctx, in)
		}),
		unary("BulkCreateCustomers", func(s CRMServiceServer, ctx context.Context, in *BulkCreateCustomersRequest) (any, error) {
			return s.BulkCreateCustomers(ctx, in)
		}),
		unary("CreateProduct", func(s CRMServiceServer, ctx context.Context, in *CreateProductRequest) (any, error) {
			return s.CreateProduct(ctx, in)
		}),
		unary("CreateOrder", func(s CRMServiceServer, ctx context.Context, in *CreateOrderRequest) (any, error) {
			return s.CreateOrder(ctx, in)
		}),
		unary("UpdateLowStockProducts", func(s CRMServiceServer, ctx context.Context, in *UpdateLowStockProductsRequest) (any, error) {
			return s.UpdateLowStockProducts(ctx, in)
		}),
		unary("ListCustomers", func(s CRMServiceServer, ctx context.Context, in *ListCustomersRequest) (any, error) {
			return s.ListCustomers(ctx, in)
		}),
		unary("ListProducts", func(s CRMServiceServer, ctx context.Context, in *ListProductsRequest) (any, error) {
			return s.ListProducts(ctx, in)
		}),
		unary("ListOrders", func(s CRMServiceServer, ctx context.Context, in *ListOrdersRequest) (any, error) {
			return s.ListOrders(ctx, in)
		}),
		unary("GenerateReport", func(s CRMServiceServer, ctx context.Context, in *GenerateReportRequest) (any, error) {
			return s.GenerateReport(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crm/v1/crm.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req any](method string, call func(CRMServiceServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CRMServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CRMServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CRMServiceClient calls CRMService over a connection; every call uses the JSON codec.
type CRMServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCRMServiceClient(cc grpc.ClientConnInterface) *CRMServiceClient {
	return &CRMServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CRMServiceClient) CreateCustomer(ctx context.Context, in *CreateCustomerRequest, opts ...grpc.CallOption) (*CreateCustomerResponse, error) {
	return invoke[CreateCustomerResponse](ctx, c.cc, "CreateCustomer", in, opts)
}

func (c *CRMServiceClient) BulkCreateCustomers(ctx context.Context, in *BulkCreateCustomersRequest, opts ...grpc.CallOption) (*BulkCreateCustomersResponse, error) {
	return invoke[BulkCreateCustomersResponse](ctx, c.cc, "BulkCreateCustomers", in, opts)
}

func (c *CRMServiceClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*CreateProductResponse, error) {
	return invoke[CreateProductResponse](ctx, c.cc, "CreateProduct", in, opts)
}

func (c *CRMServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error) {
	return invoke[CreateOrderResponse](ctx, c.cc, "CreateOrder", in, opts)
}

func (c *CRMServiceClient) UpdateLowStockProducts(ctx context.Context, in *UpdateLowStockProductsRequest, opts ...grpc.CallOption) (*UpdateLowStockProductsResponse, error) {
	return invoke[UpdateLowStockProductsResponse](ctx, c.cc, "UpdateLowStockProducts", in, opts)
}

func (c *CRMServiceClient) ListCustomers(ctx context.Context, in *ListCustomersRequest, opts ...grpc.CallOption) (*ListCustomersResponse, error) {
	return invoke[ListCustomersResponse](ctx, c.cc, "ListCustomers", in, opts)
}

func (c *CRMServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, "ListProducts", in, opts)
}

func (c *CRMServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c.cc, "ListOrders", in, opts)
}

func (c *CRMServiceClient) GenerateReport(ctx context.Context, in *GenerateReportRequest, opts ...grpc.CallOption) (*GenerateReportResponse, error) {
	return invoke[GenerateReportResponse](ctx, c.cc, "GenerateReport", in, opts)
}
