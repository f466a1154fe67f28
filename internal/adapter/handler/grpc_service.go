package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is declared over protobuf well-known types, so it needs no
// generated code:
//
//	service OrderLedger {
//	  rpc CreateOrder(google.protobuf.Struct) returns (google.protobuf.Struct);
//	  rpc CancelOrder(google.protobuf.Int64Value) returns (google.protobuf.Empty);
//	  rpc GetOrder(google.protobuf.Int64Value) returns (google.protobuf.Struct);
//	  rpc IsHighValue(google.protobuf.StringValue) returns (google.protobuf.BoolValue);
//	}
const OrderLedgerServiceName = "orderledger.v1.OrderLedger"

const (
	createOrderMethod = "/" + OrderLedgerServiceName + "/CreateOrder"
	cancelOrderMethod = "/" + OrderLedgerServiceName + "/CancelOrder"
	getOrderMethod    = "/" + OrderLedgerServiceName + "/GetOrder"
	isHighValueMethod = "/" + OrderLedgerServiceName + "/IsHighValue"
)

type OrderLedgerServer interface {
	CreateOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelOrder(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	GetOrder(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	IsHighValue(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

func RegisterOrderLedgerServer(s grpc.ServiceRegistrar, srv OrderLedgerServer) {
	s.RegisterService(&OrderLedgerServiceDesc, srv)
}

var OrderLedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderLedgerServiceName,
	HandlerType: (*OrderLedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: createOrderHandler},
		{MethodName: "CancelOrder", Handler: cancelOrderHandler},
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "IsHighValue", Handler: isHighValueHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func createOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderLedgerServer).CreateOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createOrderMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderLedgerServer).CreateOrder(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func cancelOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderLedgerServer).CancelOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: cancelOrderMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderLedgerServer).CancelOrder(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderLedgerServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getOrderMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderLedgerServer).GetOrder(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func isHighValueHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderLedgerServer).IsHighValue(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: isHighValueMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderLedgerServer).IsHighValue(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// OrderLedgerClient calls the OrderLedger service.
type OrderLedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderLedgerClient(cc grpc.ClientConnInterface) *OrderLedgerClient {
	return &OrderLedgerClient{cc: cc}
}

func (c *OrderLedgerClient) CreateOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, createOrderMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderLedgerClient) CancelOrder(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, cancelOrderMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderLedgerClient) GetOrder(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getOrderMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderLedgerClient) IsHighValue(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, isHighValueMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
