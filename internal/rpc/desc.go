package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceDesc is the hand-authored equivalent of a protoc-generated
// *_grpc.pb.go's _ServiceDesc: the method/stream table grpc.Server.RegisterService
// needs. HandlerType fences RegisterService to only accept an implementation of
// walletServiceServer, same as generated code would.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "soltrace.WalletService",
	HandlerType: (*walletServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Init", Handler: initHandler},
		{MethodName: "Unsubscribe", Handler: unsubscribeHandler},
		{MethodName: "Holdings", Handler: holdingsHandler},
		{MethodName: "GetTrade", Handler: getTradeHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "soltrace.proto",
}

func initHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(walletServiceServer).Init(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/soltrace.WalletService/Init"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(walletServiceServer).Init(ctx, req.(*InitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func unsubscribeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UnsubscribeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(walletServiceServer).Unsubscribe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/soltrace.WalletService/Unsubscribe"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(walletServiceServer).Unsubscribe(ctx, req.(*UnsubscribeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func holdingsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HoldingsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(walletServiceServer).Holdings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/soltrace.WalletService/Holdings"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(walletServiceServer).Holdings(ctx, req.(*HoldingsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getTradeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetTradeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(walletServiceServer).GetTrade(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/soltrace.WalletService/GetTrade"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(walletServiceServer).GetTrade(ctx, req.(*GetTradeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(walletServiceServer).Subscribe(m, &walletServiceSubscribeServer{stream})
}

// RegisterServer attaches a Server to a grpc.Server under the codec-agnostic
// wire contract above. The JSON codec itself is registered by this package's
// init (codec.go), so no generated protobuf marshaler is needed.
func RegisterServer(grpcServer *grpc.Server, srv *Server) {
	grpcServer.RegisterService(&ServiceDesc, srv)
}

// DialOption selects the JSON codec for a client dialing this service, so a
// caller never needs to hand-construct a CallContentSubtype option.
func DialOption() grpc.DialOption {
	return grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodec{}.Name()))
}
