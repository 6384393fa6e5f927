package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The Board service is described by hand: every message is a well-known
// protobuf type, so no generated code is needed.
//
//	service Board {
//	  rpc Connect(stream google.protobuf.Struct) returns (stream google.protobuf.Struct);
//	  rpc LookupUser(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	}
const (
	ServiceName      = "sketchboard.v1.Board"
	ConnectMethod    = "/" + ServiceName + "/Connect"
	LookupUserMethod = "/" + ServiceName + "/LookupUser"
)

// BoardServer is implemented by GRPCServer.
type BoardServer interface {
	Connect(stream grpc.ServerStream) error
	LookupUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
}

var BoardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LookupUser", Handler: lookupUserHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Connect", Handler: connectHandler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "sketchboard/v1/board.proto",
}

func connectHandler(srv any, stream grpc.ServerStream) error {
	return srv.(BoardServer).Connect(stream)
}

func lookupUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServer).LookupUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LookupUserMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServer).LookupUser(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
