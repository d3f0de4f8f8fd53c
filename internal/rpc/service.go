// Package rpc exposes usecases over gRPC without generated stubs: every
// method takes and returns a google.protobuf.Struct, and service descriptors
// are declared by hand.
package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Method is one unary RPC.
type Method func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// Service is implemented by every handler.
type Service interface {
	ServiceName() string
	Methods() map[string]Method
}

// Register adds svc to the server under its service name.
func Register(s *grpc.Server, svc Service) {
	name := svc.ServiceName()
	desc := grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*any)(nil),
		Streams:     []grpc.StreamDesc{},
	}
	for methodName, m := range svc.Methods() {
		desc.Methods = append(desc.Methods, methodDesc(name, methodName, m))
	}
	s.RegisterService(&desc, svc)
}

func methodDesc(service, name string, m Method) grpc.MethodDesc {
	fullMethod := fmt.Sprintf("/%s/%s", service, name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return m(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return m(ctx, req.(*structpb.Struct))
			})
		},
	}
}
