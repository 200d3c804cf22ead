package kms

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName  = "bufcrypt.kms.v1.Crypto"
	sealMethod   = "/" + serviceName + "/Seal"
	openMethod   = "/" + serviceName + "/Open"
	digestMethod = "/" + serviceName + "/Digest"
)

type CryptoServer interface {
	Seal(context.Context, *SealRequest) (*SealResponse, error)
	Open(context.Context, *OpenRequest) (*OpenResponse, error)
	Digest(context.Context, *DigestRequest) (*DigestResponse, error)
}

func RegisterCryptoServer(s grpc.ServiceRegistrar, srv CryptoServer) {
	s.RegisterService(&cryptoServiceDesc, srv)
}

func sealHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SealRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoServer).Seal(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sealMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CryptoServer).Seal(ctx, req.(*SealRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func openHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(OpenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoServer).Open(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: openMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CryptoServer).Open(ctx, req.(*OpenRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func digestHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DigestRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoServer).Digest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: digestMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CryptoServer).Digest(ctx, req.(*DigestRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var cryptoServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CryptoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Seal", Handler: sealHandler},
		{MethodName: "Open", Handler: openHandler},
		{MethodName: "Digest", Handler: digestHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kms/service.go",
}
