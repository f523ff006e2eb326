// internal/enhancerpb/service.go
package enhancerpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "conditioning.v1.Enhancer"
	// EnhanceFullMethod is the full method name of Enhance.
	EnhanceFullMethod = "/" + ServiceName + "/Enhance"
)

// EnhancerServer is the server API for the Enhancer service.
type EnhancerServer interface {
	Enhance(context.Context, *EnhanceRequest) (*EnhanceResponse, error)
}

// UnimplementedEnhancerServer can be embedded to have forward compatible
// implementations.
type UnimplementedEnhancerServer struct{}

// Enhance returns codes.Unimplemented.
func (UnimplementedEnhancerServer) Enhance(context.Context, *EnhanceRequest) (*EnhanceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Enhance not implemented")
}

// RegisterEnhancerServer registers srv with s.
func RegisterEnhancerServer(s grpc.ServiceRegistrar, srv EnhancerServer) {
	s.RegisterService(&Enhancer_ServiceDesc, srv)
}

func enhanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EnhanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnhancerServer).Enhance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EnhanceFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EnhancerServer).Enhance(ctx, req.(*EnhanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Enhancer_ServiceDesc is the grpc.ServiceDesc for the Enhancer service.
var Enhancer_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EnhancerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Enhance",
			Handler:    enhanceHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "conditioning/v1/enhancer",
}

// EnhancerClient is the client API for the Enhancer service.
type EnhancerClient interface {
	Enhance(ctx context.Context, in *EnhanceRequest, opts ...grpc.CallOption) (*EnhanceResponse, error)
}

type enhancerClient struct {
	cc grpc.ClientConnInterface
}

// NewEnhancerClient returns a client that always calls with the CBOR codec.
func NewEnhancerClient(cc grpc.ClientConnInterface) EnhancerClient {
	return &enhancerClient{cc: cc}
}

func (c *enhancerClient) Enhance(ctx context.Context, in *EnhanceRequest, opts ...grpc.CallOption) (*EnhanceResponse, error) {
	out := new(EnhanceResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, EnhanceFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
