// internal/middleware/recovery.go
package middleware

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryRecoveryInterceptor turns a handler panic into an Internal status
// and logs the stack through the request-scoped logger.
func UnaryRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				Logger(ctx).Error("panic in handler",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()))
				resp, err = nil, status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
