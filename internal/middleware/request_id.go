// internal/middleware/request_id.go
package middleware

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	// RequestIDHeader is the metadata key for the request ID
	RequestIDHeader = "x-request-id"
)

type (
	requestIDKey struct{}
	loggerKey    struct{}
)

// UnaryRequestIDInterceptor takes x-request-id from incoming metadata, or
// generates a UUID when absent, and echoes it in the response header. The
// context passed on carries the id and a logger tagged with it.
func UnaryRequestIDInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := extractRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx = WithRequestID(ctx, requestID)
		ctx = WithLogger(ctx, logger.With(slog.String("request_id", requestID)))

		// Fails only once headers are already sent, which cannot happen
		// before the handler runs.
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		return handler(ctx, req)
	}
}

// UnaryClientRequestIDInterceptor attaches a fresh request id to outgoing
// calls that do not already carry one.
func UnaryClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		if len(md.Get(RequestIDHeader)) == 0 {
			id := GetRequestID(ctx)
			if id == "" {
				id = uuid.NewString()
			}
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func extractRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(RequestIDHeader)
	if len(values) == 0 {
		return ""
	}

	return values[0]
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the request-scoped logger, or slog.Default.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
