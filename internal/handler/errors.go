// internal/handler/errors.go
package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SyedDaiam9101/conditioning-service/internal/device"
	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	pb "github.com/SyedDaiam9101/conditioning-service/internal/enhancerpb"
	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// grpcError maps known internal errors to appropriate gRPC status errors
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()

	case errors.Is(err, enhance.ErrInvalidParameters),
		errors.Is(err, enhance.ErrMissingEmbedding),
		errors.Is(err, enhance.ErrHeadCount),
		errors.Is(err, enhance.ErrHiddenWidth),
		errors.Is(err, pb.ErrNilEntry),
		errors.Is(err, tensor.ErrShape),
		errors.Is(err, tensor.ErrDType):
		return status.Errorf(codes.InvalidArgument, "%v", err)

	case errors.Is(err, device.ErrUnknownDevice):
		return status.Errorf(codes.FailedPrecondition, "%v", err)

	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}

// invalidArgumentError creates an InvalidArgument gRPC error
func invalidArgumentError(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// failedPreconditionError creates a FailedPrecondition gRPC error
func failedPreconditionError(format string, args ...any) error {
	return status.Errorf(codes.FailedPrecondition, format, args...)
}

// internalError creates an Internal gRPC error
func internalError(format string, args ...any) error {
	return status.Errorf(codes.Internal, format, args...)
}
