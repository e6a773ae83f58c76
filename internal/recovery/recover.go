// Package recovery turns panics in user-supplied code (openers, scan
// callbacks) into errors so a misbehaving format does not take down the
// process.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoverToError runs fn and converts a panic into a gRPC Internal error.
// Use it at RPC boundaries.
//
//	err := recovery.RecoverToError(logger, "DoGet", func() error {
//	    return stream(ctx, unit)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			err = status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
		}
	}()
	return fn()
}

// RecoverToValue runs fn and converts a panic into an error with the zero
// value of T.
//
//	it, err := recovery.RecoverToValue(logger, "Open", func() (scan.RowIterator[Row], error) {
//	    return opener.Open(ctx, t, files)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()
	return fn()
}

func logPanic(logger *slog.Logger, operation string, r any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
}
