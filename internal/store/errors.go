package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode is the closed enumeration of store failure classes.
type ErrorCode string

const (
	// CodeUnavailable covers unreachable-store and offline conditions.
	CodeUnavailable ErrorCode = "unavailable"
	// CodeDeadlineExceeded covers store call timeouts.
	CodeDeadlineExceeded ErrorCode = "deadline-exceeded"
	// CodeFailedPrecondition covers rejected operations, e.g. a query
	// missing a required index.
	CodeFailedPrecondition ErrorCode = "failed-precondition"
	// CodeNotFound covers reads of missing documents.
	CodeNotFound ErrorCode = "not-found"
	// CodeUnknown is the catch-all for everything else.
	CodeUnknown ErrorCode = "unknown"
)

// Error is a tagged store failure. Operations wrap the backend error so
// callers can still unwrap it, but react on the code instead of matching
// strings.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WrapError classifies err under op. A nil err stays nil; an existing
// *Error passes through so codes assigned close to the backend survive.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Code: classify(err), Op: op, Err: err}
}

// IsConnectivity reports whether err represents loss of connectivity to
// the store. Callers route these to the offline surface instead of a
// generic failure.
func IsConnectivity(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == CodeUnavailable || se.Code == CodeDeadlineExceeded
	}
	return false
}

// IsNotFound reports whether err is a missing-document failure.
func IsNotFound(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == CodeNotFound
	}
	return false
}

func classify(err error) ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeDeadlineExceeded
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable:
			return CodeUnavailable
		case codes.DeadlineExceeded:
			return CodeDeadlineExceeded
		case codes.FailedPrecondition:
			return CodeFailedPrecondition
		case codes.NotFound:
			return CodeNotFound
		}
	}
	if strings.Contains(err.Error(), "client is offline") {
		return CodeUnavailable
	}
	return CodeUnknown
}
