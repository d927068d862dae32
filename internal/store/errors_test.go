package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), CodeUnavailable},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "slow"), CodeDeadlineExceeded},
		{"grpc precondition", status.Error(codes.FailedPrecondition, "index"), CodeFailedPrecondition},
		{"grpc not found", status.Error(codes.NotFound, "gone"), CodeNotFound},
		{"context deadline", context.DeadlineExceeded, CodeDeadlineExceeded},
		{"offline message", errors.New("the client is offline"), CodeUnavailable},
		{"anything else", errors.New("boom"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError("list", tt.err)
			var se *Error
			if !errors.As(err, &se) {
				t.Fatal("expected *store.Error")
			}
			if se.Code != tt.want {
				t.Errorf("code = %s, want %s", se.Code, tt.want)
			}
		})
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError("list", nil) != nil {
		t.Error("nil should stay nil")
	}
}

func TestWrapErrorPassThrough(t *testing.T) {
	inner := &Error{Code: CodeNotFound, Op: "get"}
	wrapped := WrapError("list", fmt.Errorf("outer: %w", inner))
	var se *Error
	if !errors.As(wrapped, &se) || se.Code != CodeNotFound {
		t.Errorf("inner code lost: %v", wrapped)
	}
}

func TestIsConnectivity(t *testing.T) {
	if !IsConnectivity(WrapError("list", status.Error(codes.Unavailable, "down"))) {
		t.Error("unavailable should be connectivity")
	}
	if !IsConnectivity(WrapError("list", status.Error(codes.DeadlineExceeded, "slow"))) {
		t.Error("deadline should be connectivity")
	}
	if IsConnectivity(WrapError("list", errors.New("boom"))) {
		t.Error("unknown should not be connectivity")
	}
	if IsConnectivity(nil) {
		t.Error("nil should not be connectivity")
	}
}
