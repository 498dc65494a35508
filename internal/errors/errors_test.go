package errors

import (
	"fmt"
	"testing"
)

func TestTrackerError_Error(t *testing.T) {
	err := &TrackerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "Not found",
	}

	expected := "NOT_FOUND: Not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("Company name is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "Company name is required" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound()

	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Message != "Not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Not found")
	}
}

func TestNewInternal_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewInternal("Failed to fetch startups", cause)

	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Message != "Failed to fetch startups" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
	if err.Error() != "INTERNAL: Failed to fetch startups: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound(), ErrNotFound, true},
		{"different code", NewNotFound(), ErrInternal, false},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("loading detail: %w", NewNotFound())

	tErr, ok := As(wrapped)
	if !ok {
		t.Fatal("As() should find the wrapped TrackerError")
	}
	if tErr.Status != 404 {
		t.Errorf("Status = %d, want 404", tErr.Status)
	}
	if !Is(wrapped, ErrNotFound) {
		t.Error("Is() should see through wrapping")
	}
	if _, ok := As(fmt.Errorf("plain")); ok {
		t.Error("As() should not match a plain error")
	}
}
