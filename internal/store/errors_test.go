package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrNotFound",
			err:      fmt.Errorf("failed to do something: %w", ErrNotFound),
			expected: true,
		},
		{
			name:     "ErrCardNotFound",
			err:      ErrCardNotFound,
			expected: true,
		},
		{
			name:     "ErrCardNotFound inside StoreError",
			err:      NewStoreError("card", "get", "lookup failed", ErrCardNotFound),
			expected: true,
		},
		{
			name:     "duplicate is not not-found",
			err:      ErrCardExists,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: true,
		},
		{
			name:     "wrapped ErrCardExists",
			err:      fmt.Errorf("failed to seed: %w", ErrCardExists),
			expected: true,
		},
		{
			name:     "ErrReviewLogExists",
			err:      ErrReviewLogExists,
			expected: true,
		},
		{
			name:     "not found is not duplicate",
			err:      ErrCardNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("card", "save", "database error", originalErr)

	expectedErrorString := "save operation on card failed: database error: database connection failed"
	if got := storeErr.Error(); got != expectedErrorString {
		t.Errorf("StoreError.Error() = %v, want %v", got, expectedErrorString)
	}

	if !errors.Is(storeErr, originalErr) {
		t.Errorf("errors.Is() not recognizing the wrapped error")
	}

	bare := NewStoreError("card", "get_all", "no rows", nil)
	if got := bare.Error(); got != "get_all operation on card failed: no rows" {
		t.Errorf("StoreError.Error() without cause = %v", got)
	}
}
