package util

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
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
			name:     "EAGAIN",
			err:      syscall.EAGAIN,
			expected: true,
		},
		{
			name:     "EBUSY",
			err:      syscall.EBUSY,
			expected: true,
		},
		{
			name:     "EIO",
			err:      syscall.EIO,
			expected: true,
		},
		{
			name:     "EACCES (not retryable)",
			err:      syscall.EACCES,
			expected: false,
		},
		{
			name:     "EXDEV (not retryable)",
			err:      syscall.EXDEV,
			expected: false,
		},
		{
			name:     "generic error (not retryable)",
			err:      errors.New("invalid argument"),
			expected: false,
		},
		{
			name:     "LinkError with ETIMEDOUT",
			err:      &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.ETIMEDOUT},
			expected: true,
		},
		{
			name:     "LinkError with EEXIST (not retryable)",
			err:      &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EEXIST},
			expected: false,
		},
		{
			name:     "PathError with EINTR",
			err:      &os.PathError{Op: "stat", Path: "/a", Err: syscall.EINTR},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsRetryableError(tt.err)
			if result != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v",
					tt.err, result, tt.expected)
			}
		})
	}
}

func testRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func TestRetry_ImmediateSuccess(t *testing.T) {
	attempts := 0
	err := Retry(testRetryConfig(), func() error {
		attempts++
		return nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	err := Retry(testRetryConfig(), func() error {
		attempts++
		if attempts < 3 {
			return syscall.EBUSY
		}
		return nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetry_FailureAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := Retry(testRetryConfig(), func() error {
		attempts++
		return syscall.ETIMEDOUT
	}, "test operation")

	if !errors.Is(err, syscall.ETIMEDOUT) {
		t.Errorf("Expected wrapped ETIMEDOUT, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts (max), got: %d", attempts)
	}
}

func TestRetry_NonRetryableError(t *testing.T) {
	attempts := 0
	err := Retry(testRetryConfig(), func() error {
		attempts++
		return syscall.EACCES
	}, "test operation")

	if !errors.Is(err, syscall.EACCES) {
		t.Errorf("Expected EACCES, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for non-retryable), got: %d", attempts)
	}
}

func TestRetry_NilConfigIsSingleAttempt(t *testing.T) {
	attempts := 0
	Retry(nil, func() error {
		attempts++
		return syscall.EAGAIN
	}, "test operation")

	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}
