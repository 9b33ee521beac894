package util

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// RetryConfig holds retry configuration for filesystem moves
type RetryConfig struct {
	MaxAttempts int           // Total attempts, including the first
	InitialWait time.Duration // Doubled after every failed attempt
	MaxWait     time.Duration // Cap on the wait between attempts
}

// SingleAttempt performs the operation once. Local disks rarely need more.
func SingleAttempt() *RetryConfig {
	return &RetryConfig{MaxAttempts: 1}
}

// DefaultRetryConfig suits network-mounted music folders
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     2 * time.Second,
	}
}

// IsRetryableError reports transient filesystem errors worth another attempt.
// Permission, name-length and cross-device failures are permanent.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var pathError *os.PathError
	var linkError *os.LinkError
	if errors.As(err, &pathError) {
		err = pathError.Err
	}
	if errors.As(err, &linkError) {
		err = linkError.Err
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN,
			syscall.EBUSY,
			syscall.EINTR,
			syscall.ETIMEDOUT,
			syscall.EIO:
			return true
		}
	}
	return false
}

// Retry executes operation with exponential backoff
func Retry(cfg *RetryConfig, operation func() error, operationName string) error {
	if cfg == nil || cfg.MaxAttempts <= 0 {
		cfg = SingleAttempt()
	}

	wait := cfg.InitialWait
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = operation()
		if err == nil {
			if attempt > 1 {
				DebugLog("Retry: %s succeeded on attempt %d/%d", operationName, attempt, cfg.MaxAttempts)
			}
			return nil
		}

		if !IsRetryableError(err) {
			return err
		}

		if attempt == cfg.MaxAttempts {
			if cfg.MaxAttempts > 1 {
				WarnLog("Retry: %s failed after %d attempts: %v", operationName, cfg.MaxAttempts, err)
				return fmt.Errorf("max retries exceeded (%d attempts): %w", cfg.MaxAttempts, err)
			}
			return err
		}

		DebugLog("Retry: %s failed (attempt %d/%d), retrying in %v: %v",
			operationName, attempt, cfg.MaxAttempts, wait, err)
		time.Sleep(wait)

		wait *= 2
		if cfg.MaxWait > 0 && wait > cfg.MaxWait {
			wait = cfg.MaxWait
		}
	}
	return err
}
