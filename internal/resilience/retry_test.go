package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, &RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	})

	if err != nil {
		t.Fatalf("Retry() failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("always failing")
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return wantErr
	}, &RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Retry(ctx, func() error {
		calls++
		cancel()
		return errors.New("failing")
	}, &RetryConfig{
		MaxAttempts:    10,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Second,
		Multiplier:     2.0,
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected cancellation to stop retries after 1 call, got %d", calls)
	}
}

func TestRetry_FirstTrySuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("Retry() failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestBackoff(t *testing.T) {
	initial := 100 * time.Millisecond
	max := 5 * time.Second

	if got := Backoff(0, initial, max, 2.0); got != 100*time.Millisecond {
		t.Errorf("Attempt 0: expected 100ms, got %v", got)
	}
	if got := Backoff(1, initial, max, 2.0); got != 200*time.Millisecond {
		t.Errorf("Attempt 1: expected 200ms, got %v", got)
	}
	if got := Backoff(2, initial, max, 2.0); got != 400*time.Millisecond {
		t.Errorf("Attempt 2: expected 400ms, got %v", got)
	}
	if got := Backoff(10, initial, max, 2.0); got != max {
		t.Errorf("Attempt 10: expected cap %v, got %v", max, got)
	}
}
