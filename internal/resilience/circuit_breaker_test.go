package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	failing := func() error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		if err := cb.Call(failing); err == nil {
			t.Fatalf("Expected failure on call %d", i)
		}
	}

	if cb.State() != StateOpen {
		t.Errorf("Expected open state after 3 failures, got %v", cb.State())
	}

	if err := cb.Call(failing); !errors.Is(err, ErrOpen) {
		t.Errorf("Expected ErrOpen while open, got %v", err)
	}
}

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	for i := 0; i < 10; i++ {
		if err := cb.Call(func() error { return nil }); err != nil {
			t.Fatalf("Call() failed: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("Expected closed state, got %v", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	cb.Call(func() error { return errors.New("boom") })
	cb.Call(func() error { return errors.New("boom") })
	cb.Call(func() error { return nil })
	cb.Call(func() error { return errors.New("boom") })
	cb.Call(func() error { return errors.New("boom") })

	if cb.State() != StateClosed {
		t.Errorf("Expected closed state after interleaved success, got %v", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenAfterResetTimeout(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)

	cb.Call(func() error { return errors.New("boom") })
	if cb.State() != StateOpen {
		t.Fatalf("Expected open state, got %v", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	// First call after the reset timeout is allowed as a trial
	if err := cb.Call(func() error { return nil }); err != nil {
		t.Fatalf("Expected trial call to pass, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Errorf("Expected half-open state, got %v", cb.State())
	}
}

func TestCircuitBreaker_ClosesAfterTrialSuccesses(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)

	cb.Call(func() error { return errors.New("boom") })
	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := cb.Call(func() error { return nil }); err != nil {
			t.Fatalf("Trial call %d failed: %v", i, err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("Expected closed state after trial successes, got %v", cb.State())
	}
}

func TestCircuitBreaker_ReopensOnTrialFailure(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)

	cb.Call(func() error { return errors.New("boom") })
	time.Sleep(20 * time.Millisecond)

	cb.Call(func() error { return errors.New("still broken") })

	if cb.State() != StateOpen {
		t.Errorf("Expected open state after trial failure, got %v", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute)

	cb.Call(func() error { return errors.New("boom") })
	if cb.State() != StateOpen {
		t.Fatalf("Expected open state, got %v", cb.State())
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("Expected closed state after Reset, got %v", cb.State())
	}
}
