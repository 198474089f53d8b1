package booking

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryExhaustsAttemptsAndKeepsLastError(t *testing.T) {
	sentinel := errors.New("backend down")
	calls := 0
	_, err := RetryWithBackoff(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, sentinel
	}, RetryOptions{MaxRetries: 3, InitialDelay: time.Millisecond})

	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	if err != sentinel {
		t.Fatalf("the final error must propagate unchanged, got %v", err)
	}
}

func TestRetryStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	got, err := RetryWithBackoff(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, RetryOptions{MaxRetries: 5, InitialDelay: time.Millisecond})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryBackoffDoublesAndOnRetryObserves(t *testing.T) {
	var attempts []int
	var delays []time.Duration
	_, _ = RetryWithBackoff(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("always fails")
	}, RetryOptions{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		OnRetry: func(err error, attempt int, delay time.Duration) {
			if err == nil {
				t.Fatal("OnRetry must receive the attempt error")
			}
			attempts = append(attempts, attempt)
			delays = append(delays, delay)
		},
	})

	wantAttempts := []int{1, 2, 3}
	wantDelays := []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}
	if len(attempts) != len(wantAttempts) {
		t.Fatalf("expected %d retry observations, got %d", len(wantAttempts), len(attempts))
	}
	for i := range wantAttempts {
		if attempts[i] != wantAttempts[i] {
			t.Errorf("observation %d: expected attempt %d, got %d", i, wantAttempts[i], attempts[i])
		}
		if delays[i] != wantDelays[i] {
			t.Errorf("observation %d: expected delay %v, got %v", i, wantDelays[i], delays[i])
		}
	}
}

func TestRetryZeroRetriesRunsOnce(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	}, RetryOptions{MaxRetries: 0, InitialDelay: time.Millisecond})

	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected the error to surface")
	}
}

func TestRetryContextCancelsBackoffSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := RetryWithBackoff(ctx, func(ctx context.Context) (int, error) {
		calls++
		cancel() // fires while the executor sleeps before the next attempt
		return 0, errors.New("transient")
	}, RetryOptions{MaxRetries: 3, InitialDelay: time.Hour})

	if calls != 1 {
		t.Fatalf("expected the cancellation to stop further attempts, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetryNegativeMaxRetriesClampsToZero(t *testing.T) {
	calls := 0
	_, _ = RetryWithBackoff(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	}, RetryOptions{MaxRetries: -2, InitialDelay: time.Millisecond})
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}
