package booking

import (
	"sync"
	"time"
)

// OperationClass separates limiter state per kind of booking action. Each
// class gets its own limiter instance; denial on one class never affects
// another class for the same identity.
type OperationClass string

const (
	ClassAvailability OperationClass = "availability"
	ClassBooking      OperationClass = "booking"
	ClassModification OperationClass = "modification"
	ClassCancellation OperationClass = "cancellation"
)

// Decision is the outcome of a limiter check. RetryAfter is rounded up to
// whole seconds and only set on denial.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts requests per identity over fixed windows. The window
// resets wholesale when it elapses, so a burst straddling the boundary can
// reach up to twice the nominal rate; that is a deliberate simplification,
// not a sliding window waiting to be bolted on.
type RateLimiter struct {
	mu          sync.Mutex
	class       OperationClass
	maxRequests int
	window      time.Duration
	entries     map[string]*windowEntry
	now         func() time.Time
}

func NewRateLimiter(class OperationClass, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		class:       class,
		maxRequests: maxRequests,
		window:      window,
		entries:     make(map[string]*windowEntry),
		now:         time.Now,
	}
}

func (l *RateLimiter) Class() OperationClass { return l.class }

// Check counts the request against the identity's current window. A first
// request, or one arriving after the window elapsed, starts a fresh window
// at count 1.
func (l *RateLimiter) Check(identity string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[identity]
	if !ok || !now.Before(entry.resetAt) {
		entry = &windowEntry{count: 1, resetAt: now.Add(l.window)}
		l.entries[identity] = entry
		return Decision{Allowed: true, Remaining: l.maxRequests - 1, ResetAt: entry.resetAt}
	}

	if entry.count < l.maxRequests {
		entry.count++
		return Decision{Allowed: true, Remaining: l.maxRequests - entry.count, ResetAt: entry.resetAt}
	}

	return Decision{
		Allowed:    false,
		Remaining:  0,
		ResetAt:    entry.resetAt,
		RetryAfter: ceilToSecond(entry.resetAt.Sub(now)),
	}
}

// Enforce returns a RateLimitError carrying the wait guidance on denial.
func (l *RateLimiter) Enforce(identity string) error {
	decision := l.Check(identity)
	if decision.Allowed {
		return nil
	}
	return &RateLimitError{
		Class:      l.class,
		RetryAfter: decision.RetryAfter,
		ResetAt:    decision.ResetAt,
	}
}

// Reset clears the identity's window. Administrative and test hook.
func (l *RateLimiter) Reset(identity string) {
	l.mu.Lock()
	delete(l.entries, identity)
	l.mu.Unlock()
}

// Count reports the requests used in the identity's current window. An
// elapsed window reads as zero without mutating any state.
func (l *RateLimiter) Count(identity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[identity]
	if !ok || !l.now().Before(entry.resetAt) {
		return 0
	}
	return entry.count
}

func ceilToSecond(d time.Duration) time.Duration {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs * time.Second
}
