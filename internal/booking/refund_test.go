package booking

import (
	"testing"
	"time"

	"github.com/example/booking-orchestrator/internal/models"
)

func standardTestPolicy() []models.CancellationPolicyRule {
	return []models.CancellationPolicyRule{
		{DaysBeforeCheckIn: 7, RefundPercent: 100},
		{DaysBeforeCheckIn: 2, RefundPercent: 50},
		{DaysBeforeCheckIn: 0, RefundPercent: 0},
	}
}

func TestRefundSelectsLargestSatisfiedRule(t *testing.T) {
	policy := standardTestPolicy()

	cases := []struct {
		days int
		want float64
	}{
		{days: 10, want: 1000}, // 7-day rule, full refund
		{days: 7, want: 1000},
		{days: 3, want: 500}, // 2-day rule
		{days: 2, want: 500},
		{days: 1, want: 0}, // zero-day rule
		{days: 0, want: 0},
	}
	for _, c := range cases {
		if got := RefundForCancellation(policy, 1000, c.days); got != c.want {
			t.Errorf("days=%d: expected %v, got %v", c.days, c.want, got)
		}
	}
}

func TestRefundFallsBackToStrictestRule(t *testing.T) {
	// Past check-in no rule matches; the zero-day rule still applies.
	if got := RefundForCancellation(standardTestPolicy(), 1000, -1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}

	// Without a zero-day rule the smallest notice window is the fallback.
	policy := []models.CancellationPolicyRule{
		{DaysBeforeCheckIn: 7, RefundPercent: 100},
		{DaysBeforeCheckIn: 2, RefundPercent: 50, Fee: 10},
	}
	if got := RefundForCancellation(policy, 1000, 1); got != 490 {
		t.Fatalf("expected the 2-day rule to apply, got %v", got)
	}
}

func TestRefundDeductsFeeAndFloorsAtZero(t *testing.T) {
	policy := []models.CancellationPolicyRule{
		{DaysBeforeCheckIn: 0, RefundPercent: 50, Fee: 25},
	}
	if got := RefundForCancellation(policy, 1000, 1); got != 475 {
		t.Fatalf("expected 475, got %v", got)
	}
	// 50% of 40 is 20, the 25 fee pushes it negative
	if got := RefundForCancellation(policy, 40, 1); got != 0 {
		t.Fatalf("expected floor at 0, got %v", got)
	}
}

func TestRefundPolicyOrderDoesNotMatter(t *testing.T) {
	shuffled := []models.CancellationPolicyRule{
		{DaysBeforeCheckIn: 0, RefundPercent: 0},
		{DaysBeforeCheckIn: 7, RefundPercent: 100},
		{DaysBeforeCheckIn: 2, RefundPercent: 50},
	}
	if got := RefundForCancellation(shuffled, 1000, 3); got != 500 {
		t.Fatalf("expected 500, got %v", got)
	}
}

func TestRefundEmptyPolicy(t *testing.T) {
	if got := RefundForCancellation(nil, 1000, 5); got != 0 {
		t.Fatalf("expected 0 for empty policy, got %v", got)
	}
}

func TestDaysUntilCheckIn(t *testing.T) {
	checkIn := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		now  time.Time
		want int
	}{
		{now: time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC), want: 3},
		{now: time.Date(2026, 6, 9, 12, 0, 0, 0, time.UTC), want: 0},   // half a day out
		{now: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), want: 0},   // check-in day
		{now: time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC), want: -1}, // already past
	}
	for _, c := range cases {
		if got := DaysUntilCheckIn(c.now, checkIn); got != c.want {
			t.Errorf("now=%v: expected %d, got %d", c.now, c.want, got)
		}
	}
}
