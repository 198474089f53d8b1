package booking

import (
	"math"
	"time"

	"github.com/example/booking-orchestrator/internal/models"
)

// DaysUntilCheckIn counts whole days between now and check-in, rounding down.
// A stay whose check-in has passed yields a negative count.
func DaysUntilCheckIn(now, checkIn time.Time) int {
	return int(math.Floor(checkIn.Sub(now).Hours() / 24))
}

// RefundForCancellation applies the hotel's cancellation policy to a paid
// total. The matching rule is the one with the largest notice window the
// guest still satisfies; when no rule matches, the most restrictive rule
// (smallest notice window, normally the zero-day one) applies instead. The
// rule's fee is deducted after the percentage and the result never goes
// negative. An empty policy refunds nothing.
func RefundForCancellation(policy []models.CancellationPolicyRule, total float64, daysUntilCheckIn int) float64 {
	rule, ok := applicableRule(policy, daysUntilCheckIn)
	if !ok {
		return 0
	}
	refund := total*rule.RefundPercent/100 - rule.Fee
	if refund < 0 {
		return 0
	}
	return roundCents(refund)
}

func applicableRule(policy []models.CancellationPolicyRule, daysUntilCheckIn int) (models.CancellationPolicyRule, bool) {
	if len(policy) == 0 {
		return models.CancellationPolicyRule{}, false
	}
	var best, strictest models.CancellationPolicyRule
	found := false
	for i, rule := range policy {
		if i == 0 || rule.DaysBeforeCheckIn < strictest.DaysBeforeCheckIn {
			strictest = rule
		}
		if rule.DaysBeforeCheckIn > daysUntilCheckIn {
			continue
		}
		if !found || rule.DaysBeforeCheckIn > best.DaysBeforeCheckIn {
			best = rule
			found = true
		}
	}
	if !found {
		return strictest, true
	}
	return best, true
}
