package models

type PaymentIntentStatus string

const (
	PaymentIntentRequiresConfirmation PaymentIntentStatus = "requires_confirmation"
	PaymentIntentSucceeded            PaymentIntentStatus = "succeeded"
	PaymentIntentFailed               PaymentIntentStatus = "failed"
)

// PaymentIntent amounts are integer minor units (cents) to keep money
// arithmetic exact on the payment side.
type PaymentIntent struct {
	ID       string              `json:"id"`
	Amount   int64               `json:"amount"`
	Currency string              `json:"currency"`
	Status   PaymentIntentStatus `json:"status"`
}

type PaymentConfirmation struct {
	IntentID string              `json:"intent_id"`
	Status   PaymentIntentStatus `json:"status"`
}

type RefundConfirmation struct {
	ID       string       `json:"id"`
	IntentID string       `json:"intent_id"`
	Amount   int64        `json:"amount"`
	Status   RefundStatus `json:"status"`
}

// MinorUnits converts a major-unit amount (e.g. 129.99) to integer cents.
func MinorUnits(amount float64) int64 {
	if amount < 0 {
		return -MinorUnits(-amount)
	}
	return int64(amount*100 + 0.5)
}
