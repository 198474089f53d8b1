package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/example/booking-orchestrator/internal/models"
)

// DeclinedMethodPrefix marks payment methods the sandbox always declines,
// the way gateway test cards do.
const DeclinedMethodPrefix = "pm_declined"

type intentState struct {
	intent     models.PaymentIntent
	refundable int64
}

// Sandbox is an in-memory stand-in for a payment gateway. Intents confirm
// instantly, declined test methods fail, and refunds draw down a per-intent
// refundable balance. Wire protocols of real gateways are out of scope; the
// orchestrator only sees this interface.
type Sandbox struct {
	mu      sync.Mutex
	intents map[string]*intentState
	refunds map[string]models.RefundConfirmation
	logger  *slog.Logger
}

func NewSandbox(logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sandbox{
		intents: make(map[string]*intentState),
		refunds: make(map[string]models.RefundConfirmation),
		logger:  logger,
	}
}

func (s *Sandbox) CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	if amountMinorUnits <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountMinorUnits)
	}
	if currency == "" {
		return nil, fmt.Errorf("currency is required")
	}
	intent := models.PaymentIntent{
		ID:       "pi_" + uuid.NewString(),
		Amount:   amountMinorUnits,
		Currency: strings.ToUpper(currency),
		Status:   models.PaymentIntentRequiresConfirmation,
	}
	s.mu.Lock()
	s.intents[intent.ID] = &intentState{intent: intent}
	s.mu.Unlock()

	s.logger.Debug("payment intent created", "intent_id", intent.ID, "amount", amountMinorUnits, "currency", intent.Currency, "kind", metadata["kind"])
	out := intent
	return &out, nil
}

func (s *Sandbox) ConfirmPayment(ctx context.Context, paymentIntentID, paymentMethodID string) (*models.PaymentConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.intents[paymentIntentID]
	if !ok {
		return nil, fmt.Errorf("unknown payment intent %s", paymentIntentID)
	}
	if state.intent.Status == models.PaymentIntentSucceeded {
		return &models.PaymentConfirmation{IntentID: paymentIntentID, Status: models.PaymentIntentSucceeded}, nil
	}
	if strings.HasPrefix(paymentMethodID, DeclinedMethodPrefix) {
		state.intent.Status = models.PaymentIntentFailed
		return &models.PaymentConfirmation{IntentID: paymentIntentID, Status: models.PaymentIntentFailed}, nil
	}
	state.intent.Status = models.PaymentIntentSucceeded
	state.refundable = state.intent.Amount
	return &models.PaymentConfirmation{IntentID: paymentIntentID, Status: models.PaymentIntentSucceeded}, nil
}

func (s *Sandbox) ProcessRefund(ctx context.Context, paymentIntentID string, amountMinorUnits int64, reason string) (*models.RefundConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.intents[paymentIntentID]
	if !ok {
		return nil, fmt.Errorf("unknown payment intent %s", paymentIntentID)
	}
	if state.intent.Status != models.PaymentIntentSucceeded {
		return nil, fmt.Errorf("payment intent %s was never captured", paymentIntentID)
	}
	if amountMinorUnits <= 0 {
		return nil, fmt.Errorf("refund amount must be positive, got %d", amountMinorUnits)
	}
	if amountMinorUnits > state.refundable {
		return nil, fmt.Errorf("refund of %d exceeds refundable balance %d on %s", amountMinorUnits, state.refundable, paymentIntentID)
	}
	state.refundable -= amountMinorUnits

	refund := models.RefundConfirmation{
		ID:       "re_" + uuid.NewString(),
		IntentID: paymentIntentID,
		Amount:   amountMinorUnits,
		Status:   models.RefundStatusSucceeded,
	}
	s.refunds[refund.ID] = refund
	s.logger.Debug("refund processed", "refund_id", refund.ID, "intent_id", paymentIntentID, "amount", amountMinorUnits, "reason", reason)
	out := refund
	return &out, nil
}

// Refundable reports the remaining refundable balance on an intent, for
// inspection in tests and admin tooling.
func (s *Sandbox) Refundable(paymentIntentID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.intents[paymentIntentID]
	if !ok {
		return 0, false
	}
	return state.refundable, true
}
