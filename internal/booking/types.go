package booking

import (
	"context"
	"time"

	"github.com/example/booking-orchestrator/internal/models"
)

// ProviderAdapter is the integration contract one external inventory system
// implements. The registry owns adapter instances; the orchestrator borrows
// one per call and never holds on to it.
type ProviderAdapter interface {
	Name() string
	SupportsHotel(hotel models.Hotel) bool
	CheckAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time) (*models.AvailabilityResponse, error)
	GetHotelDetails(ctx context.Context, hotelID string) (*models.Hotel, error)
	CreateReservation(ctx context.Context, req models.ReservationRequest) (*models.BookingConfirmation, error)
	ModifyReservation(ctx context.Context, bookingID string, changes models.ReservationChanges) (*models.BookingConfirmation, error)
	CancelReservation(ctx context.Context, bookingID string) (*models.CancellationConfirmation, error)
}

// PaymentService is consumed by the mutating paths only. Amounts are minor
// units.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (*models.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, paymentIntentID, paymentMethodID string) (*models.PaymentConfirmation, error)
	ProcessRefund(ctx context.Context, paymentIntentID string, amountMinorUnits int64, reason string) (*models.RefundConfirmation, error)
}

// NotificationService failures are caught and logged by the orchestrator,
// never propagated to the caller.
type NotificationService interface {
	SendModificationConfirmation(ctx context.Context, b *models.BookingConfirmation, email string) error
	SendCancellationConfirmation(ctx context.Context, b *models.BookingConfirmation, refundAmount float64, email string) error
}
