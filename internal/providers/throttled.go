package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/booking-orchestrator/internal/booking"
	"github.com/example/booking-orchestrator/internal/models"
)

// Throttled caps the outbound call rate to one backend. It wraps any adapter
// and waits for a token before each call, so retry storms cannot hammer a
// provider past its contract. This is separate from the per-identity inbound
// limiting the orchestrator does.
type Throttled struct {
	inner   booking.ProviderAdapter
	limiter *rate.Limiter
}

func Throttle(inner booking.ProviderAdapter, rps rate.Limit, burst int) *Throttled {
	return &Throttled{inner: inner, limiter: rate.NewLimiter(rps, burst)}
}

func (t *Throttled) Name() string { return t.inner.Name() }

func (t *Throttled) SupportsHotel(hotel models.Hotel) bool { return t.inner.SupportsHotel(hotel) }

func (t *Throttled) CheckAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time) (*models.AvailabilityResponse, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.CheckAvailability(ctx, hotelID, checkIn, checkOut)
}

func (t *Throttled) GetHotelDetails(ctx context.Context, hotelID string) (*models.Hotel, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.GetHotelDetails(ctx, hotelID)
}

func (t *Throttled) CreateReservation(ctx context.Context, req models.ReservationRequest) (*models.BookingConfirmation, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.CreateReservation(ctx, req)
}

func (t *Throttled) ModifyReservation(ctx context.Context, bookingID string, changes models.ReservationChanges) (*models.BookingConfirmation, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.ModifyReservation(ctx, bookingID, changes)
}

func (t *Throttled) CancelReservation(ctx context.Context, bookingID string) (*models.CancellationConfirmation, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.CancelReservation(ctx, bookingID)
}
