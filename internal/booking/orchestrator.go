package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/booking-orchestrator/internal/models"
	"github.com/example/booking-orchestrator/internal/obs"
	"github.com/example/booking-orchestrator/internal/validator"
)

// Orchestrator coordinates the booking lifecycle: it enforces rate limits,
// validates input, resolves the provider adapter, runs provider calls under
// the retry policy, reconciles cache state after mutations and sequences
// payment, refund and notification side effects. Leaf components never call
// back into it.
type Orchestrator struct {
	catalog  *HotelCatalog
	cache    *CacheStore
	limiters map[OperationClass]*RateLimiter
	registry *Registry
	store    *BookingStore
	pricing  *PricingEngine
	payments PaymentService
	notifier NotificationService

	maxRetries      int
	initialDelay    time.Duration
	providerTimeout time.Duration

	logger  *slog.Logger
	metrics *obs.Metrics
	now     func() time.Time
}

// Options carries the orchestrator's collaborators. Catalog, Cache,
// Registry, Pricing, Payments and Metrics must be set; the rest default.
type Options struct {
	Catalog  *HotelCatalog
	Cache    *CacheStore
	Limiters map[OperationClass]*RateLimiter
	Registry *Registry
	Store    *BookingStore
	Pricing  *PricingEngine
	Payments PaymentService
	Notifier NotificationService

	MaxRetries      int
	InitialDelay    time.Duration
	ProviderTimeout time.Duration

	Logger  *slog.Logger
	Metrics *obs.Metrics
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Store == nil {
		opts.Store = NewBookingStore()
	}
	if opts.Limiters == nil {
		opts.Limiters = map[OperationClass]*RateLimiter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 10 * time.Second
	}
	return &Orchestrator{
		catalog:         opts.Catalog,
		cache:           opts.Cache,
		limiters:        opts.Limiters,
		registry:        opts.Registry,
		store:           opts.Store,
		pricing:         opts.Pricing,
		payments:        opts.Payments,
		notifier:        opts.Notifier,
		maxRetries:      opts.MaxRetries,
		initialDelay:    opts.InitialDelay,
		providerTimeout: opts.ProviderTimeout,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		now:             time.Now,
	}
}

// CheckAvailability serves a stay query, from cache when fresh, from the
// hotel's provider otherwise.
func (o *Orchestrator) CheckAvailability(ctx context.Context, identity, hotelID string, checkIn, checkOut time.Time) (*models.AvailabilityResponse, error) {
	o.metrics.IncRequests(string(ClassAvailability))
	if err := o.enforce(ClassAvailability, identity); err != nil {
		return nil, err
	}
	if err := validator.ValidateStayDates(checkIn, checkOut, o.now()); err != nil {
		return nil, &ValidationError{Field: "dates", Reason: err.Error()}
	}
	hotel, err := o.catalog.Get(hotelID)
	if err != nil {
		return nil, err
	}
	return o.fetchAvailability(ctx, hotel, checkIn, checkOut)
}

// fetchAvailability is the shared cache-then-provider read path. Pricing
// derives its room data through here as a server-side call, so it does not
// count against the caller's availability budget.
func (o *Orchestrator) fetchAvailability(ctx context.Context, hotel models.Hotel, checkIn, checkOut time.Time) (*models.AvailabilityResponse, error) {
	key := AvailabilityKey(hotel.ID, checkIn, checkOut)
	if cached, ok := o.cache.GetAvailability(key); ok {
		o.metrics.IncCacheHits(NamespaceAvailability)
		return cached, nil
	}
	o.metrics.IncCacheMisses(NamespaceAvailability)

	adapter := o.registry.Resolve(hotel)
	resp, err := callProvider(ctx, o, adapter, "check_availability", func(ctx context.Context) (*models.AvailabilityResponse, error) {
		return adapter.CheckAvailability(ctx, hotel.ID, checkIn, checkOut)
	})
	if err != nil {
		return nil, err
	}
	o.cache.SetAvailability(key, resp)
	return resp, nil
}

// GetPricing quotes one room over one stay. The room data comes from the
// availability lookup; asking for a room availability does not list is a
// validation failure, not a provider call.
func (o *Orchestrator) GetPricing(ctx context.Context, identity, hotelID, roomID string, checkIn, checkOut time.Time, currency string) (*models.PricingDetails, error) {
	o.metrics.IncRequests("pricing")
	if err := validator.ValidateStayDates(checkIn, checkOut, o.now()); err != nil {
		return nil, &ValidationError{Field: "dates", Reason: err.Error()}
	}
	hotel, err := o.catalog.Get(hotelID)
	if err != nil {
		return nil, err
	}

	key := PricingKey(hotelID, roomID, checkIn, checkOut)
	if cached, ok := o.cache.GetPricing(key); ok && quoteCurrencyMatches(cached, currency) {
		o.metrics.IncCacheHits(NamespacePricing)
		return cached, nil
	}
	o.metrics.IncCacheMisses(NamespacePricing)

	avail, err := o.fetchAvailability(ctx, hotel, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	room, ok := models.FindRoom(avail.Rooms, roomID)
	if !ok {
		return nil, &ValidationError{Field: "room_id", Reason: "room not available for the requested stay"}
	}

	details := o.pricing.Quote(hotel, room, checkIn, checkOut)
	if currency != "" && !strings.EqualFold(currency, details.Currency) {
		converted, cerr := o.pricing.Convert(details.Total, details.Currency, currency)
		if cerr != nil {
			return nil, cerr
		}
		details.Converted = &converted
	}
	o.cache.SetPricing(key, details)
	return details, nil
}

// quoteCurrencyMatches reports whether a cached quote already answers the
// requested display currency. A mismatch is treated as a miss so the quote
// is recomputed with the right conversion overlay.
func quoteCurrencyMatches(details *models.PricingDetails, requested string) bool {
	if requested == "" {
		return true
	}
	effective := details.Currency
	if details.Converted != nil {
		effective = details.Converted.Currency
	}
	return strings.EqualFold(effective, requested)
}

// CreateBooking runs the reservation flow. When the request carries a
// payment method the total is charged up front; a reservation failure after
// a successful charge triggers a best-effort refund. A successful creation
// invalidates every cached availability and pricing entry for the hotel.
func (o *Orchestrator) CreateBooking(ctx context.Context, identity string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	o.metrics.IncRequests(string(ClassBooking))
	if err := o.enforce(ClassBooking, identity); err != nil {
		return nil, err
	}
	if err := o.validateBookingRequest(&req); err != nil {
		return nil, err
	}

	hotel, err := o.catalog.Get(req.HotelID)
	if err != nil {
		return nil, err
	}
	room, ok := models.FindRoom(hotel.Rooms, req.RoomID)
	if !ok {
		return nil, &ValidationError{Field: "room_id", Reason: "unknown room for hotel"}
	}
	if req.Guests > room.MaxGuests {
		return nil, &ValidationError{Field: "guests", Reason: fmt.Sprintf("room sleeps at most %d", room.MaxGuests)}
	}

	quote := o.pricing.Quote(hotel, room, req.CheckIn, req.CheckOut)
	if req.Currency != "" && !strings.EqualFold(req.Currency, quote.Currency) {
		converted, cerr := o.pricing.Convert(quote.Total, quote.Currency, req.Currency)
		if cerr != nil {
			return nil, cerr
		}
		quote.Converted = &converted
	}

	var intentID string
	if req.PaymentMethodID != "" {
		intentID, err = o.chargePayment(ctx, quote.Total, quote.Currency, req.PaymentMethodID, map[string]string{
			"kind":     "booking",
			"hotel_id": hotel.ID,
			"room_id":  room.RoomID,
		})
		if err != nil {
			return nil, err
		}
	}

	adapter := o.registry.Resolve(hotel)
	reservation := models.ReservationRequest{
		HotelID:  hotel.ID,
		Hotel:    hotel.Summary(),
		RoomID:   room.RoomID,
		Room:     room,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
		Guest:    req.Guest,
		Pricing:  *quote,
	}
	confirmation, err := callProvider(ctx, o, adapter, "create_reservation", func(ctx context.Context) (*models.BookingConfirmation, error) {
		return adapter.CreateReservation(ctx, reservation)
	})
	if err != nil {
		if intentID != "" {
			o.refundBestEffort(ctx, intentID, quote.Total, "reservation failed after charge")
		}
		return nil, err
	}

	now := o.now()
	confirmation.Status = models.BookingStatusConfirmed
	confirmation.PaymentIntentID = intentID
	if confirmation.CreatedAt.IsZero() {
		confirmation.CreatedAt = now
	}
	confirmation.UpdatedAt = now
	o.store.Put(confirmation)

	removed := o.cache.InvalidateHotel(hotel.ID)
	o.logger.Info("booking created",
		"booking_id", confirmation.BookingID,
		"reference", confirmation.Reference,
		"hotel_id", hotel.ID,
		"provider", adapter.Name(),
		"total", quote.Total,
		"cache_entries_invalidated", removed,
	)
	return confirmation, nil
}

// ModifyBooking re-prices the stay and commits the change through the
// provider. A price increase is charged before the commit; a decrease is
// refunded after it, and a failed refund reverts the modification. Either
// payment failure leaves the original booking in place.
func (o *Orchestrator) ModifyBooking(ctx context.Context, identity, bookingID string, changes models.BookingChanges) (*models.BookingConfirmation, error) {
	o.metrics.IncRequests(string(ClassModification))
	if err := o.enforce(ClassModification, identity); err != nil {
		return nil, err
	}

	original, err := o.store.Get(bookingID)
	if err != nil {
		return nil, err
	}
	if original.Status == models.BookingStatusCancelled {
		return nil, &ValidationError{Field: "booking_id", Reason: "booking has been cancelled"}
	}

	checkIn := original.CheckIn
	if changes.CheckIn != nil {
		checkIn = *changes.CheckIn
	}
	checkOut := original.CheckOut
	if changes.CheckOut != nil {
		checkOut = *changes.CheckOut
	}
	if err := validator.ValidateStayDates(checkIn, checkOut, o.now()); err != nil {
		return nil, &ValidationError{Field: "dates", Reason: err.Error()}
	}

	hotel, err := o.catalog.Get(original.Hotel.ID)
	if err != nil {
		return nil, err
	}

	// An unchanged room keeps its booked rate; only a room switch re-prices
	// from the current catalog.
	room := original.Room
	if changes.RoomID != "" && changes.RoomID != original.Room.RoomID {
		replacement, ok := models.FindRoom(hotel.Rooms, changes.RoomID)
		if !ok {
			return nil, &ValidationError{Field: "room_id", Reason: "unknown room for hotel"}
		}
		room = replacement
	}

	quote := o.pricing.Quote(hotel, room, checkIn, checkOut)
	if original.Pricing.Converted != nil {
		if converted, cerr := o.pricing.Convert(quote.Total, quote.Currency, original.Pricing.Converted.Currency); cerr == nil {
			quote.Converted = &converted
		}
	}

	diff := roundCents(quote.Total - original.Pricing.Total)
	paid := original.PaymentIntentID != ""

	var diffIntent string
	if paid && diff > 0 {
		if changes.PaymentMethodID == "" {
			return nil, &ValidationError{Field: "payment_method_id", Reason: "required to charge the price increase"}
		}
		diffIntent, err = o.chargePayment(ctx, diff, quote.Currency, changes.PaymentMethodID, map[string]string{
			"kind":       "modification_difference",
			"booking_id": bookingID,
		})
		if err != nil {
			return nil, err
		}
	}

	adapter := o.registry.Resolve(hotel)
	reservationChanges := models.ReservationChanges{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		RoomID:   room.RoomID,
		Room:     room,
		Pricing:  *quote,
	}
	updated, err := callProvider(ctx, o, adapter, "modify_reservation", func(ctx context.Context) (*models.BookingConfirmation, error) {
		return adapter.ModifyReservation(ctx, bookingID, reservationChanges)
	})
	if err != nil {
		if diffIntent != "" {
			o.refundBestEffort(ctx, diffIntent, diff, "modification failed after charge")
		}
		return nil, err
	}

	if paid && diff < 0 {
		if _, rerr := o.refund(ctx, original.PaymentIntentID, -diff, "modification price decrease"); rerr != nil {
			o.revertModification(ctx, adapter, original)
			return nil, rerr
		}
	}

	updated.Status = models.BookingStatusConfirmed
	updated.PaymentIntentID = original.PaymentIntentID
	updated.UpdatedAt = o.now()
	o.store.Put(updated)

	o.cache.InvalidateHotel(hotel.ID)
	o.notifyModification(ctx, updated)
	o.logger.Info("booking modified",
		"booking_id", updated.BookingID,
		"hotel_id", hotel.ID,
		"price_difference", diff,
	)
	return updated, nil
}

// revertModification puts the provider-side reservation back to its
// pre-modification shape after a refund failure. Best effort: the local
// record was never updated, so the caller still sees the original booking.
func (o *Orchestrator) revertModification(ctx context.Context, adapter ProviderAdapter, original *models.BookingConfirmation) {
	revert := models.ReservationChanges{
		CheckIn:  original.CheckIn,
		CheckOut: original.CheckOut,
		RoomID:   original.Room.RoomID,
		Room:     original.Room,
		Pricing:  original.Pricing,
	}
	if _, err := callProvider(ctx, o, adapter, "modify_reservation", func(ctx context.Context) (*models.BookingConfirmation, error) {
		return adapter.ModifyReservation(ctx, original.BookingID, revert)
	}); err != nil {
		o.logger.Error("failed to revert modification after refund failure",
			"booking_id", original.BookingID,
			"error", err,
		)
	}
}

// CancelBooking cancels through the provider, then settles the refund from
// the cancellation policy snapshot taken at booking time. Refund and
// notification are best effort; the cancellation stands regardless.
func (o *Orchestrator) CancelBooking(ctx context.Context, identity, bookingID string) (*models.CancellationConfirmation, error) {
	o.metrics.IncRequests(string(ClassCancellation))
	if err := o.enforce(ClassCancellation, identity); err != nil {
		return nil, err
	}

	record, err := o.store.Get(bookingID)
	if err != nil {
		return nil, err
	}
	if record.Status == models.BookingStatusCancelled {
		return nil, &ValidationError{Field: "booking_id", Reason: "booking has already been cancelled"}
	}

	// A delisted hotel must not block cancellation; resolution falls back to
	// the snapshot and, ultimately, the registry's fallback adapter.
	hotel, err := o.catalog.Get(record.Hotel.ID)
	if err != nil {
		hotel = models.Hotel{ID: record.Hotel.ID, Name: record.Hotel.Name, City: record.Hotel.City}
	}
	adapter := o.registry.Resolve(hotel)

	cancellation, err := callProvider(ctx, o, adapter, "cancel_reservation", func(ctx context.Context) (*models.CancellationConfirmation, error) {
		return adapter.CancelReservation(ctx, bookingID)
	})
	if err != nil {
		return nil, err
	}

	now := o.now()
	days := DaysUntilCheckIn(now, record.CheckIn)
	refundAmount := RefundForCancellation(record.Hotel.CancellationPolicy, record.Pricing.Total, days)

	refundStatus := models.RefundStatusSucceeded
	switch {
	case refundAmount <= 0:
		refundAmount = 0
	case record.PaymentIntentID == "":
		// Owed but nothing was charged through us; settled out-of-band.
		refundStatus = models.RefundStatusPending
		o.logger.Info("refund owed without payment reference",
			"booking_id", bookingID,
			"amount", refundAmount,
		)
	default:
		refundStatus = o.refundBestEffort(ctx, record.PaymentIntentID, refundAmount, "booking cancelled")
	}

	if cancellation.BookingID == "" {
		cancellation.BookingID = record.BookingID
	}
	if cancellation.Reference == "" {
		cancellation.Reference = record.Reference
	}
	cancellation.CancelledAt = now
	cancellation.RefundAmount = refundAmount
	cancellation.RefundCurrency = record.Pricing.Currency
	cancellation.RefundStatus = refundStatus

	record.Status = models.BookingStatusCancelled
	record.UpdatedAt = now
	o.store.Put(record)

	o.cache.InvalidateHotel(record.Hotel.ID)
	o.notifyCancellation(ctx, record, refundAmount)
	o.logger.Info("booking cancelled",
		"booking_id", record.BookingID,
		"days_until_check_in", days,
		"refund_amount", refundAmount,
		"refund_status", refundStatus,
	)
	return cancellation, nil
}

// GetBooking returns the stored confirmation for a booking id.
func (o *Orchestrator) GetBooking(bookingID string) (*models.BookingConfirmation, error) {
	return o.store.Get(bookingID)
}

// Hotels lists the catalog.
func (o *Orchestrator) Hotels() []models.Hotel {
	return o.catalog.List()
}

// HotelDetails serves the provider's live view of a hotel, falling back to
// the catalog copy when the provider cannot answer.
func (o *Orchestrator) HotelDetails(ctx context.Context, hotelID string) (models.Hotel, error) {
	hotel, err := o.catalog.Get(hotelID)
	if err != nil {
		return models.Hotel{}, err
	}
	adapter := o.registry.Resolve(hotel)
	dctx, cancel := context.WithTimeout(ctx, o.providerTimeout)
	defer cancel()
	live, err := adapter.GetHotelDetails(dctx, hotelID)
	if err != nil {
		o.metrics.IncProviderFailure(adapter.Name())
		o.logger.Warn("provider hotel details unavailable, serving catalog copy",
			"hotel_id", hotelID,
			"provider", adapter.Name(),
			"error", err,
		)
		return hotel, nil
	}
	return *live, nil
}

func (o *Orchestrator) enforce(class OperationClass, identity string) error {
	limiter, ok := o.limiters[class]
	if !ok {
		return nil
	}
	if err := limiter.Enforce(identity); err != nil {
		o.metrics.IncRateLimitDrops(string(class))
		o.logger.Warn("rate limit exceeded", "class", class, "identity", identity)
		return err
	}
	return nil
}

func (o *Orchestrator) validateBookingRequest(req *models.BookingRequest) error {
	var err error
	if req.Guest.FirstName, err = validator.ValidateName(req.Guest.FirstName); err != nil {
		return &ValidationError{Field: "guest.first_name", Reason: err.Error()}
	}
	if req.Guest.LastName, err = validator.ValidateName(req.Guest.LastName); err != nil {
		return &ValidationError{Field: "guest.last_name", Reason: err.Error()}
	}
	if req.Guest.Email, err = validator.ValidateEmail(req.Guest.Email); err != nil {
		return &ValidationError{Field: "guest.email", Reason: err.Error()}
	}
	if req.Guest.Phone, err = validator.ValidatePhone(req.Guest.Phone); err != nil {
		return &ValidationError{Field: "guest.phone", Reason: err.Error()}
	}
	if req.HotelID == "" {
		return &ValidationError{Field: "hotel_id", Reason: "required"}
	}
	if req.RoomID == "" {
		return &ValidationError{Field: "room_id", Reason: "required"}
	}
	if req.Guests < 1 {
		return &ValidationError{Field: "guests", Reason: "must be at least 1"}
	}
	if err := validator.ValidateStayDates(req.CheckIn, req.CheckOut, o.now()); err != nil {
		return &ValidationError{Field: "dates", Reason: err.Error()}
	}
	return nil
}

// chargePayment runs the intent/confirm pair and returns the intent id. Any
// failure, including a confirmation that resolves to a non-succeeded status,
// comes back as a PaymentError.
func (o *Orchestrator) chargePayment(ctx context.Context, amount float64, currency, paymentMethodID string, metadata map[string]string) (string, error) {
	intent, err := o.payments.CreatePaymentIntent(ctx, models.MinorUnits(amount), currency, metadata)
	if err != nil {
		o.metrics.IncPaymentFailures("intent")
		return "", &PaymentError{Stage: "intent", Err: err}
	}
	confirmation, err := o.payments.ConfirmPayment(ctx, intent.ID, paymentMethodID)
	if err != nil {
		o.metrics.IncPaymentFailures("confirm")
		return "", &PaymentError{Stage: "confirm", Err: err}
	}
	if confirmation.Status != models.PaymentIntentSucceeded {
		o.metrics.IncPaymentFailures("confirm")
		return "", &PaymentError{Stage: "confirm", Err: fmt.Errorf("payment intent %s resolved %s", intent.ID, confirmation.Status)}
	}
	return intent.ID, nil
}

func (o *Orchestrator) refund(ctx context.Context, intentID string, amount float64, reason string) (models.RefundStatus, error) {
	confirmation, err := o.payments.ProcessRefund(ctx, intentID, models.MinorUnits(amount), reason)
	if err != nil {
		o.metrics.IncPaymentFailures("refund")
		return models.RefundStatusFailed, &PaymentError{Stage: "refund", Err: err}
	}
	if confirmation.Status == models.RefundStatusFailed {
		o.metrics.IncPaymentFailures("refund")
		return models.RefundStatusFailed, &PaymentError{Stage: "refund", Err: fmt.Errorf("refund %s resolved failed", confirmation.ID)}
	}
	return confirmation.Status, nil
}

// refundBestEffort logs a failed refund instead of propagating it.
func (o *Orchestrator) refundBestEffort(ctx context.Context, intentID string, amount float64, reason string) models.RefundStatus {
	status, err := o.refund(ctx, intentID, amount, reason)
	if err != nil {
		o.logger.Error("refund failed",
			"intent_id", intentID,
			"amount", amount,
			"reason", reason,
			"error", err,
		)
	}
	return status
}

func (o *Orchestrator) notifyModification(ctx context.Context, b *models.BookingConfirmation) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.SendModificationConfirmation(ctx, b, b.Guest.Email); err != nil {
		o.logger.Warn("modification notification failed", "booking_id", b.BookingID, "error", err)
	}
}

func (o *Orchestrator) notifyCancellation(ctx context.Context, b *models.BookingConfirmation, refundAmount float64) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.SendCancellationConfirmation(ctx, b, refundAmount, b.Guest.Email); err != nil {
		o.logger.Warn("cancellation notification failed", "booking_id", b.BookingID, "error", err)
	}
}

// callProvider runs one adapter call under the retry policy with a
// per-attempt timeout. Attempt errors that are not already classified are
// wrapped as ProviderError before the retry executor sees them, so the error
// that survives the final attempt carries the provider and operation.
func callProvider[T any](ctx context.Context, o *Orchestrator, adapter ProviderAdapter, op string, fn func(context.Context) (T, error)) (T, error) {
	name := adapter.Name()
	attempt := func(ctx context.Context) (T, error) {
		actx, cancel := context.WithTimeout(ctx, o.providerTimeout)
		defer cancel()
		start := time.Now()
		result, err := fn(actx)
		o.metrics.ObserveProviderLatency(name, time.Since(start).Seconds())
		if err != nil {
			o.metrics.IncProviderFailure(name)
			var pe *ProviderError
			if !errors.As(err, &pe) {
				err = &ProviderError{Provider: name, Op: op, Err: err}
			}
		}
		return result, err
	}
	return RetryWithBackoff(ctx, attempt, RetryOptions{
		MaxRetries:   o.maxRetries,
		InitialDelay: o.initialDelay,
		OnRetry: func(err error, attemptNum int, delay time.Duration) {
			o.metrics.IncProviderRetries(op)
			o.logger.Warn("provider call failed, retrying",
				"provider", name,
				"op", op,
				"attempt", attemptNum,
				"delay", delay,
				"error", err,
			)
		},
	})
}
