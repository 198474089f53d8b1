package providers_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/booking-orchestrator/internal/booking"
	"github.com/example/booking-orchestrator/internal/models"
	"github.com/example/booking-orchestrator/internal/providers"
)

var (
	stayStart = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	stayEnd   = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
)

func simHotel() models.Hotel {
	return models.Hotel{
		ID:       "ht_1",
		Name:     "Test House",
		City:     "Porto",
		Currency: "EUR",
		Rooms: []models.RoomOption{
			{RoomID: "rm_a", Name: "Twin", NightlyRate: 100, Currency: "EUR", MaxGuests: 2, RoomsLeft: 2},
			{RoomID: "rm_b", Name: "Suite", NightlyRate: 180, Currency: "EUR", MaxGuests: 4, RoomsLeft: 1},
		},
	}
}

// helper to create a deterministic Sim: no latency, no failures
func newTestSim() *providers.Sim {
	return providers.NewSim("sim1", 0, 0, 0, simHotel())
}

func reservationFor(roomID string, checkIn, checkOut time.Time) models.ReservationRequest {
	hotel := simHotel()
	room, _ := models.FindRoom(hotel.Rooms, roomID)
	return models.ReservationRequest{
		HotelID:  hotel.ID,
		Hotel:    hotel.Summary(),
		RoomID:   roomID,
		Room:     room,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   2,
		Guest:    models.GuestInfo{FirstName: "Ana", LastName: "Silva", Email: "ana@example.com"},
		Pricing:  models.PricingDetails{HotelID: hotel.ID, RoomID: roomID, Total: 615, Currency: "EUR"},
	}
}

func TestSim_CheckAvailability_Positive(t *testing.T) {
	s := newTestSim()

	resp, err := s.CheckAvailability(context.Background(), "ht_1", stayStart, stayEnd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resp.Available || len(resp.Rooms) != 2 {
		t.Fatalf("expected both rooms available, got %+v", resp)
	}
	for _, room := range resp.Rooms {
		if room.RoomsLeft <= 0 {
			t.Errorf("expected rooms left > 0, got %d for %s", room.RoomsLeft, room.RoomID)
		}
	}
}

func TestSim_CheckAvailability_UnknownHotel(t *testing.T) {
	s := newTestSim()
	_, err := s.CheckAvailability(context.Background(), "ht_elsewhere", stayStart, stayEnd)
	var provErr *booking.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Provider != "sim1" {
		t.Fatalf("expected provider sim1, got %s", provErr.Provider)
	}
}

func TestSim_ReservationsReduceAvailability(t *testing.T) {
	s := newTestSim()
	ctx := context.Background()

	if _, err := s.CreateReservation(ctx, reservationFor("rm_b", stayStart, stayEnd)); err != nil {
		t.Fatalf("create: %v", err)
	}

	// the suite has one unit; an overlapping stay no longer lists it
	resp, err := s.CheckAvailability(ctx, "ht_1", stayStart.AddDate(0, 0, 2), stayEnd.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(resp.Rooms) != 1 || resp.Rooms[0].RoomID != "rm_a" {
		t.Fatalf("expected only rm_a left, got %+v", resp.Rooms)
	}

	// a disjoint stay sees the full inventory again
	later, err := s.CheckAvailability(ctx, "ht_1", stayEnd, stayEnd.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(later.Rooms) != 2 {
		t.Fatalf("expected both rooms for a disjoint stay, got %+v", later.Rooms)
	}
}

func TestSim_CreateReservation_SoldOut(t *testing.T) {
	s := newTestSim()
	ctx := context.Background()

	if _, err := s.CreateReservation(ctx, reservationFor("rm_b", stayStart, stayEnd)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.CreateReservation(ctx, reservationFor("rm_b", stayStart, stayEnd))
	var provErr *booking.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected sold-out ProviderError, got %v", err)
	}
}

func TestSim_ReservationLifecycle(t *testing.T) {
	s := newTestSim()
	ctx := context.Background()

	created, err := s.CreateReservation(ctx, reservationFor("rm_a", stayStart, stayEnd))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.BookingID == "" || created.Reference == "" {
		t.Fatalf("expected identifiers minted, got %+v", created)
	}
	if s.Reservations() != 1 {
		t.Fatalf("expected 1 reservation, got %d", s.Reservations())
	}

	newEnd := stayEnd.AddDate(0, 0, 2)
	room, _ := models.FindRoom(simHotel().Rooms, "rm_a")
	modified, err := s.ModifyReservation(ctx, created.BookingID, models.ReservationChanges{
		CheckIn:  stayStart,
		CheckOut: newEnd,
		RoomID:   "rm_a",
		Room:     room,
		Pricing:  models.PricingDetails{Total: 839, Currency: "EUR"},
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if !modified.CheckOut.Equal(newEnd) || modified.Pricing.Total != 839 {
		t.Fatalf("modification not applied: %+v", modified)
	}

	cancelled, err := s.CancelReservation(ctx, created.BookingID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.BookingID != created.BookingID || cancelled.Reference != created.Reference {
		t.Fatalf("cancellation must identify the reservation, got %+v", cancelled)
	}
	if s.Reservations() != 0 {
		t.Fatalf("expected empty book, got %d", s.Reservations())
	}

	if _, err := s.CancelReservation(ctx, created.BookingID); err == nil {
		t.Fatal("expected error cancelling twice")
	}
}

func TestSim_ModifyReservation_CapacityExcludesSelf(t *testing.T) {
	s := newTestSim()
	ctx := context.Background()

	created, err := s.CreateReservation(ctx, reservationFor("rm_b", stayStart, stayEnd))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// moving the only rm_b reservation within the same window must not
	// collide with itself
	room, _ := models.FindRoom(simHotel().Rooms, "rm_b")
	if _, err := s.ModifyReservation(ctx, created.BookingID, models.ReservationChanges{
		CheckIn:  stayStart.AddDate(0, 0, 1),
		CheckOut: stayEnd.AddDate(0, 0, 1),
		RoomID:   "rm_b",
		Room:     room,
		Pricing:  models.PricingDetails{Total: 900, Currency: "EUR"},
	}); err != nil {
		t.Fatalf("self-overlapping modify: %v", err)
	}

	// a second reservation then fills the room; squeezing another stay in
	// fails
	other, err := s.CreateReservation(ctx, reservationFor("rm_a", stayStart, stayEnd))
	if err != nil {
		t.Fatalf("create rm_a: %v", err)
	}
	if _, err := s.ModifyReservation(ctx, other.BookingID, models.ReservationChanges{
		CheckIn:  stayStart,
		CheckOut: stayEnd,
		RoomID:   "rm_b",
		Room:     room,
		Pricing:  models.PricingDetails{Total: 900, Currency: "EUR"},
	}); err == nil {
		t.Fatal("expected the full room to reject a second stay")
	}
}

func TestSim_Failure(t *testing.T) {
	s := providers.NewSim("sim-fail", 0, 1.0, 0, simHotel()) // failRate 100%

	_, err := s.CheckAvailability(context.Background(), "ht_1", stayStart, stayEnd)
	var provErr *booking.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Provider != "sim-fail" || provErr.Op != "check_availability" {
		t.Fatalf("unexpected classification: %+v", provErr)
	}
}

func TestSim_ContextCancelled(t *testing.T) {
	s := providers.NewSim("sim-slow", 0.5, 0, 0, simHotel())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := s.CheckAvailability(ctx, "ht_1", stayStart, stayEnd)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled error, got %v", err)
	}
}

func TestSim_SupportsHotel(t *testing.T) {
	s := newTestSim()
	if !s.SupportsHotel(models.Hotel{ID: "ht_1"}) {
		t.Fatal("expected ht_1 supported")
	}
	if s.SupportsHotel(models.Hotel{ID: "ht_elsewhere"}) {
		t.Fatal("expected ht_elsewhere unsupported")
	}
}

func TestThrottled_DelegatesToInner(t *testing.T) {
	wrapped := providers.Throttle(newTestSim(), rate.Inf, 1)

	if wrapped.Name() != "sim1" {
		t.Fatalf("expected the inner name, got %s", wrapped.Name())
	}
	if !wrapped.SupportsHotel(models.Hotel{ID: "ht_1"}) {
		t.Fatal("expected support to pass through")
	}
	resp, err := wrapped.CheckAvailability(context.Background(), "ht_1", stayStart, stayEnd)
	if err != nil {
		t.Fatalf("expected pass-through call, got %v", err)
	}
	if len(resp.Rooms) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestThrottled_RespectsContext(t *testing.T) {
	// zero sustained rate and an empty bucket: Wait can never be satisfied
	wrapped := providers.Throttle(newTestSim(), 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := wrapped.CheckAvailability(ctx, "ht_1", stayStart, stayEnd)
	if err == nil {
		t.Fatal("expected the limiter to fail the blocked call")
	}
}

func TestSampleLatencyFromRng(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := providers.SampleLatencyFromRng(rng, 0.1)
	if d <= 0 {
		t.Errorf("expected positive latency, got %v", d)
	}
	if providers.SampleLatencyFromRng(rng, 0) != 0 {
		t.Error("expected zero latency for a zero average")
	}
}

func TestShouldFailFromRng(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	count := 0
	for i := 0; i < 1000; i++ {
		if providers.ShouldFailFromRng(rng, 0.5) {
			count++
		}
	}
	if count == 0 || count == 1000 {
		t.Errorf("expected some failures with 50%% rate, got %d/1000", count)
	}
}
