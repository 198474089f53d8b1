package providers

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/booking-orchestrator/internal/booking"
	"github.com/example/booking-orchestrator/internal/models"
)

// Sim is an in-process inventory backend: it owns a set of hotels, keeps its
// own reservation book and simulates the latency and transient failures of a
// real integration. One Sim stands in for one external provider.
type Sim struct {
	name       string
	avgLatency float64
	failRate   float64

	mu           sync.Mutex
	rng          *rand.Rand
	hotels       map[string]models.Hotel
	reservations map[string]*models.BookingConfirmation
}

func NewSim(name string, avgLatency, failRate float64, seedOffset int64, hotels ...models.Hotel) *Sim {
	seed := time.Now().UnixNano() + seedOffset
	s := &Sim{
		name:         name,
		avgLatency:   avgLatency,
		failRate:     failRate,
		rng:          rand.New(rand.NewSource(seed)),
		hotels:       make(map[string]models.Hotel, len(hotels)),
		reservations: make(map[string]*models.BookingConfirmation),
	}
	for _, h := range hotels {
		s.hotels[h.ID] = h.Clone()
	}
	return s
}

func (s *Sim) Name() string { return s.name }

func (s *Sim) SupportsHotel(hotel models.Hotel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.hotels[hotel.ID]
	return ok
}

func (s *Sim) CheckAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time) (*models.AvailabilityResponse, error) {
	if err := s.simulate(ctx, "check_availability"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	hotel, ok := s.hotels[hotelID]
	if !ok {
		return nil, s.errorf("check_availability", "hotel not on this backend")
	}
	rooms := make([]models.RoomOption, 0, len(hotel.Rooms))
	for _, room := range hotel.Rooms {
		left := room.RoomsLeft - s.overlappingLocked(hotelID, room.RoomID, checkIn, checkOut, "")
		if left <= 0 {
			continue
		}
		room.RoomsLeft = left
		rooms = append(rooms, room)
	}
	return &models.AvailabilityResponse{
		HotelID:   hotelID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Available: len(rooms) > 0,
		Rooms:     rooms,
	}, nil
}

func (s *Sim) GetHotelDetails(ctx context.Context, hotelID string) (*models.Hotel, error) {
	if err := s.simulate(ctx, "get_hotel_details"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	hotel, ok := s.hotels[hotelID]
	if !ok {
		return nil, s.errorf("get_hotel_details", "hotel not on this backend")
	}
	clone := hotel.Clone()
	return &clone, nil
}

func (s *Sim) CreateReservation(ctx context.Context, req models.ReservationRequest) (*models.BookingConfirmation, error) {
	if err := s.simulate(ctx, "create_reservation"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	hotel, ok := s.hotels[req.HotelID]
	if !ok {
		return nil, s.errorf("create_reservation", "hotel not on this backend")
	}
	room, ok := models.FindRoom(hotel.Rooms, req.RoomID)
	if !ok {
		return nil, s.errorf("create_reservation", "unknown room")
	}
	if s.overlappingLocked(req.HotelID, req.RoomID, req.CheckIn, req.CheckOut, "") >= room.RoomsLeft {
		return nil, s.errorf("create_reservation", "room sold out for the requested dates")
	}

	confirmation := &models.BookingConfirmation{
		BookingID: uuid.NewString(),
		Reference: newReference(),
		Hotel:     req.Hotel,
		Room:      req.Room,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guest:     req.Guest,
		Pricing:   req.Pricing,
		Status:    models.BookingStatusPending,
	}
	s.reservations[confirmation.BookingID] = confirmation.Clone()
	return confirmation, nil
}

func (s *Sim) ModifyReservation(ctx context.Context, bookingID string, changes models.ReservationChanges) (*models.BookingConfirmation, error) {
	if err := s.simulate(ctx, "modify_reservation"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reservations[bookingID]
	if !ok {
		return nil, s.errorf("modify_reservation", "unknown reservation")
	}
	// Capacity only applies when the target room is still on the books; a
	// snapshot room that has since been delisted keeps its reservation.
	if hotel, known := s.hotels[current.Hotel.ID]; known {
		if room, listed := models.FindRoom(hotel.Rooms, changes.RoomID); listed {
			if s.overlappingLocked(current.Hotel.ID, changes.RoomID, changes.CheckIn, changes.CheckOut, bookingID) >= room.RoomsLeft {
				return nil, s.errorf("modify_reservation", "room sold out for the requested dates")
			}
		}
	}

	current.CheckIn = changes.CheckIn
	current.CheckOut = changes.CheckOut
	current.Room = changes.Room
	current.Pricing = changes.Pricing
	return current.Clone(), nil
}

func (s *Sim) CancelReservation(ctx context.Context, bookingID string) (*models.CancellationConfirmation, error) {
	if err := s.simulate(ctx, "cancel_reservation"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reservations[bookingID]
	if !ok {
		return nil, s.errorf("cancel_reservation", "unknown reservation")
	}
	delete(s.reservations, bookingID)
	return &models.CancellationConfirmation{
		BookingID: bookingID,
		Reference: current.Reference,
	}, nil
}

// Reservations reports the size of the sim's book.
func (s *Sim) Reservations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

// overlappingLocked counts active reservations for a room whose stay
// intersects [checkIn, checkOut). Callers hold s.mu.
func (s *Sim) overlappingLocked(hotelID, roomID string, checkIn, checkOut time.Time, skipBookingID string) int {
	n := 0
	for id, r := range s.reservations {
		if id == skipBookingID {
			continue
		}
		if r.Hotel.ID != hotelID || r.Room.RoomID != roomID {
			continue
		}
		if r.CheckIn.Before(checkOut) && checkIn.Before(r.CheckOut) {
			n++
		}
	}
	return n
}

// simulate sleeps for a sampled backend latency and rolls the failure dice.
// The sleep is context cancelable.
func (s *Sim) simulate(ctx context.Context, op string) error {
	s.mu.Lock()
	delay := SampleLatencyFromRng(s.rng, s.avgLatency)
	fail := ShouldFailFromRng(s.rng, s.failRate)
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return s.errorf(op, "transient backend failure (simulated)")
	}
	return nil
}

func (s *Sim) errorf(op, msg string) error {
	return &booking.ProviderError{Provider: s.name, Op: op, Err: errors.New(msg)}
}

func newReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "HB-" + strings.ToUpper(raw[:8])
}

// SampleLatencyFromRng draws one backend latency from an exponential
// distribution with a 20ms floor. Exported so tests can pin the rng.
func SampleLatencyFromRng(rng *rand.Rand, avg float64) time.Duration {
	if avg <= 0 {
		return 0
	}
	ms := float64(20) + rng.ExpFloat64()*avg*200.0
	return time.Duration(ms) * time.Millisecond
}

func ShouldFailFromRng(rng *rand.Rand, rate float64) bool {
	return rng.Float64() < rate
}
