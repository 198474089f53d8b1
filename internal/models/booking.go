package models

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusFailed    RefundStatus = "failed"
)

type GuestInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// BookingRequest is the guest-facing payload for creating a booking.
// PaymentMethodID is optional; when empty the stay is paid at the property
// and no payment is sequenced around the reservation.
type BookingRequest struct {
	HotelID         string    `json:"hotel_id"`
	RoomID          string    `json:"room_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          int       `json:"guests"`
	Guest           GuestInfo `json:"guest"`
	Currency        string    `json:"currency,omitempty"`
	PaymentMethodID string    `json:"payment_method_id,omitempty"`
}

// BookingChanges carries the mutable parts of a modification. Nil date
// pointers and an empty room id mean "keep the current value".
type BookingChanges struct {
	CheckIn         *time.Time `json:"check_in,omitempty"`
	CheckOut        *time.Time `json:"check_out,omitempty"`
	RoomID          string     `json:"room_id,omitempty"`
	PaymentMethodID string     `json:"payment_method_id,omitempty"`
}

// BookingConfirmation is the at-rest record of a reservation. Hotel, Room and
// Pricing are snapshots taken when the booking (or its latest modification)
// was committed. A cancelled record is terminal.
type BookingConfirmation struct {
	BookingID       string         `json:"booking_id"`
	Reference       string         `json:"reference"`
	Hotel           HotelSummary   `json:"hotel"`
	Room            RoomOption     `json:"room"`
	CheckIn         time.Time      `json:"check_in"`
	CheckOut        time.Time      `json:"check_out"`
	Guest           GuestInfo      `json:"guest"`
	Pricing         PricingDetails `json:"pricing"`
	Status          BookingStatus  `json:"status"`
	PaymentIntentID string         `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (b *BookingConfirmation) Clone() *BookingConfirmation {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Hotel.CancellationPolicy = append([]CancellationPolicyRule{}, b.Hotel.CancellationPolicy...)
	if p := b.Pricing.Clone(); p != nil {
		clone.Pricing = *p
	}
	return &clone
}

type CancellationConfirmation struct {
	BookingID      string       `json:"booking_id"`
	Reference      string       `json:"reference"`
	CancelledAt    time.Time    `json:"cancelled_at"`
	RefundAmount   float64      `json:"refund_amount"`
	RefundCurrency string       `json:"refund_currency,omitempty"`
	RefundStatus   RefundStatus `json:"refund_status"`
}

// ReservationRequest is the adapter-facing form of a create call: the
// orchestrator has already validated the input, priced the stay and taken
// the hotel snapshot.
type ReservationRequest struct {
	HotelID  string
	Hotel    HotelSummary
	RoomID   string
	Room     RoomOption
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Guest    GuestInfo
	Pricing  PricingDetails
}

// ReservationChanges is the adapter-facing form of a modification; Pricing is
// the recomputed quote for the new stay.
type ReservationChanges struct {
	CheckIn  time.Time
	CheckOut time.Time
	RoomID   string
	Room     RoomOption
	Pricing  PricingDetails
}
