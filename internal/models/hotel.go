package models

// Hotel is a bookable property as the catalog exposes it. ProviderID names
// the inventory backend the hotel is bound to; when empty the registry falls
// back to a capability scan.
type Hotel struct {
	ID                 string                   `json:"hotel_id"`
	Name               string                   `json:"name"`
	City               string                   `json:"city"`
	Currency           string                   `json:"currency"`
	ProviderID         string                   `json:"provider_id,omitempty"`
	Rooms              []RoomOption             `json:"rooms,omitempty"`
	CancellationPolicy []CancellationPolicyRule `json:"cancellation_policy,omitempty"`
}

type RoomOption struct {
	RoomID      string  `json:"room_id"`
	Name        string  `json:"name"`
	NightlyRate float64 `json:"nightly_rate"`
	Currency    string  `json:"currency"`
	MaxGuests   int     `json:"max_guests"`
	RoomsLeft   int     `json:"rooms_left"`
}

// CancellationPolicyRule grants RefundPercent of the booking total, minus a
// flat Fee, when the guest cancels at least DaysBeforeCheckIn days out.
type CancellationPolicyRule struct {
	DaysBeforeCheckIn int     `json:"days_before_check_in"`
	RefundPercent     float64 `json:"refund_percent"`
	Fee               float64 `json:"fee"`
}

// HotelSummary is the snapshot of a hotel embedded in a confirmation. The
// cancellation policy is captured at booking time so refunds stay computable
// from the record alone.
type HotelSummary struct {
	ID                 string                   `json:"hotel_id"`
	Name               string                   `json:"name"`
	City               string                   `json:"city"`
	CancellationPolicy []CancellationPolicyRule `json:"cancellation_policy,omitempty"`
}

func (h Hotel) Summary() HotelSummary {
	return HotelSummary{
		ID:                 h.ID,
		Name:               h.Name,
		City:               h.City,
		CancellationPolicy: append([]CancellationPolicyRule{}, h.CancellationPolicy...),
	}
}

func (h Hotel) Clone() Hotel {
	clone := h
	clone.Rooms = append([]RoomOption{}, h.Rooms...)
	clone.CancellationPolicy = append([]CancellationPolicyRule{}, h.CancellationPolicy...)
	return clone
}

// FindRoom returns the room option with the given id, if present.
func FindRoom(rooms []RoomOption, roomID string) (RoomOption, bool) {
	for _, r := range rooms {
		if r.RoomID == roomID {
			return r, true
		}
	}
	return RoomOption{}, false
}
