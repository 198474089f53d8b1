package models

import "time"

// AvailabilityResponse is what a provider reports for a stay window. CachedAt
// and ExpiresAt duplicate the cache entry's metadata so clients can see how
// fresh a quote is; on a cache hit they are returned exactly as stored.
type AvailabilityResponse struct {
	HotelID   string       `json:"hotel_id"`
	CheckIn   time.Time    `json:"check_in"`
	CheckOut  time.Time    `json:"check_out"`
	Available bool         `json:"available"`
	Rooms     []RoomOption `json:"rooms"`
	CachedAt  time.Time    `json:"cached_at,omitempty"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
}

func (a *AvailabilityResponse) Clone() *AvailabilityResponse {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Rooms = append([]RoomOption{}, a.Rooms...)
	return &clone
}
