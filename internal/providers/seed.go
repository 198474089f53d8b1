package providers

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/example/booking-orchestrator/internal/booking"
	"github.com/example/booking-orchestrator/internal/models"
)

var standardPolicy = []models.CancellationPolicyRule{
	{DaysBeforeCheckIn: 7, RefundPercent: 100, Fee: 0},
	{DaysBeforeCheckIn: 2, RefundPercent: 50, Fee: 10},
	{DaysBeforeCheckIn: 0, RefundPercent: 0, Fee: 0},
}

var flexiblePolicy = []models.CancellationPolicyRule{
	{DaysBeforeCheckIn: 3, RefundPercent: 100, Fee: 0},
	{DaysBeforeCheckIn: 0, RefundPercent: 80, Fee: 15},
}

// SampleHotels is the demo inventory. ht_cedar_court carries no provider
// binding and is picked up by capability scan; ht_old_mill matches no
// registered backend at all and lands on the fallback.
func SampleHotels() []models.Hotel {
	return []models.Hotel{
		{
			ID: "ht_marina_bay", Name: "Marina Bay Suites", City: "Lisbon", Currency: "EUR", ProviderID: "sunrise",
			Rooms: []models.RoomOption{
				{RoomID: "rm_std", Name: "Standard Double", NightlyRate: 95, Currency: "EUR", MaxGuests: 2, RoomsLeft: 6},
				{RoomID: "rm_dlx", Name: "Deluxe Sea View", NightlyRate: 160, Currency: "EUR", MaxGuests: 3, RoomsLeft: 3},
			},
			CancellationPolicy: standardPolicy,
		},
		{
			ID: "ht_atlas_view", Name: "Atlas View", City: "Marrakech", Currency: "EUR", ProviderID: "sunrise",
			Rooms: []models.RoomOption{
				{RoomID: "rm_std", Name: "Courtyard Room", NightlyRate: 78, Currency: "EUR", MaxGuests: 2, RoomsLeft: 8},
				{RoomID: "rm_ste", Name: "Terrace Suite", NightlyRate: 140, Currency: "EUR", MaxGuests: 4, RoomsLeft: 2},
			},
			CancellationPolicy: flexiblePolicy,
		},
		{
			ID: "ht_river_loft", Name: "River Loft", City: "London", Currency: "GBP", ProviderID: "horizon",
			Rooms: []models.RoomOption{
				{RoomID: "rm_std", Name: "City Room", NightlyRate: 120, Currency: "GBP", MaxGuests: 2, RoomsLeft: 5},
				{RoomID: "rm_dlx", Name: "Thames View", NightlyRate: 210, Currency: "GBP", MaxGuests: 2, RoomsLeft: 2},
			},
			CancellationPolicy: standardPolicy,
		},
		{
			ID: "ht_cedar_court", Name: "Cedar Court", City: "New York", Currency: "USD",
			Rooms: []models.RoomOption{
				{RoomID: "rm_std", Name: "Queen Room", NightlyRate: 185, Currency: "USD", MaxGuests: 2, RoomsLeft: 10},
				{RoomID: "rm_ste", Name: "Corner Suite", NightlyRate: 320, Currency: "USD", MaxGuests: 4, RoomsLeft: 4},
			},
			CancellationPolicy: standardPolicy,
		},
		{
			ID: "ht_old_mill", Name: "The Old Mill", City: "York", Currency: "GBP",
			Rooms: []models.RoomOption{
				{RoomID: "rm_std", Name: "Mill Room", NightlyRate: 88, Currency: "GBP", MaxGuests: 2, RoomsLeft: 4},
			},
			CancellationPolicy: flexiblePolicy,
		},
	}
}

// SeedRegistry wires the demo backends: two registered sims plus the
// concierge desk as the always-available fallback, each behind an outbound
// throttle.
func SeedRegistry(hotels []models.Hotel, outboundRPS rate.Limit, burst int, logger *slog.Logger) *booking.Registry {
	sunrise := NewSim("sunrise", 0.15, 0.05, 0, hotelsByID(hotels, "ht_marina_bay", "ht_atlas_view")...)
	horizon := NewSim("horizon", 0.2, 0.08, 1, hotelsByID(hotels, "ht_river_loft", "ht_cedar_court")...)
	concierge := NewSim("concierge", 0.1, 0.02, 2, hotelsByID(hotels, "ht_old_mill")...)

	registry := booking.NewRegistry(Throttle(concierge, outboundRPS, burst), logger)
	registry.Register("sunrise", Throttle(sunrise, outboundRPS, burst))
	registry.Register("horizon", Throttle(horizon, outboundRPS, burst))
	return registry
}

func hotelsByID(hotels []models.Hotel, ids ...string) []models.Hotel {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	picked := make([]models.Hotel, 0, len(ids))
	for _, h := range hotels {
		if want[h.ID] {
			picked = append(picked, h)
		}
	}
	return picked
}
