package models

import "time"

// PriceLine is one itemized tax or fee in the quote's source currency.
type PriceLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ConvertedTotal overlays the quote total in a requested display currency.
// It never alters the source-currency breakdown.
type ConvertedTotal struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

// PricingDetails is a full quote for one room over one stay window.
// Total equals Subtotal plus the sum of Taxes and Fees, all amounts rounded
// to cents in the source currency.
type PricingDetails struct {
	HotelID   string          `json:"hotel_id"`
	RoomID    string          `json:"room_id"`
	CheckIn   time.Time       `json:"check_in"`
	CheckOut  time.Time       `json:"check_out"`
	BaseRate  float64         `json:"base_rate"`
	Nights    int             `json:"nights"`
	Subtotal  float64         `json:"subtotal"`
	Taxes     []PriceLine     `json:"taxes"`
	Fees      []PriceLine     `json:"fees"`
	Total     float64         `json:"total"`
	Currency  string          `json:"currency"`
	Converted *ConvertedTotal `json:"converted,omitempty"`
	CachedAt  time.Time       `json:"cached_at,omitempty"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
}

func (p *PricingDetails) Clone() *PricingDetails {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Taxes = append([]PriceLine{}, p.Taxes...)
	clone.Fees = append([]PriceLine{}, p.Fees...)
	if p.Converted != nil {
		converted := *p.Converted
		clone.Converted = &converted
	}
	return &clone
}
