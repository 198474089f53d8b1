package booking

import (
	"math"
	"strings"
	"time"

	"github.com/example/booking-orchestrator/internal/models"
)

// Tax and fee schedule applied to every quote. Tax rates are fractions of the
// stay subtotal; fees are flat amounts in the quote currency.
const (
	occupancyTaxRate = 0.10
	cityTaxRate      = 0.02
	serviceFee       = 20.00
	cleaningFee      = 35.00
)

// PricingEngine turns a room and a stay into an itemized quote and converts
// totals between currencies using a fixed rate table keyed "FROM:TO".
type PricingEngine struct {
	rates map[string]float64
}

func NewPricingEngine(rates map[string]float64) *PricingEngine {
	if rates == nil {
		rates = DefaultConversionRates()
	}
	normalized := make(map[string]float64, len(rates))
	for pair, rate := range rates {
		normalized[strings.ToUpper(pair)] = rate
	}
	return &PricingEngine{rates: normalized}
}

// DefaultConversionRates covers the currency pairs the sample inventory uses.
func DefaultConversionRates() map[string]float64 {
	return map[string]float64{
		"USD:EUR": 0.92,
		"EUR:USD": 1.09,
		"USD:GBP": 0.79,
		"GBP:USD": 1.27,
		"EUR:GBP": 0.86,
		"GBP:EUR": 1.16,
	}
}

// Quote prices a stay in the room's own currency. Every line is rounded to
// cents before summing, so Total always equals subtotal plus the lines.
func (e *PricingEngine) Quote(hotel models.Hotel, room models.RoomOption, checkIn, checkOut time.Time) *models.PricingDetails {
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	subtotal := roundCents(room.NightlyRate * float64(nights))
	taxes := []models.PriceLine{
		{Name: "occupancy_tax", Amount: roundCents(subtotal * occupancyTaxRate)},
		{Name: "city_tax", Amount: roundCents(subtotal * cityTaxRate)},
	}
	fees := []models.PriceLine{
		{Name: "service_fee", Amount: serviceFee},
		{Name: "cleaning_fee", Amount: cleaningFee},
	}
	total := subtotal
	for _, line := range taxes {
		total += line.Amount
	}
	for _, line := range fees {
		total += line.Amount
	}
	currency := room.Currency
	if currency == "" {
		currency = hotel.Currency
	}
	return &models.PricingDetails{
		HotelID:  hotel.ID,
		RoomID:   room.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		BaseRate: room.NightlyRate,
		Nights:   nights,
		Subtotal: subtotal,
		Taxes:    taxes,
		Fees:     fees,
		Total:    roundCents(total),
		Currency: currency,
	}
}

// Convert translates an amount between currencies. Same-currency requests
// pass through at rate 1; an unlisted pair is a validation failure.
func (e *PricingEngine) Convert(amount float64, from, to string) (models.ConvertedTotal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return models.ConvertedTotal{Amount: roundCents(amount), Currency: to, Rate: 1}, nil
	}
	rate, ok := e.rates[from+":"+to]
	if !ok {
		return models.ConvertedTotal{}, &ValidationError{Field: "currency", Reason: "no conversion rate from " + from + " to " + to}
	}
	return models.ConvertedTotal{Amount: roundCents(amount * rate), Currency: to, Rate: rate}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
