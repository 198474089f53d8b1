package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/booking-orchestrator/internal/booking"
)

type ErrorResponse struct {
	Error string            `json:"error"`
	Meta  map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	_ = enc.Encode(v) // safe to ignore, client probably disconnected
}

func WriteError(w http.ResponseWriter, status int, msg string, meta map[string]string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Meta: meta})
}

func BadRequest(w http.ResponseWriter, msg string, meta map[string]string) {
	WriteError(w, http.StatusBadRequest, msg, meta)
}

func NotFound(w http.ResponseWriter, msg string, meta map[string]string) {
	WriteError(w, http.StatusNotFound, msg, meta)
}

func InternalError(w http.ResponseWriter, msg string, meta map[string]string) {
	WriteError(w, http.StatusInternalServerError, msg, meta)
}

// WriteDomainError maps the failure taxonomy onto HTTP statuses. Rate-limit
// denials carry a Retry-After header so clients get a precise wait.
func WriteDomainError(w http.ResponseWriter, err error, meta map[string]string) {
	var validationErr *booking.ValidationError
	var rateErr *booking.RateLimitError
	var providerErr *booking.ProviderError
	var paymentErr *booking.PaymentError

	switch {
	case errors.As(err, &validationErr):
		BadRequest(w, validationErr.Error(), meta)
	case errors.Is(err, booking.ErrHotelNotFound), errors.Is(err, booking.ErrBookingNotFound):
		NotFound(w, err.Error(), meta)
	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfterSeconds()))
		WriteError(w, http.StatusTooManyRequests, rateErr.Error(), meta)
	case errors.As(err, &paymentErr):
		WriteError(w, http.StatusPaymentRequired, paymentErr.Error(), meta)
	case errors.As(err, &providerErr):
		WriteError(w, http.StatusBadGateway, "booking provider unavailable, please retry", meta)
	default:
		InternalError(w, err.Error(), meta)
	}
}
