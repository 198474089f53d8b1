package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/booking-orchestrator/internal/booking"
	"github.com/example/booking-orchestrator/internal/models"
	"github.com/example/booking-orchestrator/internal/validator"
)

type Handler struct {
	orch   *booking.Orchestrator
	logger *slog.Logger
}

func NewHandler(orch *booking.Orchestrator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{orch: orch, logger: logger}
}

func (h *Handler) ipFromRequest(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// identity is the rate-limiting key for the caller: the session token when
// the client presents one, the client IP otherwise.
func (h *Handler) identity(r *http.Request) string {
	if token := r.Header.Get("X-Session-Token"); token != "" {
		return token
	}
	return h.ipFromRequest(r)
}

func (h *Handler) requestMeta(r *http.Request) map[string]string {
	// chi's middleware.RequestID sets X-Request-Id header
	reqID := r.Header.Get("X-Request-Id")
	if reqID == "" {
		reqID = uuid.New().String()
	}
	return map[string]string{"request_id": reqID}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Hotels(w http.ResponseWriter, r *http.Request) {
	hotels := h.orch.Hotels()
	WriteJSON(w, http.StatusOK, map[string]any{
		"hotels": hotels,
		"count":  len(hotels),
	})
}

func (h *Handler) HotelDetails(w http.ResponseWriter, r *http.Request) {
	meta := h.requestMeta(r)
	hotel, err := h.orch.HotelDetails(r.Context(), chi.URLParam(r, "hotelID"))
	if err != nil {
		WriteDomainError(w, err, meta)
		return
	}
	WriteJSON(w, http.StatusOK, hotel)
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	meta := h.requestMeta(r)
	q := r.URL.Query()

	hotelID := q.Get("hotel_id")
	if hotelID == "" {
		BadRequest(w, "hotel_id is required", meta)
		return
	}
	checkIn, err := validator.ParseDate(q.Get("check_in"))
	if err != nil {
		BadRequest(w, "check_in: "+err.Error(), meta)
		return
	}
	checkOut, err := validator.ParseDate(q.Get("check_out"))
	if err != nil {
		BadRequest(w, "check_out: "+err.Error(), meta)
		return
	}

	resp, err := h.orch.CheckAvailability(r.Context(), h.identity(r), hotelID, checkIn, checkOut)
	if err != nil {
		WriteDomainError(w, err, meta)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Pricing(w http.ResponseWriter, r *http.Request) {
	meta := h.requestMeta(r)
	q := r.URL.Query()

	hotelID := q.Get("hotel_id")
	roomID := q.Get("room_id")
	if hotelID == "" || roomID == "" {
		BadRequest(w, "hotel_id and room_id are required", meta)
		return
	}
	checkIn, err := validator.ParseDate(q.Get("check_in"))
	if err != nil {
		BadRequest(w, "check_in: "+err.Error(), meta)
		return
	}
	checkOut, err := validator.ParseDate(q.Get("check_out"))
	if err != nil {
		BadRequest(w, "check_out: "+err.Error(), meta)
		return
	}

	details, err := h.orch.GetPricing(r.Context(), h.identity(r), hotelID, roomID, checkIn, checkOut, q.Get("currency"))
	if err != nil {
		WriteDomainError(w, err, meta)
		return
	}
	WriteJSON(w, http.StatusOK, details)
}

// createBookingPayload is the wire form of a booking request; dates travel
// as YYYY-MM-DD strings.
type createBookingPayload struct {
	HotelID         string           `json:"hotel_id"`
	RoomID          string           `json:"room_id"`
	CheckIn         string           `json:"check_in"`
	CheckOut        string           `json:"check_out"`
	Guests          int              `json:"guests"`
	Guest           models.GuestInfo `json:"guest"`
	Currency        string           `json:"currency"`
	PaymentMethodID string           `json:"payment_method_id"`
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	meta := h.requestMeta(r)

	var payload createBookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		BadRequest(w, "invalid JSON body", meta)
		return
	}
	checkIn, err := validator.ParseDate(payload.CheckIn)
	if err != nil {
		BadRequest(w, "check_in: "+err.Error(), meta)
		return
	}
	checkOut, err := validator.ParseDate(payload.CheckOut)
	if err != nil {
		BadRequest(w, "check_out: "+err.Error(), meta)
		return
	}

	confirmation, err := h.orch.CreateBooking(r.Context(), h.identity(r), models.BookingRequest{
		HotelID:         payload.HotelID,
		RoomID:          payload.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          payload.Guests,
		Guest:           payload.Guest,
		Currency:        payload.Currency,
		PaymentMethodID: payload.PaymentMethodID,
	})
	if err != nil {
		WriteDomainError(w, err, meta)
		return
	}
	WriteJSON(w, http.StatusCreated, confirmation)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	meta := h.requestMeta(r)
	confirmation, err := h.orch.GetBooking(chi.URLParam(r, "bookingID"))
	if err != nil {
		WriteDomainError(w, err, meta)
		return
	}
	WriteJSON(w, http.StatusOK, confirmation)
}

// modifyBookingPayload carries only the fields the guest wants changed.
type modifyBookingPayload struct {
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	RoomID          string `json:"room_id"`
	PaymentMethodID string `json:"payment_method_id"`
}

func (h *Handler) ModifyBooking(w http.ResponseWriter, r *http.Request) {
	meta := h.requestMeta(r)

	var payload modifyBookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		BadRequest(w, "invalid JSON body", meta)
		return
	}
	changes := models.BookingChanges{
		RoomID:          payload.RoomID,
		PaymentMethodID: payload.PaymentMethodID,
	}
	if payload.CheckIn != "" {
		checkIn, err := validator.ParseDate(payload.CheckIn)
		if err != nil {
			BadRequest(w, "check_in: "+err.Error(), meta)
			return
		}
		changes.CheckIn = &checkIn
	}
	if payload.CheckOut != "" {
		checkOut, err := validator.ParseDate(payload.CheckOut)
		if err != nil {
			BadRequest(w, "check_out: "+err.Error(), meta)
			return
		}
		changes.CheckOut = &checkOut
	}

	updated, err := h.orch.ModifyBooking(r.Context(), h.identity(r), chi.URLParam(r, "bookingID"), changes)
	if err != nil {
		WriteDomainError(w, err, meta)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	meta := h.requestMeta(r)
	cancellation, err := h.orch.CancelBooking(r.Context(), h.identity(r), chi.URLParam(r, "bookingID"))
	if err != nil {
		WriteDomainError(w, err, meta)
		return
	}
	WriteJSON(w, http.StatusOK, cancellation)
}
