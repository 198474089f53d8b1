package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/booking-orchestrator/internal/booking"
	ht "github.com/example/booking-orchestrator/internal/http"
	"github.com/example/booking-orchestrator/internal/models"
	"github.com/example/booking-orchestrator/internal/notify"
	"github.com/example/booking-orchestrator/internal/obs"
	"github.com/example/booking-orchestrator/internal/payments"
	"github.com/example/booking-orchestrator/internal/providers"
	"github.com/example/booking-orchestrator/internal/routes"
)

func apiHotel() models.Hotel {
	return models.Hotel{
		ID:         "ht_blue_harbor",
		Name:       "Blue Harbor",
		City:       "Porto",
		Currency:   "EUR",
		ProviderID: "sunrise",
		Rooms: []models.RoomOption{
			{RoomID: "rm_std", Name: "Standard Double", NightlyRate: 100, Currency: "EUR", MaxGuests: 2, RoomsLeft: 2},
			{RoomID: "rm_dlx", Name: "Deluxe Suite", NightlyRate: 150, Currency: "EUR", MaxGuests: 4, RoomsLeft: 1},
		},
		CancellationPolicy: []models.CancellationPolicyRule{
			{DaysBeforeCheckIn: 7, RefundPercent: 100},
			{DaysBeforeCheckIn: 2, RefundPercent: 50},
			{DaysBeforeCheckIn: 0, RefundPercent: 0},
		},
	}
}

// newServer wires the whole stack with a deterministic sim: zero latency,
// zero failure rate.
func newServer(t *testing.T) (*httptest.Server, *payments.Sandbox) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hotel := apiHotel()

	sim := providers.NewSim("sunrise", 0, 0, 0, hotel)
	registry := booking.NewRegistry(sim, logger)
	registry.Register("sunrise", sim)

	sandbox := payments.NewSandbox(logger)
	metrics := obs.NewMetrics(prometheus.NewRegistry())

	orch := booking.NewOrchestrator(booking.Options{
		Catalog:  booking.NewHotelCatalog(hotel),
		Cache:    booking.NewCacheStore(5*time.Minute, 30*time.Minute),
		Registry: registry,
		Pricing:  booking.NewPricingEngine(nil),
		Payments: sandbox,
		Notifier: notify.NewLogger(logger),
		Limiters: map[booking.OperationClass]*booking.RateLimiter{
			booking.ClassAvailability: booking.NewRateLimiter(booking.ClassAvailability, 3, time.Hour),
			booking.ClassBooking:      booking.NewRateLimiter(booking.ClassBooking, 5, time.Hour),
			booking.ClassModification: booking.NewRateLimiter(booking.ClassModification, 5, time.Hour),
			booking.ClassCancellation: booking.NewRateLimiter(booking.ClassCancellation, 5, time.Hour),
		},
		MaxRetries:      1,
		InitialDelay:    time.Millisecond,
		ProviderTimeout: time.Second,
		Logger:          logger,
		Metrics:         metrics,
	})

	handler := ht.NewHandler(orch, logger)
	srv := httptest.NewServer(routes.GetRoutes(handler, metrics, logger, 5*time.Second, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, sandbox
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t)
	resp := do(t, srv, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	// one real operation so the counters have series to export
	resp := do(t, srv, http.MethodGet, "/api/availability?hotel_id=ht_blue_harbor&check_in=2030-06-10&check_out=2030-06-15", "tok-metrics", nil)
	resp.Body.Close()

	resp = do(t, srv, http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)
	if !strings.Contains(text, "booking_requests_total") {
		t.Fatalf("expected booking_requests_total exported:\n%s", text)
	}
	if !strings.Contains(text, "http_requests_total") {
		t.Fatalf("expected http_requests_total exported")
	}
}

func TestHotelsEndpoints(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodGet, "/api/hotels", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var listing struct {
		Hotels []models.Hotel `json:"hotels"`
		Count  int            `json:"count"`
	}
	decodeBody(t, resp, &listing)
	if listing.Count != 1 || len(listing.Hotels) != 1 || listing.Hotels[0].ID != "ht_blue_harbor" {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	resp = do(t, srv, http.MethodGet, "/api/hotels/ht_blue_harbor", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var hotel models.Hotel
	decodeBody(t, resp, &hotel)
	if hotel.Name != "Blue Harbor" || len(hotel.Rooms) != 2 {
		t.Fatalf("unexpected hotel: %+v", hotel)
	}

	resp = do(t, srv, http.MethodGet, "/api/hotels/ht_missing", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodGet, "/api/availability?hotel_id=ht_blue_harbor&check_in=2030-06-10&check_out=2030-06-15", "tok-avail", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var avail models.AvailabilityResponse
	decodeBody(t, resp, &avail)
	if !avail.Available || len(avail.Rooms) != 2 {
		t.Fatalf("unexpected availability: %+v", avail)
	}
	if avail.CachedAt.IsZero() || avail.ExpiresAt.IsZero() {
		t.Fatalf("expected cache metadata stamped: %+v", avail)
	}

	resp = do(t, srv, http.MethodGet, "/api/availability?hotel_id=ht_blue_harbor&check_in=junk&check_out=2030-06-15", "tok-avail", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad date, got %d", resp.StatusCode)
	}
	var errBody ht.ErrorResponse
	decodeBody(t, resp, &errBody)
	if !strings.Contains(errBody.Error, "check_in") {
		t.Fatalf("unexpected error body: %+v", errBody)
	}

	resp = do(t, srv, http.MethodGet, "/api/availability?check_in=2030-06-10&check_out=2030-06-15", "tok-avail", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing hotel_id, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodGet, "/api/availability?hotel_id=ht_missing&check_in=2030-06-10&check_out=2030-06-15", "tok-avail", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown hotel, got %d", resp.StatusCode)
	}
}

func TestAvailabilityRateLimit(t *testing.T) {
	srv, _ := newServer(t)
	path := "/api/availability?hotel_id=ht_blue_harbor&check_in=2030-06-10&check_out=2030-06-15"

	for i := 0; i < 3; i++ {
		resp := do(t, srv, http.MethodGet, path, "tok-throttle", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}
	resp := do(t, srv, http.MethodGet, path, "tok-throttle", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header on denial")
	}
	// another caller is unaffected
	resp = do(t, srv, http.MethodGet, path, "tok-other", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("independent identity was throttled: %d", resp.StatusCode)
	}
}

func TestPricingEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodGet, "/api/pricing?hotel_id=ht_blue_harbor&room_id=rm_std&check_in=2030-06-10&check_out=2030-06-15&currency=USD", "tok-price", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var quote models.PricingDetails
	decodeBody(t, resp, &quote)
	if quote.Nights != 5 || quote.Total != 615 || quote.Currency != "EUR" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.Converted == nil || quote.Converted.Currency != "USD" || quote.Converted.Amount != 670.35 {
		t.Fatalf("expected USD overlay: %+v", quote.Converted)
	}

	resp = do(t, srv, http.MethodGet, "/api/pricing?hotel_id=ht_blue_harbor&check_in=2030-06-10&check_out=2030-06-15", "tok-price", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing room_id, got %d", resp.StatusCode)
	}
}

func TestBookingLifecycle(t *testing.T) {
	srv, sandbox := newServer(t)

	resp := do(t, srv, http.MethodPost, "/api/bookings", "tok-life", map[string]any{
		"hotel_id":  "ht_blue_harbor",
		"room_id":   "rm_std",
		"check_in":  "2030-06-10",
		"check_out": "2030-06-15",
		"guests":    2,
		"guest": map[string]string{
			"first_name": "Ana",
			"last_name":  "Silva",
			"email":      "ana@example.com",
		},
		"payment_method_id": "pm_card_visa",
	})
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}
	var created models.BookingConfirmation
	decodeBody(t, resp, &created)
	if created.BookingID == "" || created.Status != models.BookingStatusConfirmed {
		t.Fatalf("unexpected confirmation: %+v", created)
	}
	if created.Pricing.Total != 615 || created.PaymentIntentID == "" {
		t.Fatalf("unexpected pricing or intent: %+v", created)
	}
	if balance, ok := sandbox.Refundable(created.PaymentIntentID); !ok || balance != 61500 {
		t.Fatalf("expected the full charge captured, got %d %v", balance, ok)
	}

	resp = do(t, srv, http.MethodGet, "/api/bookings/"+created.BookingID, "tok-life", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var fetched models.BookingConfirmation
	decodeBody(t, resp, &fetched)
	if fetched.Reference != created.Reference {
		t.Fatalf("expected the stored booking back, got %+v", fetched)
	}

	// shorten the stay: the difference is refunded
	resp = do(t, srv, http.MethodPatch, "/api/bookings/"+created.BookingID, "tok-life", map[string]any{
		"check_out": "2030-06-13",
	})
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var modified models.BookingConfirmation
	decodeBody(t, resp, &modified)
	if modified.Pricing.Total != 391 {
		t.Fatalf("expected total 391 after shortening, got %v", modified.Pricing.Total)
	}
	if balance, _ := sandbox.Refundable(created.PaymentIntentID); balance != 39100 {
		t.Fatalf("expected 224.00 refunded, balance %d", balance)
	}

	// far out from check-in the cancellation refunds in full
	resp = do(t, srv, http.MethodDelete, "/api/bookings/"+created.BookingID, "tok-life", nil)
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var cancelled models.CancellationConfirmation
	decodeBody(t, resp, &cancelled)
	if cancelled.RefundAmount != 391 || cancelled.RefundStatus != models.RefundStatusSucceeded {
		t.Fatalf("unexpected cancellation: %+v", cancelled)
	}
	if balance, _ := sandbox.Refundable(created.PaymentIntentID); balance != 0 {
		t.Fatalf("expected the balance fully drawn, got %d", balance)
	}

	resp = do(t, srv, http.MethodGet, "/api/bookings/"+created.BookingID, "tok-life", nil)
	var terminal models.BookingConfirmation
	decodeBody(t, resp, &terminal)
	if terminal.Status != models.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %s", terminal.Status)
	}

	resp = do(t, srv, http.MethodPatch, "/api/bookings/"+created.BookingID, "tok-life", map[string]any{
		"check_out": "2030-06-20",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 modifying a cancelled booking, got %d", resp.StatusCode)
	}
}

func TestCreateBookingRejections(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodPost, "/api/bookings", "tok-reject", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty body, got %d", resp.StatusCode)
	}

	base := map[string]any{
		"hotel_id":  "ht_blue_harbor",
		"room_id":   "rm_std",
		"check_in":  "2030-06-10",
		"check_out": "2030-06-15",
		"guests":    2,
		"guest": map[string]string{
			"first_name": "Ana",
			"last_name":  "Silva",
			"email":      "ana@example.com",
		},
	}

	bad := func(mutate func(m map[string]any)) map[string]any {
		m := make(map[string]any, len(base))
		for k, v := range base {
			m[k] = v
		}
		mutate(m)
		return m
	}

	resp = do(t, srv, http.MethodPost, "/api/bookings", "tok-reject", bad(func(m map[string]any) {
		m["check_in"] = "10/06/2030"
	}))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodPost, "/api/bookings", "tok-reject", bad(func(m map[string]any) {
		m["guest"] = map[string]string{"first_name": "<script>x</script>", "last_name": "Silva", "email": "ana@example.com"}
	}))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for injection input, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodPost, "/api/bookings", "tok-reject", bad(func(m map[string]any) {
		m["hotel_id"] = "ht_missing"
	}))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown hotel, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodPost, "/api/bookings", "tok-reject", bad(func(m map[string]any) {
		m["room_id"] = "rm_ghost"
	}))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown room, got %d", resp.StatusCode)
	}
}

func TestCreateBookingDeclinedPayment(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodPost, "/api/bookings", "tok-declined", map[string]any{
		"hotel_id":  "ht_blue_harbor",
		"room_id":   "rm_std",
		"check_in":  "2030-06-10",
		"check_out": "2030-06-15",
		"guests":    2,
		"guest": map[string]string{
			"first_name": "Ana",
			"last_name":  "Silva",
			"email":      "ana@example.com",
		},
		"payment_method_id": payments.DeclinedMethodPrefix + "_visa",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 for a declined card, got %d", resp.StatusCode)
	}
	var errBody ht.ErrorResponse
	decodeBody(t, resp, &errBody)
	if errBody.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestGetBookingNotFound(t *testing.T) {
	srv, _ := newServer(t)
	resp := do(t, srv, http.MethodGet, "/api/bookings/bk_missing", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
