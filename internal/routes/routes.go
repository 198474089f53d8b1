package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	handlers "github.com/example/booking-orchestrator/internal/http"
	mid "github.com/example/booking-orchestrator/internal/middleware"
	"github.com/example/booking-orchestrator/internal/obs"
)

func GetRoutes(h *handlers.Handler, metrics *obs.Metrics, logger *slog.Logger, requestTimeout time.Duration, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	// Useful built-in middlewares
	r.Use(middleware.RealIP)    // proper client IP extraction
	r.Use(middleware.RequestID) // sets request ID header
	r.Use(middleware.Recoverer) // built-in recoverer to avoid panics taking server down

	r.Use(cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Session-Token", "X-Request-Id"},
	}).Handler)

	// our custom middlewares: metrics, logging & timeout
	r.Use(mid.MetricsMiddleware(metrics))
	r.Use(mid.LoggingMiddleware(logger))
	r.Use(middleware.Timeout(requestTimeout))

	// endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/hotels", h.Hotels)
		r.Get("/hotels/{hotelID}", h.HotelDetails)
		r.Get("/availability", h.Availability)
		r.Get("/pricing", h.Pricing)

		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings/{bookingID}", h.GetBooking)
		r.Patch("/bookings/{bookingID}", h.ModifyBooking)
		r.Delete("/bookings/{bookingID}", h.CancelBooking)
	})

	return r
}
