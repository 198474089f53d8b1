package app

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/example/booking-orchestrator/internal/booking"
	"github.com/example/booking-orchestrator/internal/config"
	handlers "github.com/example/booking-orchestrator/internal/http"
	"github.com/example/booking-orchestrator/internal/notify"
	"github.com/example/booking-orchestrator/internal/obs"
	"github.com/example/booking-orchestrator/internal/payments"
	"github.com/example/booking-orchestrator/internal/providers"
	"github.com/example/booking-orchestrator/internal/routes"
)

type App struct {
	Router       http.Handler
	Orchestrator *booking.Orchestrator
	Cache        *booking.CacheStore
	Registry     *booking.Registry
	Metrics      *obs.Metrics
	Config       config.Config
	Logger       *slog.Logger
}

func SetAppConfig() *App {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load(logger)

	hotels := providers.SampleHotels()
	catalog := booking.NewHotelCatalog(hotels...)
	registry := providers.SeedRegistry(hotels, rate.Limit(cfg.ProviderOutboundRPS), cfg.ProviderOutboundBurst, logger)

	customRegistry := prometheus.NewRegistry()
	metrics := obs.NewMetrics(customRegistry)

	cache := booking.NewCacheStore(cfg.AvailabilityTTL, cfg.PricingTTL)
	limiters := map[booking.OperationClass]*booking.RateLimiter{
		booking.ClassAvailability: booking.NewRateLimiter(booking.ClassAvailability, cfg.AvailabilityLimit, cfg.AvailabilityWindow),
		booking.ClassBooking:      booking.NewRateLimiter(booking.ClassBooking, cfg.BookingLimit, cfg.BookingWindow),
		booking.ClassModification: booking.NewRateLimiter(booking.ClassModification, cfg.ModificationLimit, cfg.ModificationWindow),
		booking.ClassCancellation: booking.NewRateLimiter(booking.ClassCancellation, cfg.CancellationLimit, cfg.CancellationWindow),
	}

	orch := booking.NewOrchestrator(booking.Options{
		Catalog:  catalog,
		Cache:    cache,
		Limiters: limiters,
		Registry: registry,
		Store:    booking.NewBookingStore(),
		Pricing:  booking.NewPricingEngine(nil),
		Payments: payments.NewSandbox(logger),
		Notifier: notify.NewLogger(logger),

		MaxRetries:      cfg.MaxRetries,
		InitialDelay:    cfg.RetryInitialDelay,
		ProviderTimeout: cfg.ProviderTimeout,

		Logger:  logger,
		Metrics: metrics,
	})

	h := handlers.NewHandler(orch, logger)
	router := routes.GetRoutes(h, metrics, logger, cfg.RequestTimeout, cfg.CORSOrigins)

	return &App{
		Router:       router,
		Orchestrator: orch,
		Cache:        cache,
		Registry:     registry,
		Metrics:      metrics,
		Config:       cfg,
		Logger:       logger,
	}
}
