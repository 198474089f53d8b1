package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for every tunable. Availability entries age out faster than
// pricing quotes; booking creation is limited hardest.
const (
	DefaultPort = "8080"

	DefaultAvailabilityTTL    = 5 * time.Minute
	DefaultPricingTTL         = 30 * time.Minute
	DefaultCacheSweepInterval = time.Minute

	DefaultAvailabilityLimit  = 60
	DefaultAvailabilityWindow = time.Minute
	DefaultBookingLimit       = 5
	DefaultBookingWindow      = 10 * time.Minute
	DefaultModificationLimit  = 10
	DefaultModificationWindow = 10 * time.Minute
	DefaultCancellationLimit  = 10
	DefaultCancellationWindow = 10 * time.Minute

	DefaultMaxRetries        = 3
	DefaultRetryInitialDelay = time.Second
	DefaultProviderTimeout   = 5 * time.Second

	DefaultProviderOutboundRPS   = 25.0
	DefaultProviderOutboundBurst = 10

	DefaultRequestTimeout = 15 * time.Second
)

type Config struct {
	Port string

	AvailabilityTTL    time.Duration
	PricingTTL         time.Duration
	CacheSweepInterval time.Duration

	AvailabilityLimit  int
	AvailabilityWindow time.Duration
	BookingLimit       int
	BookingWindow      time.Duration
	ModificationLimit  int
	ModificationWindow time.Duration
	CancellationLimit  int
	CancellationWindow time.Duration

	MaxRetries        int
	RetryInitialDelay time.Duration
	ProviderTimeout   time.Duration

	ProviderOutboundRPS   float64
	ProviderOutboundBurst int

	RequestTimeout time.Duration
	CORSOrigins    []string
}

// Load reads the environment with defaults for anything unset. Unparseable
// values fall back to the default with a warning rather than failing start.
func Load(logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}
	return Config{
		Port: envString("PORT", DefaultPort),

		AvailabilityTTL:    envDuration(logger, "AVAILABILITY_CACHE_TTL", DefaultAvailabilityTTL),
		PricingTTL:         envDuration(logger, "PRICING_CACHE_TTL", DefaultPricingTTL),
		CacheSweepInterval: envDuration(logger, "CACHE_SWEEP_INTERVAL", DefaultCacheSweepInterval),

		AvailabilityLimit:  envInt(logger, "RL_AVAILABILITY_MAX", DefaultAvailabilityLimit),
		AvailabilityWindow: envDuration(logger, "RL_AVAILABILITY_WINDOW", DefaultAvailabilityWindow),
		BookingLimit:       envInt(logger, "RL_BOOKING_MAX", DefaultBookingLimit),
		BookingWindow:      envDuration(logger, "RL_BOOKING_WINDOW", DefaultBookingWindow),
		ModificationLimit:  envInt(logger, "RL_MODIFICATION_MAX", DefaultModificationLimit),
		ModificationWindow: envDuration(logger, "RL_MODIFICATION_WINDOW", DefaultModificationWindow),
		CancellationLimit:  envInt(logger, "RL_CANCELLATION_MAX", DefaultCancellationLimit),
		CancellationWindow: envDuration(logger, "RL_CANCELLATION_WINDOW", DefaultCancellationWindow),

		MaxRetries:        envInt(logger, "RETRY_MAX", DefaultMaxRetries),
		RetryInitialDelay: envDuration(logger, "RETRY_INITIAL_DELAY", DefaultRetryInitialDelay),
		ProviderTimeout:   envDuration(logger, "PROVIDER_TIMEOUT", DefaultProviderTimeout),

		ProviderOutboundRPS:   envFloat(logger, "PROVIDER_OUTBOUND_RPS", DefaultProviderOutboundRPS),
		ProviderOutboundBurst: envInt(logger, "PROVIDER_OUTBOUND_BURST", DefaultProviderOutboundBurst),

		RequestTimeout: envDuration(logger, "REQUEST_TIMEOUT", DefaultRequestTimeout),
		CORSOrigins:    envList("CORS_ORIGINS", []string{"*"}),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envInt(logger *slog.Logger, key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envFloat(logger *slog.Logger, key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("invalid number in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envDuration(logger *slog.Logger, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
