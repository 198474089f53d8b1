package booking

import (
	"log/slog"
	"sync"

	"github.com/example/booking-orchestrator/internal/models"
)

// Registry maps hotels to the adapter responsible for their inventory
// backend. Resolution is a pure function of the current table and the hotel:
// resolved adapters are never cached across calls, since registrations can
// change at runtime.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]ProviderAdapter
	order    []string
	fallback ProviderAdapter
	logger   *slog.Logger
}

// NewRegistry takes the fallback adapter at construction so Resolve can
// never come up empty; booking flows degrade to the fallback instead of
// hard-failing on provider misconfiguration.
func NewRegistry(fallback ProviderAdapter, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		adapters: make(map[string]ProviderAdapter),
		fallback: fallback,
		logger:   logger,
	}
}

// Register binds an adapter to a provider id; the last registration for an
// id wins. A new id joins the capability-scan order at the end.
func (r *Registry) Register(providerID string, adapter ProviderAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[providerID]; !exists {
		r.order = append(r.order, providerID)
	}
	r.adapters[providerID] = adapter
}

func (r *Registry) Unregister(providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[providerID]; !exists {
		return
	}
	delete(r.adapters, providerID)
	for i, id := range r.order {
		if id == providerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Resolve picks the adapter for a hotel: its explicit binding when
// registered, else the first registered adapter claiming support, else the
// fallback with a warning.
func (r *Registry) Resolve(hotel models.Hotel) ProviderAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if hotel.ProviderID != "" {
		if adapter, ok := r.adapters[hotel.ProviderID]; ok {
			return adapter
		}
	}
	for _, id := range r.order {
		if r.adapters[id].SupportsHotel(hotel) {
			return r.adapters[id]
		}
	}
	r.logger.Warn("no provider adapter matched hotel, using fallback",
		"hotel_id", hotel.ID,
		"provider_id", hotel.ProviderID,
		"fallback", r.fallback.Name(),
	)
	return r.fallback
}

// IDs returns the registered provider ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.order...)
}

func (r *Registry) Fallback() ProviderAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}
