package booking

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/booking-orchestrator/internal/models"
)

const dateLayout = "2006-01-02"

const (
	NamespaceAvailability = "availability"
	NamespacePricing      = "pricing"
)

type cachedEntry[T any] struct {
	value     T
	cachedAt  time.Time
	expiresAt time.Time
}

// Cache is a keyed TTL store. Entries are immutable once written: a Set
// replaces the whole entry, and values are cloned on both write and read so
// callers can never mutate what the cache holds.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cachedEntry[T]
	clone   func(T) T
	now     func() time.Time
}

func NewCache[T any](clone func(T) T) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]cachedEntry[T]),
		clone:   clone,
		now:     time.Now,
	}
}

// Set stores value under key for ttl. A non-positive ttl stores nothing,
// keeping the expiresAt > cachedAt invariant intact.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	now := c.now()
	c.entries[key] = cachedEntry[T]{
		value:     c.cloneValue(value),
		cachedAt:  now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
}

// Get returns the stored value while it is fresh. An expired entry is
// deleted on the spot and reported absent, so a direct lookup can never
// serve stale data.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another Get may have evicted, or a
		// Set may have replaced the entry with a fresh one.
		if current, still := c.entries[key]; still && !c.now().Before(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return c.cloneValue(entry.value), true
}

// Invalidate removes one entry; absent keys are a no-op.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix and
// returns how many were dropped.
func (c *Cache[T]) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// CleanExpired sweeps out entries past their expiry. Lazy eviction in Get
// already guarantees correctness; the sweep only bounds memory.
func (c *Cache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[T]) cloneValue(value T) T {
	if c.clone == nil {
		return value
	}
	return c.clone(value)
}

// CacheStore groups the two response caches the orchestrator maintains.
// Availability entries age out faster than pricing quotes; both TTLs come
// from configuration.
type CacheStore struct {
	availability *Cache[*models.AvailabilityResponse]
	pricing      *Cache[*models.PricingDetails]

	availabilityTTL time.Duration
	pricingTTL      time.Duration
	now             func() time.Time
}

func NewCacheStore(availabilityTTL, pricingTTL time.Duration) *CacheStore {
	return &CacheStore{
		availability:    NewCache[*models.AvailabilityResponse]((*models.AvailabilityResponse).Clone),
		pricing:         NewCache[*models.PricingDetails]((*models.PricingDetails).Clone),
		availabilityTTL: availabilityTTL,
		pricingTTL:      pricingTTL,
		now:             time.Now,
	}
}

// AvailabilityKey is deterministic for a stay tuple; the same query always
// maps to the same entry and hotel-wide invalidation relies on the
// namespace:hotel prefix.
func AvailabilityKey(hotelID string, checkIn, checkOut time.Time) string {
	return NamespaceAvailability + ":" + hotelID + ":" + checkIn.Format(dateLayout) + ":" + checkOut.Format(dateLayout)
}

func PricingKey(hotelID, roomID string, checkIn, checkOut time.Time) string {
	return NamespacePricing + ":" + hotelID + ":" + roomID + ":" + checkIn.Format(dateLayout) + ":" + checkOut.Format(dateLayout)
}

// SetAvailability stamps the response with the entry's cache metadata and
// stores it under the availability TTL.
func (s *CacheStore) SetAvailability(key string, resp *models.AvailabilityResponse) {
	now := s.now()
	resp.CachedAt = now
	resp.ExpiresAt = now.Add(s.availabilityTTL)
	s.availability.Set(key, resp, s.availabilityTTL)
}

func (s *CacheStore) GetAvailability(key string) (*models.AvailabilityResponse, bool) {
	return s.availability.Get(key)
}

func (s *CacheStore) SetPricing(key string, details *models.PricingDetails) {
	now := s.now()
	details.CachedAt = now
	details.ExpiresAt = now.Add(s.pricingTTL)
	s.pricing.Set(key, details, s.pricingTTL)
}

func (s *CacheStore) GetPricing(key string) (*models.PricingDetails, bool) {
	return s.pricing.Get(key)
}

// Invalidate drops one entry from whichever namespace the key belongs to.
func (s *CacheStore) Invalidate(key string) {
	switch {
	case strings.HasPrefix(key, NamespaceAvailability+":"):
		s.availability.Invalidate(key)
	case strings.HasPrefix(key, NamespacePricing+":"):
		s.pricing.Invalidate(key)
	}
}

// InvalidateHotel purges every availability and pricing entry for a hotel.
// Called after a successful mutation so stale inventory is never served.
func (s *CacheStore) InvalidateHotel(hotelID string) int {
	removed := s.availability.InvalidatePrefix(NamespaceAvailability + ":" + hotelID + ":")
	removed += s.pricing.InvalidatePrefix(NamespacePricing + ":" + hotelID + ":")
	return removed
}

func (s *CacheStore) CleanExpired() int {
	return s.availability.CleanExpired() + s.pricing.CleanExpired()
}

func (s *CacheStore) AvailabilityTTL() time.Duration { return s.availabilityTTL }

func (s *CacheStore) PricingTTL() time.Duration { return s.pricingTTL }

// StartSweeper runs CleanExpired on a timer until ctx is done.
func (s *CacheStore) StartSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.CleanExpired(); removed > 0 {
					logger.Debug("cache sweep", "removed", removed)
				}
			}
		}
	}()
}

// setNow overrides the clock on the store and both caches, for tests.
func (s *CacheStore) setNow(now func() time.Time) {
	s.now = now
	s.availability.now = now
	s.pricing.now = now
}
