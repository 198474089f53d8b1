package booking

import (
	"sort"
	"sync"

	"github.com/example/booking-orchestrator/internal/models"
)

// HotelCatalog is the directory of bookable hotels. The orchestrator resolves
// hotel IDs through it before touching caches, limiters or providers.
type HotelCatalog struct {
	mu     sync.RWMutex
	hotels map[string]models.Hotel
}

func NewHotelCatalog(hotels ...models.Hotel) *HotelCatalog {
	c := &HotelCatalog{hotels: make(map[string]models.Hotel, len(hotels))}
	for _, h := range hotels {
		c.hotels[h.ID] = h.Clone()
	}
	return c
}

func (c *HotelCatalog) Add(h models.Hotel) {
	c.mu.Lock()
	c.hotels[h.ID] = h.Clone()
	c.mu.Unlock()
}

func (c *HotelCatalog) Get(hotelID string) (models.Hotel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hotels[hotelID]
	if !ok {
		return models.Hotel{}, ErrHotelNotFound
	}
	return h.Clone(), nil
}

// List returns all hotels ordered by ID so responses are stable.
func (c *HotelCatalog) List() []models.Hotel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Hotel, 0, len(c.hotels))
	for _, h := range c.hotels {
		out = append(out, h.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *HotelCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hotels)
}
