package booking

import (
	"sync"

	"github.com/example/booking-orchestrator/internal/models"
)

// BookingStore keeps the confirmations this process has issued so the
// modify/cancel paths can load the booking they operate on. It is in-memory
// only; a restart clears it along with the caches and limiter state.
type BookingStore struct {
	mu      sync.RWMutex
	records map[string]*models.BookingConfirmation
}

func NewBookingStore() *BookingStore {
	return &BookingStore{records: make(map[string]*models.BookingConfirmation)}
}

// Put stores a copy of the confirmation, replacing any previous version.
func (s *BookingStore) Put(b *models.BookingConfirmation) {
	s.mu.Lock()
	s.records[b.BookingID] = b.Clone()
	s.mu.Unlock()
}

func (s *BookingStore) Get(bookingID string) (*models.BookingConfirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return record.Clone(), nil
}

func (s *BookingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
