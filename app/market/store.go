package market

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/joefazee/marketcore/models"
)

// MemoryStore is an in-process Store keyed by market ID.
type MemoryStore struct {
	mu      sync.RWMutex
	markets map[uuid.UUID]*models.Market
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{markets: make(map[uuid.UUID]*models.Market)}
}

func (s *MemoryStore) Get(id uuid.UUID) (*models.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markets[id]
	if !ok {
		return nil, models.ErrMarketNotFound
	}
	return m, nil
}

func (s *MemoryStore) Put(m *models.Market) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets[m.ID] = m
}

// List returns all markets ordered by creation time, ties broken by ID
// so the order is stable.
func (s *MemoryStore) List() []*models.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Market, 0, len(s.markets))
	for _, m := range s.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
