package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

// MemoryAdapter keeps beers in process memory. Name uniqueness and version
// checks happen under one lock, so it gives the same guarantees as the SQL
// adapters.
type MemoryAdapter struct {
	mu     sync.RWMutex
	beers  map[string]domain.Beer
	byName map[string]string
	order  []string
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		beers:  make(map[string]domain.Beer),
		byName: make(map[string]string),
	}
}

func (m *MemoryAdapter) FindByID(ctx context.Context, id string) (*domain.Beer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	beer, ok := m.beers[id]
	if !ok {
		return nil, nil
	}
	return &beer, nil
}

func (m *MemoryAdapter) FindByName(ctx context.Context, name string) (*domain.Beer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[name]
	if !ok {
		return nil, nil
	}
	beer := m.beers[id]
	return &beer, nil
}

func (m *MemoryAdapter) Save(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if beer.ID == "" {
		if _, taken := m.byName[beer.Name]; taken {
			return domain.Beer{}, port.ErrDuplicateName
		}
		beer.ID = uuid.New().String()
		beer.Version = 1
		m.beers[beer.ID] = beer
		m.byName[beer.Name] = beer.ID
		m.order = append(m.order, beer.ID)
		return beer, nil
	}

	current, ok := m.beers[beer.ID]
	if !ok || current.Version != beer.Version || beer.Quantity < 0 || beer.Quantity > current.Max {
		return domain.Beer{}, port.ErrOptimisticLock
	}

	// quantity is the only mutable field
	current.Quantity = beer.Quantity
	current.Version++
	m.beers[beer.ID] = current
	return current, nil
}

func (m *MemoryAdapter) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	beer, ok := m.beers[id]
	if !ok {
		return port.ErrNotFound
	}

	delete(m.beers, id)
	delete(m.byName, beer.Name)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryAdapter) FindAll(ctx context.Context) ([]domain.Beer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	beers := make([]domain.Beer, 0, len(m.order))
	for _, id := range m.order {
		beers = append(beers, m.beers[id])
	}
	return beers, nil
}
