package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

// MemoryAdapter is a PartsRepository kept in process memory. All operations are
// serialized, so adjustments are atomic the same way the MySQL adapter's are.
type MemoryAdapter struct {
	mu     sync.Mutex
	nextID int64
	parts  map[int64]domain.Part
	byKey  map[domain.PartKey]int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		parts: make(map[int64]domain.Part),
		byKey: make(map[domain.PartKey]int64),
	}
}

func (m *MemoryAdapter) FindByKey(ctx context.Context, key domain.PartKey) (*domain.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byKey[key]
	if !ok {
		return nil, nil
	}
	p := m.parts[id]
	return &p, nil
}

func (m *MemoryAdapter) Insert(ctx context.Context, part domain.Part) (domain.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byKey[part.Key()]; ok {
		return domain.Part{}, domain.ErrDuplicatePart
	}
	m.nextID++
	part.ID = m.nextID
	m.parts[part.ID] = part
	m.byKey[part.Key()] = part.ID
	return part, nil
}

func (m *MemoryAdapter) AdjustQuantity(ctx context.Context, id int64, delta int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parts[id]
	if !ok {
		return 0, false, domain.ErrPartNotFound
	}
	if p.Quantity+delta < 0 {
		return p.Quantity, false, nil
	}
	p.Quantity += delta
	m.parts[id] = p
	return p.Quantity, true, nil
}

func (m *MemoryAdapter) Update(ctx context.Context, part domain.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.parts[part.ID]
	if !ok {
		return domain.ErrPartNotFound
	}
	if id, taken := m.byKey[part.Key()]; taken && id != part.ID {
		return domain.ErrDuplicatePart
	}
	delete(m.byKey, current.Key())
	m.parts[part.ID] = part
	m.byKey[part.Key()] = part.ID
	return nil
}

func (m *MemoryAdapter) List(ctx context.Context) ([]domain.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := make([]domain.Part, 0, len(m.parts))
	for _, p := range m.parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].ID < parts[j].ID })
	return parts, nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		if p, ok := m.parts[id]; ok {
			delete(m.byKey, p.Key())
			delete(m.parts, id)
		}
	}
	return nil
}
