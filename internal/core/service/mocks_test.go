package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

var errStorageDown = errors.New("storage down")

// Mock PartsRepository
type mockPartsRepo struct {
	mu     sync.Mutex
	nextID int64
	parts  map[int64]domain.Part

	// failFindAt makes the n-th FindByKey call (1-based) fail.
	failFindAt int
	findCalls  int

	// racedInserts makes Insert lose that many races: another writer creates
	// the row with racedQuantity first.
	racedInserts  int
	racedQuantity int

	// alwaysDuplicate makes every Insert report a duplicate without creating a row.
	alwaysDuplicate bool

	insertCalls int
	adjustCalls int
	updateCalls int
	deleteCalls int
}

func newMockPartsRepo(parts ...domain.Part) *mockPartsRepo {
	m := &mockPartsRepo{parts: make(map[int64]domain.Part)}
	for _, p := range parts {
		m.nextID++
		p.ID = m.nextID
		m.parts[p.ID] = p
	}
	return m
}

func (m *mockPartsRepo) findLocked(key domain.PartKey) (domain.Part, bool) {
	for _, p := range m.parts {
		if p.Key() == key {
			return p, true
		}
	}
	return domain.Part{}, false
}

func (m *mockPartsRepo) FindByKey(ctx context.Context, key domain.PartKey) (*domain.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.findCalls++
	if m.failFindAt > 0 && m.findCalls == m.failFindAt {
		return nil, errStorageDown
	}
	p, ok := m.findLocked(key)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockPartsRepo) Insert(ctx context.Context, part domain.Part) (domain.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCalls++
	if m.alwaysDuplicate {
		return domain.Part{}, domain.ErrDuplicatePart
	}
	if m.racedInserts > 0 {
		m.racedInserts--
		m.nextID++
		raced := part
		raced.ID = m.nextID
		raced.Quantity = m.racedQuantity
		m.parts[raced.ID] = raced
		return domain.Part{}, domain.ErrDuplicatePart
	}
	if _, ok := m.findLocked(part.Key()); ok {
		return domain.Part{}, domain.ErrDuplicatePart
	}
	m.nextID++
	part.ID = m.nextID
	m.parts[part.ID] = part
	return part, nil
}

func (m *mockPartsRepo) AdjustQuantity(ctx context.Context, id int64, delta int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.adjustCalls++
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

func (m *mockPartsRepo) Update(ctx context.Context, part domain.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if _, ok := m.parts[part.ID]; !ok {
		return domain.ErrPartNotFound
	}
	m.parts[part.ID] = part
	return nil
}

func (m *mockPartsRepo) List(ctx context.Context) ([]domain.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := make([]domain.Part, 0, len(m.parts))
	for _, p := range m.parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].ID < parts[j].ID })
	return parts, nil
}

func (m *mockPartsRepo) Delete(ctx context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls++
	for _, id := range ids {
		delete(m.parts, id)
	}
	return nil
}

func (m *mockPartsRepo) quantity(key domain.PartKey) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.findLocked(key)
	return p.Quantity, ok
}

func (m *mockPartsRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.parts)
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu              sync.Mutex
	idempotencySet  map[string]bool
	interpretations map[string]string
	interpretSets   int
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		idempotencySet:  make(map[string]bool),
		interpretations: make(map[string]string),
	}
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) GetInterpretation(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.interpretations[key]
	return raw, ok, nil
}

func (m *mockCacheRepo) SetInterpretation(ctx context.Context, key, raw string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interpretSets++
	m.interpretations[key] = raw
	return nil
}

// Mock Completer
type mockCompleter struct {
	mu           sync.Mutex
	response     string
	err          error
	instructions []string
}

func (m *mockCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instructions = append(m.instructions, instruction)
	return m.response, m.err
}

func (m *mockCompleter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.instructions)
}

// Mock Transcriber
type mockTranscriber struct {
	mu        sync.Mutex
	text      string
	err       error
	calls     int
	filename  string
	language  domain.Language
	audioSeen string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string, language domain.Language) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.filename = filename
	m.language = language
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	m.audioSeen = string(data)
	return m.text, m.err
}
