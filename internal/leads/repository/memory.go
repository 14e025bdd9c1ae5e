package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rentalneeds/leadflow-backend/pkg/errors"
)

// MemoryRepository keeps customers in process memory. It backs
// database.url=memory for local demos and service-level tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[string]*memoryEntry
	seq       int64
	now       func() time.Time
}

type memoryEntry struct {
	customer Customer
	seq      int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		customers: make(map[string]*memoryEntry),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Create(_ context.Context, c *Customer) error {
	if c.Status != "" && !c.Status.Valid() {
		return statusError()
	}
	if c.TrustScore != nil && (*c.TrustScore < 0 || *c.TrustScore > 100) {
		return scoreError()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := m.customers[c.ID]; exists {
		return errors.Conflict("a record with these values already exists")
	}
	if c.Status == "" {
		c.Status = StatusNewLead
	}
	now := m.now()
	c.CreatedAt, c.UpdatedAt = now, now

	m.seq++
	m.customers[c.ID] = &memoryEntry{customer: clone(c), seq: m.seq}
	return nil
}

func (m *MemoryRepository) List(_ context.Context, params ListParams) ([]*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*memoryEntry, 0, len(m.customers))
	for _, e := range m.customers {
		if params.Status != nil && e.customer.Status != *params.Status {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.customer.CreatedAt.Equal(b.customer.CreatedAt) {
			return a.customer.CreatedAt.After(b.customer.CreatedAt)
		}
		return a.seq > b.seq
	})

	customers := make([]*Customer, len(entries))
	for i, e := range entries {
		c := clone(&e.customer)
		customers[i] = &c
	}
	return customers, nil
}

func (m *MemoryRepository) CountByStatus(_ context.Context) (map[Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, e := range m.customers {
		counts[e.customer.Status]++
	}
	return counts, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.customers[id]
	if !ok {
		return nil, errors.NotFound("customer")
	}
	c := clone(&e.customer)
	return &c, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id string, status Status) (*Customer, Status, error) {
	if !status.Valid() {
		return nil, "", statusError()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.customers[id]
	if !ok {
		return nil, "", errors.NotFound("customer")
	}
	old := e.customer.Status
	e.customer.Status = status
	e.customer.UpdatedAt = m.now()

	c := clone(&e.customer)
	return &c, old, nil
}

func (m *MemoryRepository) UpdateScore(_ context.Context, id string, score int, details string) (*Customer, error) {
	if score < 0 || score > 100 {
		return nil, scoreError()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.customers[id]
	if !ok {
		return nil, errors.NotFound("customer")
	}
	e.customer.TrustScore = &score
	e.customer.TrustScoreDetails = &details
	e.customer.UpdatedAt = m.now()

	c := clone(&e.customer)
	return &c, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customers[id]; !ok {
		return errors.NotFound("customer")
	}
	delete(m.customers, id)
	return nil
}

// clone copies c including the values behind its pointer fields.
func clone(c *Customer) Customer {
	cp := *c
	cp.IDImageURL = copyPtr(c.IDImageURL)
	cp.BankStatementURL = copyPtr(c.BankStatementURL)
	cp.TrustScore = copyPtr(c.TrustScore)
	cp.TrustScoreDetails = copyPtr(c.TrustScoreDetails)
	return cp
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func statusError() *errors.AppError {
	return errors.Validation(map[string]string{"status": "must be one of: " + StatusList()})
}

func scoreError() *errors.AppError {
	return errors.Validation(map[string]string{"trust_score": "must be between 0 and 100"})
}
