package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	ListBySpa(ctx context.Context, spaID string) ([]*Lead, error)
}

// InMemoryRepository is a Repository backed by a slice, used in tests and
// local development without Postgres.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Create stores a new lead.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *lead
	copied.CreatedAt = time.Now().UTC()
	r.leads = append(r.leads, &copied)

	out := copied
	return &out, nil
}

// SpaCounter bumps a spa's lead counter. Satisfied by spas.Repository.
type SpaCounter interface {
	IncrementLeads(ctx context.Context, spaID string) error
}

// CountingRepository pairs a lead store with the spa counter, for backends
// whose Create does not bump the counter itself. The Postgres repository
// increments inside its own transaction and must not be wrapped.
type CountingRepository struct {
	Repository
	counter SpaCounter
}

// NewCountingRepository wraps inner so every created lead also increments the
// owning spa's counter.
func NewCountingRepository(inner Repository, counter SpaCounter) *CountingRepository {
	return &CountingRepository{Repository: inner, counter: counter}
}

// Create stores the lead and bumps the spa counter.
func (r *CountingRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	created, err := r.Repository.Create(ctx, lead)
	if err != nil {
		return nil, err
	}
	if err := r.counter.IncrementLeads(ctx, created.SpaID); err != nil {
		return nil, err
	}
	return created, nil
}

// ListBySpa returns a spa's leads, newest first.
func (r *InMemoryRepository) ListBySpa(ctx context.Context, spaID string) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Lead
	for _, lead := range r.leads {
		if lead.SpaID == spaID {
			copied := *lead
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
