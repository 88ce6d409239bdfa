package spas

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for spa config storage
type Repository interface {
	Create(ctx context.Context, spa *Spa) (*Spa, error)
	GetBySpaID(ctx context.Context, spaID string) (*Spa, error)
	List(ctx context.Context) ([]*Spa, error)
	Update(ctx context.Context, spa *Spa) (*Spa, error)
	Delete(ctx context.Context, spaID string) error
	IncrementLeads(ctx context.Context, spaID string) error
}

// InMemoryRepository is a Repository backed by a map, used in tests and
// local development without Postgres.
type InMemoryRepository struct {
	mu   sync.RWMutex
	spas map[string]*Spa
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{spas: make(map[string]*Spa)}
}

// Create stores a new spa.
func (r *InMemoryRepository) Create(ctx context.Context, spa *Spa) (*Spa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spas[spa.SpaID]; ok {
		return nil, ErrDuplicateSpaID
	}

	copied := *spa
	copied.Normalize()
	now := time.Now().UTC()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.spas[copied.SpaID] = &copied

	out := copied
	return &out, nil
}

// GetBySpaID retrieves a spa by its tenant id.
func (r *InMemoryRepository) GetBySpaID(ctx context.Context, spaID string) (*Spa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spa, ok := r.spas[spaID]
	if !ok {
		return nil, ErrSpaNotFound
	}
	out := *spa
	out.Normalize()
	return &out, nil
}

// List returns all spas, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Spa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Spa, 0, len(r.spas))
	for _, spa := range r.spas {
		copied := *spa
		copied.Normalize()
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update replaces an existing spa's config, preserving the lead counter.
func (r *InMemoryRepository) Update(ctx context.Context, spa *Spa) (*Spa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.spas[spa.SpaID]
	if !ok {
		return nil, ErrSpaNotFound
	}

	copied := *spa
	copied.Normalize()
	copied.TotalLeads = existing.TotalLeads
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now().UTC()
	r.spas[copied.SpaID] = &copied

	out := copied
	return &out, nil
}

// Delete removes a spa.
func (r *InMemoryRepository) Delete(ctx context.Context, spaID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spas[spaID]; !ok {
		return ErrSpaNotFound
	}
	delete(r.spas, spaID)
	return nil
}

// IncrementLeads bumps the informational lead counter.
func (r *InMemoryRepository) IncrementLeads(ctx context.Context, spaID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spa, ok := r.spas[spaID]
	if !ok {
		return ErrSpaNotFound
	}
	spa.TotalLeads++
	return nil
}
