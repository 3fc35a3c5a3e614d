package providerRepo

import (
	"context"
	"fmt"
	"sync"

	"propertyservices/models"
)

// MemoryProviderRepo is an in-process ProviderRepository for tests and local runs.
type MemoryProviderRepo struct {
	mu        sync.RWMutex
	providers map[string]models.ServiceProvider
}

func NewMemoryProviderRepo(seed ...models.ServiceProvider) *MemoryProviderRepo {
	r := &MemoryProviderRepo{providers: make(map[string]models.ServiceProvider, len(seed))}
	for _, p := range seed {
		r.providers[p.ID] = p
	}
	return r
}

func (r *MemoryProviderRepo) GetByID(_ context.Context, id string) (*models.ServiceProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (r *MemoryProviderRepo) GetByIDs(_ context.Context, ids []string) ([]models.ServiceProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ServiceProvider, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.providers[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Upsert seeds or replaces a provider keyed by ID.
func (r *MemoryProviderRepo) Upsert(_ context.Context, provider *models.ServiceProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.ID] = *provider
	return nil
}
