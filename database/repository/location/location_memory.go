package locationRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"propertyservices/models"
	"propertyservices/services/geo"
)

// MemoryLocationRepo is an in-process LocationRepository with the same ordering guard as
// the Redis implementation.
type MemoryLocationRepo struct {
	mu   sync.RWMutex
	rows map[string]models.ServiceLocation
}

func NewMemoryLocationRepo(seed ...models.ServiceLocation) *MemoryLocationRepo {
	r := &MemoryLocationRepo{rows: make(map[string]models.ServiceLocation, len(seed))}
	for _, loc := range seed {
		r.rows[loc.ProviderID] = loc
	}
	return r
}

func (r *MemoryLocationRepo) Upsert(_ context.Context, loc models.ServiceLocation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.rows[loc.ProviderID]; ok && cur.LastUpdatedAt.After(loc.LastUpdatedAt) {
		return false, nil
	}
	r.rows[loc.ProviderID] = loc
	return true, nil
}

func (r *MemoryLocationRepo) Get(_ context.Context, providerID string) (*models.ServiceLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.rows[providerID]
	if !ok {
		return nil, fmt.Errorf("location for %s: %w", providerID, models.ErrNotFound)
	}
	return &loc, nil
}

func (r *MemoryLocationRepo) WithinRadius(_ context.Context, origin models.Location, radiusKm float64) ([]models.ServiceLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ServiceLocation, 0, len(r.rows))
	for _, loc := range r.rows {
		if geo.Haversine(origin, loc.Location) <= radiusKm {
			out = append(out, loc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out, nil
}

func (r *MemoryLocationRepo) RemoveStale(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, loc := range r.rows {
		if loc.LastUpdatedAt.Before(cutoff) {
			delete(r.rows, id)
			removed++
		}
	}
	return removed, nil
}
