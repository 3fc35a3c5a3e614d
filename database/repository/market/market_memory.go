package marketRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"propertyservices/models"
	"propertyservices/services/geo"
)

// MemoryMarketRepo is an in-process MarketRepository. Membership uses ray casting over the
// stored polygons.
type MemoryMarketRepo struct {
	mu      sync.RWMutex
	markets map[string]models.Market
	areas   map[string]models.ServiceArea
}

func NewMemoryMarketRepo() *MemoryMarketRepo {
	return &MemoryMarketRepo{
		markets: make(map[string]models.Market),
		areas:   make(map[string]models.ServiceArea),
	}
}

func (r *MemoryMarketRepo) GetByID(_ context.Context, id string) (*models.Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markets[id]
	if !ok {
		return nil, fmt.Errorf("market %s: %w", id, models.ErrNotFound)
	}
	return &m, nil
}

func (r *MemoryMarketRepo) FindByLocation(ctx context.Context, loc models.Location) (*models.Market, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.areas))
	for id := range r.areas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var marketID string
	for _, id := range ids {
		a := r.areas[id]
		if a.IsActive && geo.PolygonContains(a.Boundary, loc) {
			marketID = a.MarketID
			break
		}
	}
	r.mu.RUnlock()

	if marketID == "" {
		return nil, fmt.Errorf("no service area at %.5f,%.5f: %w", loc.Latitude, loc.Longitude, models.ErrNotFound)
	}
	return r.GetByID(ctx, marketID)
}

// UpsertMarket seeds a market. Markets with negative rates or fees are rejected.
func (r *MemoryMarketRepo) UpsertMarket(_ context.Context, market *models.Market) error {
	if err := market.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markets[market.ID] = *market
	return nil
}

func (r *MemoryMarketRepo) UpsertServiceArea(_ context.Context, area *models.ServiceArea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.areas[area.ID] = *area
	return nil
}
