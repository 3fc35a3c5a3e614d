package matching

import (
	"sort"
	"time"

	"propertyservices/models"
	"propertyservices/services/geo"
)

// Locate keeps the available, fresh locations strictly inside radiusKm of origin and
// annotates each with its distance. Results are ordered by ascending distance, then provider id.
func Locate(origin models.Location, radiusKm float64, rows []models.ServiceLocation, now time.Time, freshness time.Duration) []models.LocatedProvider {
	located := make([]models.LocatedProvider, 0, len(rows))
	for _, row := range rows {
		if !row.IsAvailable || !row.IsFresh(now, freshness) {
			continue
		}
		d := geo.Haversine(origin, row.Location)
		if d >= radiusKm {
			continue
		}
		located = append(located, models.LocatedProvider{ServiceLocation: row, DistanceKm: d})
	}
	sort.SliceStable(located, func(i, j int) bool {
		if located[i].DistanceKm != located[j].DistanceKm {
			return located[i].DistanceKm < located[j].DistanceKm
		}
		return located[i].ProviderID < located[j].ProviderID
	})
	return located
}

// JoinProviders pairs located rows with their provider snapshots. Rows whose provider is
// unknown are dropped; order is preserved.
func JoinProviders(located []models.LocatedProvider, providers []models.ServiceProvider) []models.Candidate {
	byID := make(map[string]models.ServiceProvider, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}
	candidates := make([]models.Candidate, 0, len(located))
	for _, lp := range located {
		p, ok := byID[lp.ProviderID]
		if !ok {
			continue
		}
		candidates = append(candidates, models.Candidate{Provider: p, Location: lp})
	}
	return candidates
}
