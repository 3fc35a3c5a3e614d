package locationRepo

import (
	"context"
	"time"

	"propertyservices/models"
)

// LocationRepository keeps one live ServiceLocation per provider.
type LocationRepository interface {
	// Upsert stores loc keyed by provider id. A report older than the stored one is ignored
	// and Upsert returns false.
	Upsert(ctx context.Context, loc models.ServiceLocation) (bool, error)
	// Get returns models.ErrNotFound when the provider never reported.
	Get(ctx context.Context, providerID string) (*models.ServiceLocation, error)
	// WithinRadius returns rows at most radiusKm from origin, unfiltered by availability or
	// freshness. Implementations may over-fetch slightly; callers filter exactly.
	WithinRadius(ctx context.Context, origin models.Location, radiusKm float64) ([]models.ServiceLocation, error)
	// RemoveStale deletes rows last updated before cutoff and returns how many were removed.
	RemoveStale(ctx context.Context, cutoff time.Time) (int, error)
}
