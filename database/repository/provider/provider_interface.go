package providerRepo

import (
	"context"

	"propertyservices/models"
)

// ProviderRepository defines methods for provider data access. The engine only reads
// providers.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID. Returns models.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.ServiceProvider, error)
	// GetByIDs retrieves every known provider among ids. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]models.ServiceProvider, error)
}
