package marketRepo

import (
	"context"

	"propertyservices/models"
)

// MarketRepository resolves markets by id or by geographic membership.
type MarketRepository interface {
	// GetByID returns models.ErrNotFound when the market does not exist.
	GetByID(ctx context.Context, id string) (*models.Market, error)
	// FindByLocation returns the market of the first active service area containing loc,
	// or models.ErrNotFound.
	FindByLocation(ctx context.Context, loc models.Location) (*models.Market, error)
}
