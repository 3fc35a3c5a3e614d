package repository

import (
	locationRepo "propertyservices/database/repository/location"
	marketRepo "propertyservices/database/repository/market"
	providerRepo "propertyservices/database/repository/provider"
	quoteRepo "propertyservices/database/repository/quote"
	"propertyservices/models"
)

// ErrNotFound is wrapped by every repository when a keyed lookup has no match.
var ErrNotFound = models.ErrNotFound

// Re-export the ProviderRepository interface and constructors.
type ProviderRepository = providerRepo.ProviderRepository

// MemoryProviderRepo is the seedable in-process provider store.
type MemoryProviderRepo = providerRepo.MemoryProviderRepo

var (
	NewMongoProviderRepo  = providerRepo.NewMongoProviderRepo
	NewMemoryProviderRepo = providerRepo.NewMemoryProviderRepo
)

// Re-export the MarketRepository interface and constructors.
type MarketRepository = marketRepo.MarketRepository

// MemoryMarketRepo is the seedable in-process market store.
type MemoryMarketRepo = marketRepo.MemoryMarketRepo

var (
	NewMongoMarketRepo  = marketRepo.NewMongoMarketRepo
	NewMemoryMarketRepo = marketRepo.NewMemoryMarketRepo
)

// Re-export the LocationRepository interface and constructors.
type LocationRepository = locationRepo.LocationRepository

var (
	NewRedisLocationRepo  = locationRepo.NewRedisLocationRepo
	NewMemoryLocationRepo = locationRepo.NewMemoryLocationRepo
)

// Re-export the QuoteLog interface and constructors.
type QuoteLog = quoteRepo.QuoteLog

var (
	NewRedisQuoteLog  = quoteRepo.NewRedisQuoteLog
	NewMemoryQuoteLog = quoteRepo.NewMemoryQuoteLog
)
