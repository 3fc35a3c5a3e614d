package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"propertyservices/config"
	"propertyservices/database/repository"
	"propertyservices/models"
	"propertyservices/observability"
	"propertyservices/services/geo"

	"go.uber.org/zap"
)

// MatchError reports a matching failure caused by a collaborator.
type MatchError struct {
	Code    string
	Message string
	Err     error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// MatchRequest is the input of the full matching flow.
type MatchRequest struct {
	Property    models.PropertyLocation
	ServiceType string
	RequestedAt time.Time
	Priority    models.Priority
}

// DiscoveryQuery is the input of the nearby-providers flow. RadiusKm zero means the
// configured discovery radius.
type DiscoveryQuery struct {
	Origin      models.Location
	RadiusKm    float64
	ServiceType string
}

// MatchingService finds and ranks providers for a property.
type MatchingService interface {
	FindMatchingProviders(ctx context.Context, req MatchRequest) ([]models.MatchResult, error)
	DiscoverProviders(ctx context.Context, q DiscoveryQuery) ([]models.MatchResult, error)
	// CountProviders counts fresh, available providers offering serviceType within radiusKm.
	CountProviders(ctx context.Context, origin models.Location, radiusKm float64, serviceType string) (int, error)
}

// DefaultMatchingService implements MatchingService over the location and provider stores.
type DefaultMatchingService struct {
	Locations repository.LocationRepository
	Providers repository.ProviderRepository
	Markets   repository.MarketRepository
	Config    *config.EngineStore
	Metrics   *observability.EngineCollector
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *DefaultMatchingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultMatchingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// FindMatchingProviders runs locate, filter, score and rank for one request and returns at
// most the configured match limit. No candidates is an empty list, not an error.
func (s *DefaultMatchingService) FindMatchingProviders(ctx context.Context, req MatchRequest) ([]models.MatchResult, error) {
	cfg := s.Config.Current()
	if err := req.Property.Location.Validate(); err != nil {
		return nil, err
	}
	if _, ok := cfg.ServiceType(req.ServiceType); !ok {
		return nil, models.NewValidationError("serviceType", "unknown service type %q", req.ServiceType)
	}
	priority, err := models.ParsePriority(string(req.Priority))
	if err != nil {
		return nil, err
	}

	limits := cfg.ServiceTypeAdjustment(req.ServiceType)
	radius := math.Min(cfg.ProximitySettings.DefaultRadiusKm, limits.MaxDistanceKm)

	candidates, err := s.candidates(ctx, req.Property.Location, radius)
	if err != nil {
		return nil, err
	}

	market := s.market(ctx, req.Property.MarketID)
	localTime := market.LocalTime(req.RequestedAt)

	eligible := FilterEligible(candidates, req.ServiceType, priority, localTime, defaultHours(cfg))
	eligible = WithinServiceLimits(eligible, limits.MaxDistanceKm)
	s.Metrics.ObserveMatch(len(eligible))

	now := s.now()
	m := cfg.Matching
	results := make([]models.MatchResult, 0, len(eligible))
	for _, c := range eligible {
		fresh := c.Location.IsFresh(now, m.FreshnessWindow)
		results = append(results, models.MatchResult{
			ProviderID:              c.Provider.ID,
			Score:                   FullMatchScore(&c.Provider, c.Location.DistanceKm, req.ServiceType, priority, fresh, m.Full),
			DistanceKm:              geo.Round(c.Location.DistanceKm, 2),
			EstimatedArrivalMinutes: geo.EstimateArrivalMinutes(c.Location.DistanceKm, m.MatchSpeedKmh, m.MinArrivalMinutes),
		})
	}

	ranked := Rank(results, m.MatchLimit)
	s.logger().Debug("Matched providers",
		zap.String("serviceType", req.ServiceType),
		zap.String("priority", string(priority)),
		zap.Float64("radiusKm", radius),
		zap.Int("located", len(candidates)),
		zap.Int("eligible", len(eligible)),
		zap.Int("returned", len(ranked)))
	return ranked, nil
}

// DiscoverProviders lists nearby providers by basic score, optionally restricted to one
// service type.
func (s *DefaultMatchingService) DiscoverProviders(ctx context.Context, q DiscoveryQuery) ([]models.MatchResult, error) {
	cfg := s.Config.Current()
	if err := q.Origin.Validate(); err != nil {
		return nil, err
	}
	radius := q.RadiusKm
	if radius == 0 {
		radius = cfg.Matching.DiscoveryRadiusKm
	}
	if radius <= 0 || radius > cfg.ProximitySettings.MaxRadiusKm {
		return nil, models.NewValidationError("radius", "must be greater than 0 and at most %v km", cfg.ProximitySettings.MaxRadiusKm)
	}

	candidates, err := s.candidates(ctx, q.Origin, radius)
	if err != nil {
		return nil, err
	}

	m := cfg.Matching
	results := make([]models.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		if q.ServiceType != "" && !c.Provider.OffersService(q.ServiceType) {
			continue
		}
		results = append(results, models.MatchResult{
			ProviderID:              c.Provider.ID,
			Score:                   BasicMatchScore(&c.Provider, c.Location.DistanceKm, m.Basic),
			DistanceKm:              geo.Round(c.Location.DistanceKm, 2),
			EstimatedArrivalMinutes: geo.EstimateArrivalMinutes(c.Location.DistanceKm, m.DiscoverySpeedKmh, m.MinArrivalMinutes),
		})
	}
	return Rank(results, m.DiscoveryLimit), nil
}

func (s *DefaultMatchingService) CountProviders(ctx context.Context, origin models.Location, radiusKm float64, serviceType string) (int, error) {
	candidates, err := s.candidates(ctx, origin, radiusKm)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range candidates {
		if serviceType == "" || c.Provider.OffersService(serviceType) {
			n++
		}
	}
	return n, nil
}

// candidates locates fresh, available providers strictly within radiusKm and joins their
// detail snapshots.
func (s *DefaultMatchingService) candidates(ctx context.Context, origin models.Location, radiusKm float64) ([]models.Candidate, error) {
	cfg := s.Config.Current()
	rows, err := s.Locations.WithinRadius(ctx, origin, radiusKm)
	if err != nil {
		return nil, &MatchError{Code: "LOCATION_LOOKUP_FAILED", Message: "could not query provider locations", Err: err}
	}
	located := Locate(origin, radiusKm, rows, s.now(), cfg.Matching.FreshnessWindow)
	if len(located) == 0 {
		return []models.Candidate{}, nil
	}

	ids := make([]string, len(located))
	for i, lp := range located {
		ids[i] = lp.ProviderID
	}
	providers, err := s.Providers.GetByIDs(ctx, ids)
	if err != nil {
		return nil, &MatchError{Code: "PROVIDER_LOOKUP_FAILED", Message: "could not load provider details", Err: err}
	}
	if len(providers) < len(ids) {
		s.logger().Warn("Located providers without a provider record",
			zap.Int("located", len(ids)),
			zap.Int("found", len(providers)))
	}
	return JoinProviders(located, providers), nil
}

// market resolves the property's market for timezone purposes. A missing market leaves
// times unconverted.
func (s *DefaultMatchingService) market(ctx context.Context, marketID string) *models.Market {
	if marketID == "" || s.Markets == nil {
		return nil
	}
	m, err := s.Markets.GetByID(ctx, marketID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger().Warn("Market lookup failed, using request time as given",
				zap.String("marketId", marketID), zap.Error(err))
		}
		return nil
	}
	return m
}

func defaultHours(cfg *config.EngineConfig) config.ClockRange {
	r, err := config.ParseClockRange(cfg.Matching.DefaultScheduleStart + "-" + cfg.Matching.DefaultScheduleEnd)
	if err != nil {
		return config.ClockRange{Start: 8 * 60, End: 18 * 60}
	}
	return r
}
