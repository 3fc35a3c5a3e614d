package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propertyservices/config"
	"propertyservices/database/repository"
	"propertyservices/models"
	"propertyservices/observability"
	"propertyservices/services/matching"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultAnalyticsWindow = 30 * 24 * time.Hour

// PriceRequest prices one service for a property. ProviderID and RequestedAt are optional;
// proximity pricing needs both and a reported provider location.
type PriceRequest struct {
	Property    models.PropertyLocation
	ServiceType string
	Priority    models.Priority
	ProviderID  string
	RequestedAt *time.Time
}

// TestCalculationRequest evaluates proximity pricing for ad-hoc coordinates.
type TestCalculationRequest struct {
	PropertyLocation models.Location
	ProviderLocation models.Location
	ServiceType      string
	RequestedAt      time.Time
	Priority         models.Priority
	MarketID         string
}

// TestCalculationResult is a proximity result with both explanation forms.
type TestCalculationResult struct {
	Result      models.ProximityResult      `json:"data"`
	Explanation string                      `json:"explanation"`
	Details     models.ProximityExplanation `json:"details"`
}

type PricingService interface {
	PriceService(ctx context.Context, req PriceRequest) (*models.PriceBreakdown, error)
	TestCalculation(ctx context.Context, req TestCalculationRequest) (*TestCalculationResult, error)
	// Analytics summarizes proximity samples recorded within window. Zero means 30 days.
	Analytics(ctx context.Context, window time.Duration) (*models.DistanceDistribution, error)
}

// DefaultPricingService implements PricingService. Matching is used for the provider count of
// the coverage bonus and may be nil, in which case no coverage bonus is computed.
type DefaultPricingService struct {
	Providers repository.ProviderRepository
	Locations repository.LocationRepository
	Markets   repository.MarketRepository
	Quotes    repository.QuoteLog
	Matching  matching.MatchingService
	Config    *config.EngineStore
	Metrics   *observability.EngineCollector
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *DefaultPricingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultPricingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// PriceService composes the customer price and, when a provider is priced with proximity,
// the provider bonus.
func (s *DefaultPricingService) PriceService(ctx context.Context, req PriceRequest) (*models.PriceBreakdown, error) {
	cfg := s.Config.Current()
	if err := req.Property.Validate(); err != nil {
		return nil, err
	}
	if _, ok := cfg.ServiceType(req.ServiceType); !ok {
		return nil, models.NewValidationError("serviceType", "unknown service type %q", req.ServiceType)
	}
	priority, err := models.ParsePriority(string(req.Priority))
	if err != nil {
		return nil, err
	}

	market, err := s.resolveMarket(ctx, req.Property)
	if err != nil {
		return nil, err
	}

	var provider *models.ServiceProvider
	if req.ProviderID != "" {
		provider, err = s.Providers.GetByID(ctx, req.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("failed to load provider %s: %w", req.ProviderID, err)
		}
	}

	var proximity *models.ProximityResult
	if provider != nil && req.RequestedAt != nil {
		proximity, err = s.proximityFor(ctx, cfg, req, market, provider, priority)
		if err != nil {
			return nil, err
		}
	}

	breakdown, err := ComposeCost(cfg, CostInput{
		Property:    req.Property,
		Market:      market,
		ServiceType: req.ServiceType,
		Priority:    priority,
		Provider:    provider,
		Proximity:   proximity,
	})
	if err != nil {
		return nil, err
	}
	breakdown.QuoteID = uuid.NewString()

	if provider != nil && proximity != nil {
		bonus := s.providerBonus(ctx, cfg, req, provider, proximity.DistanceKm, breakdown)
		breakdown.ProviderBonus = &bonus
		s.recordSample(ctx, breakdown.QuoteID, req.ServiceType, proximity)
	}

	s.Metrics.ObserveQuote(breakdown.Currency, breakdown.Details.MinimumFeeApplied, breakdown.Details.ProximityMultiplier)
	s.logger().Info("Priced service request",
		zap.String("quoteId", breakdown.QuoteID),
		zap.String("serviceType", req.ServiceType),
		zap.String("marketId", market.ID),
		zap.String("totalCost", breakdown.TotalCost.StringFixed(2)),
		zap.Float64("proximityMultiplier", breakdown.Details.ProximityMultiplier),
		zap.Bool("minimumFeeApplied", breakdown.Details.MinimumFeeApplied))
	return &breakdown, nil
}

func (s *DefaultPricingService) proximityFor(ctx context.Context, cfg *config.EngineConfig, req PriceRequest, market *models.Market, provider *models.ServiceProvider, priority models.Priority) (*models.ProximityResult, error) {
	loc, err := s.Locations.Get(ctx, provider.ID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger().Debug("Provider has no reported location, pricing without proximity",
			zap.String("providerId", provider.ID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load location of provider %s: %w", provider.ID, err)
	}
	result := CalculateProximityMultiplier(cfg, ProximityInput{
		Property:         req.Property,
		Market:           market,
		ProviderLocation: loc.Location,
		ServiceType:      req.ServiceType,
		RequestedAt:      *req.RequestedAt,
		Priority:         priority,
	})
	return &result, nil
}

func (s *DefaultPricingService) providerBonus(ctx context.Context, cfg *config.EngineConfig, req PriceRequest, provider *models.ServiceProvider, distanceKm float64, price models.PriceBreakdown) models.ProviderBonus {
	incentives := cfg.ProviderIncentives
	proximity := ProximityBonus(incentives.ProximityBonuses, distanceKm, price.ServiceCost)
	if s.Matching == nil {
		return TotalBonus(proximity, nil)
	}

	var coverage *models.CoverageBonus
	if !incentives.CoverageIncentives.Enabled {
		c := CoverageBonus(incentives.CoverageIncentives, provider.ServiceRadiusKm, 0, price.ServiceCost)
		coverage = &c
	} else {
		count, err := s.Matching.CountProviders(ctx, req.Property.Location, cfg.ProximitySettings.DefaultRadiusKm, req.ServiceType)
		if err != nil {
			s.logger().Warn("Provider count unavailable, skipping coverage bonus",
				zap.String("providerId", provider.ID), zap.Error(err))
		} else {
			c := CoverageBonus(incentives.CoverageIncentives, provider.ServiceRadiusKm, count, price.ServiceCost)
			coverage = &c
		}
	}
	return TotalBonus(proximity, coverage)
}

func (s *DefaultPricingService) recordSample(ctx context.Context, quoteID, serviceType string, r *models.ProximityResult) {
	if s.Quotes == nil {
		return
	}
	sample := models.QuoteSample{
		QuoteID:     quoteID,
		ServiceType: serviceType,
		DistanceKm:  r.DistanceKm,
		Multiplier:  r.Multiplier,
		CreatedAt:   s.now(),
	}
	if err := s.Quotes.Record(ctx, sample); err != nil {
		s.logger().Warn("Failed to record proximity sample", zap.String("quoteId", quoteID), zap.Error(err))
	}
}

// resolveMarket uses the property's market id, falling back to service-area membership.
func (s *DefaultPricingService) resolveMarket(ctx context.Context, p models.PropertyLocation) (*models.Market, error) {
	var (
		market *models.Market
		err    error
	)
	if p.MarketID != "" {
		market, err = s.Markets.GetByID(ctx, p.MarketID)
	} else {
		market, err = s.Markets.FindByLocation(ctx, p.Location)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoMarket
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve market: %w", err)
	}
	if err := market.Validate(); err != nil {
		return nil, err
	}
	return market, nil
}

func (s *DefaultPricingService) TestCalculation(ctx context.Context, req TestCalculationRequest) (*TestCalculationResult, error) {
	cfg := s.Config.Current()
	if err := req.PropertyLocation.Validate(); err != nil {
		return nil, err
	}
	if err := req.ProviderLocation.Validate(); err != nil {
		return nil, err
	}
	if _, ok := cfg.ServiceType(req.ServiceType); !ok {
		return nil, models.NewValidationError("serviceType", "unknown service type %q", req.ServiceType)
	}
	priority, err := models.ParsePriority(string(req.Priority))
	if err != nil {
		return nil, err
	}
	if req.MarketID == "" {
		return nil, models.NewValidationError("marketId", "is required")
	}
	market, err := s.Markets.GetByID(ctx, req.MarketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load market %s: %w", req.MarketID, err)
	}

	result := CalculateProximityMultiplier(cfg, ProximityInput{
		Property:         models.PropertyLocation{Location: req.PropertyLocation, MarketID: market.ID},
		Market:           market,
		ProviderLocation: req.ProviderLocation,
		ServiceType:      req.ServiceType,
		RequestedAt:      req.RequestedAt,
		Priority:         priority,
	})
	return &TestCalculationResult{
		Result:      result,
		Explanation: ExplainProximity(result),
		Details:     ExplainProximityItems(result),
	}, nil
}

func (s *DefaultPricingService) Analytics(ctx context.Context, window time.Duration) (*models.DistanceDistribution, error) {
	if window <= 0 {
		window = defaultAnalyticsWindow
	}
	if s.Quotes == nil {
		dist := SummarizeDistances(nil)
		return &dist, nil
	}
	samples, err := s.Quotes.Since(ctx, s.now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to load proximity samples: %w", err)
	}
	dist := SummarizeDistances(samples)
	return &dist, nil
}
