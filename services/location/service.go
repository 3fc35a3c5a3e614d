package location

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propertyservices/config"
	"propertyservices/database/repository"
	"propertyservices/models"
	"propertyservices/observability"

	"go.uber.org/zap"
)

// Report outcomes, also used as metric labels.
const (
	ResultApplied = "applied"
	ResultIgnored = "ignored"
	ResultFailed  = "failed"
)

// ReportRequest is one position report from a provider. A zero ReportedAt means now.
type ReportRequest struct {
	ProviderID  string          `json:"providerId"`
	Location    models.Location `json:"location"`
	IsAvailable bool            `json:"isAvailable"`
	ReportedAt  time.Time       `json:"reportedAt"`
}

// Validate checks the provider id and coordinates.
func (r ReportRequest) Validate() error {
	if strings.TrimSpace(r.ProviderID) == "" {
		return models.NewValidationError("providerId", "is required")
	}
	return r.Location.Validate()
}

// ReportResult tells whether the report replaced the stored location. Reports older than the
// stored one are ignored.
type ReportResult struct {
	Applied  bool                   `json:"applied"`
	Location models.ServiceLocation `json:"location"`
}

type LocationService interface {
	Report(ctx context.Context, req ReportRequest) (*ReportResult, error)
	// SweepStale removes locations older than the freshness window.
	SweepStale(ctx context.Context) (int, error)
}

type DefaultLocationService struct {
	Locations repository.LocationRepository
	Config    *config.EngineStore
	Metrics   *observability.EngineCollector
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *DefaultLocationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultLocationService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultLocationService) Report(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	reportedAt := req.ReportedAt
	if reportedAt.IsZero() || reportedAt.After(now) {
		reportedAt = now
	}

	loc := models.ServiceLocation{
		ProviderID:    req.ProviderID,
		Location:      req.Location,
		IsAvailable:   req.IsAvailable,
		LastUpdatedAt: reportedAt.UTC(),
	}
	applied, err := s.Locations.Upsert(ctx, loc)
	if err != nil {
		s.Metrics.ObserveLocationReport(ResultFailed)
		return nil, fmt.Errorf("failed to store location for provider %s: %w", req.ProviderID, err)
	}

	result := ResultApplied
	if !applied {
		result = ResultIgnored
		s.logger().Debug("Ignored out-of-order location report",
			zap.String("providerId", req.ProviderID),
			zap.Time("reportedAt", reportedAt))
	}
	s.Metrics.ObserveLocationReport(result)
	return &ReportResult{Applied: applied, Location: loc}, nil
}

func (s *DefaultLocationService) SweepStale(ctx context.Context) (int, error) {
	window := s.Config.Current().Matching.FreshnessWindow
	cutoff := s.now().Add(-window)
	removed, err := s.Locations.RemoveStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale locations: %w", err)
	}
	s.logger().Info("Swept stale provider locations",
		zap.Int("removed", removed),
		zap.Time("cutoff", cutoff))
	return removed, nil
}
