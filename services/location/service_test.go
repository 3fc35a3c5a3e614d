package location

import (
	"context"
	"testing"
	"time"

	"propertyservices/config"
	"propertyservices/database/repository"
	"propertyservices/models"
	"propertyservices/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*DefaultLocationService, *observability.EngineCollector) {
	t.Helper()
	metrics, err := observability.NewEngineCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	return &DefaultLocationService{
		Locations: repository.NewMemoryLocationRepo(),
		Config:    config.NewEngineStore(nil, nil),
		Metrics:   metrics,
		Now:       func() time.Time { return now },
	}, metrics
}

func TestReportOrderingGuard(t *testing.T) {
	svc, metrics := newService(t)
	ctx := context.Background()
	here := models.Location{Latitude: 30.0, Longitude: -97.0}
	there := models.Location{Latitude: 30.1, Longitude: -97.1}

	res, err := svc.Report(ctx, ReportRequest{ProviderID: "p1", Location: here, IsAvailable: true, ReportedAt: now.Add(-time.Minute)})
	require.NoError(t, err)
	assert.True(t, res.Applied)

	res, err = svc.Report(ctx, ReportRequest{ProviderID: "p1", Location: there, IsAvailable: true, ReportedAt: now.Add(-2 * time.Minute)})
	require.NoError(t, err)
	assert.False(t, res.Applied)

	stored, err := svc.Locations.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, here, stored.Location)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LocationReports.WithLabelValues(ResultApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LocationReports.WithLabelValues(ResultIgnored)))
}

func TestReportDefaultsTimestamp(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Report(context.Background(), ReportRequest{ProviderID: "p1", Location: models.Location{Latitude: 1, Longitude: 1}})
	require.NoError(t, err)
	assert.Equal(t, now, res.Location.LastUpdatedAt)

	res, err = svc.Report(context.Background(), ReportRequest{ProviderID: "p1", Location: models.Location{Latitude: 1, Longitude: 1}, ReportedAt: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, now, res.Location.LastUpdatedAt, "future timestamps are clamped to now")
}

func TestReportValidation(t *testing.T) {
	svc, _ := newService(t)
	var verr *models.ValidationError

	_, err := svc.Report(context.Background(), ReportRequest{Location: models.Location{Latitude: 1, Longitude: 1}})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Report(context.Background(), ReportRequest{ProviderID: "p1", Location: models.Location{Latitude: 1, Longitude: 200}})
	assert.ErrorAs(t, err, &verr)
}

func TestSweepStale(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	loc := models.Location{Latitude: 1, Longitude: 1}

	_, err := svc.Report(ctx, ReportRequest{ProviderID: "fresh", Location: loc, ReportedAt: now.Add(-10 * time.Minute)})
	require.NoError(t, err)
	_, err = svc.Report(ctx, ReportRequest{ProviderID: "stale", Location: loc, ReportedAt: now.Add(-2 * time.Hour)})
	require.NoError(t, err)

	removed, err := svc.SweepStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = svc.Locations.Get(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
