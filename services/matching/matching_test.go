package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"propertyservices/config"
	"propertyservices/database/repository"
	"propertyservices/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 14:00 UTC, outside every peak and weekend window.
var testNow = time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC)

var origin = models.Location{Latitude: 30.0, Longitude: -97.0}

func north(lat float64) models.Location {
	return models.Location{Latitude: lat, Longitude: -97.0}
}

func freshRow(id string, loc models.Location) models.ServiceLocation {
	return models.ServiceLocation{ProviderID: id, Location: loc, IsAvailable: true, LastUpdatedAt: testNow.Add(-5 * time.Minute)}
}

func provider(id string, categories ...string) models.ServiceProvider {
	return models.ServiceProvider{
		ID:                id,
		RatingAverage:     4.0,
		CompletedJobs:     50,
		ServiceCategories: categories,
		ServiceRadiusKm:   15,
	}
}

func businessHours() config.ClockRange {
	return config.ClockRange{Start: 8 * 60, End: 18 * 60}
}

func TestLocateFiltersAndOrders(t *testing.T) {
	stale := freshRow("stale", north(30.01))
	stale.LastUpdatedAt = testNow.Add(-31 * time.Minute)
	offline := freshRow("offline", north(30.01))
	offline.IsAvailable = false

	rows := []models.ServiceLocation{
		freshRow("far", north(30.05)),
		freshRow("b-near", north(30.01)),
		freshRow("a-near", north(30.01)),
		freshRow("outside", north(30.5)),
		stale,
		offline,
	}

	got := Locate(origin, 10, rows, testNow, 30*time.Minute)
	require.Len(t, got, 3)
	assert.Equal(t, "a-near", got[0].ProviderID)
	assert.Equal(t, "b-near", got[1].ProviderID)
	assert.Equal(t, "far", got[2].ProviderID)
	assert.InDelta(t, 1.11, got[0].DistanceKm, 0.01)
}

func TestLocateRadiusIsExclusive(t *testing.T) {
	row := freshRow("edge", north(30.02))
	d := Locate(origin, 100, []models.ServiceLocation{row}, testNow, 30*time.Minute)[0].DistanceKm

	assert.Empty(t, Locate(origin, d, []models.ServiceLocation{row}, testNow, 30*time.Minute))
	assert.Len(t, Locate(origin, d+0.001, []models.ServiceLocation{row}, testNow, 30*time.Minute), 1)
}

func TestLocateFreshnessBoundary(t *testing.T) {
	row := freshRow("p", north(30.01))
	row.LastUpdatedAt = testNow.Add(-30 * time.Minute)
	assert.Len(t, Locate(origin, 10, []models.ServiceLocation{row}, testNow, 30*time.Minute), 1)
}

func TestFilterEligible(t *testing.T) {
	emergencyOK := provider("emergency-ok", "plumbing")
	emergencyOK.AcceptsEmergencyRequests = true
	candidates := []models.Candidate{
		{Provider: provider("cleaner", "cleaning")},
		{Provider: provider("plumber", "plumbing")},
		{Provider: emergencyOK},
	}

	got := FilterEligible(candidates, "plumbing", models.PriorityStandard, testNow, businessHours())
	require.Len(t, got, 2)
	assert.Equal(t, "plumber", got[0].Provider.ID)
	assert.Equal(t, "emergency-ok", got[1].Provider.ID)

	got = FilterEligible(candidates, "plumbing", models.PriorityEmergency, testNow, businessHours())
	require.Len(t, got, 1)
	assert.Equal(t, "emergency-ok", got[0].Provider.ID)
}

func TestAvailableAtDefaultHours(t *testing.T) {
	p := provider("p", "cleaning")
	day := func(h, m int) time.Time { return time.Date(2024, 1, 3, h, m, 0, 0, time.UTC) }

	assert.False(t, AvailableAt(&p, day(7, 59), businessHours()))
	assert.True(t, AvailableAt(&p, day(8, 0), businessHours()))
	assert.True(t, AvailableAt(&p, day(18, 0), businessHours()))
	assert.False(t, AvailableAt(&p, day(18, 1), businessHours()))
}

func TestAvailableAtWeeklySchedule(t *testing.T) {
	p := provider("p", "cleaning")
	p.AvailabilitySchedule = map[time.Weekday]models.DaySchedule{
		time.Wednesday: {Available: true, StartTime: "12:00", EndTime: "20:00"},
		time.Thursday:  {Available: false},
		time.Friday:    {Available: true},
	}

	wed := func(h int) time.Time { return time.Date(2024, 1, 3, h, 0, 0, 0, time.UTC) }
	assert.False(t, AvailableAt(&p, wed(9), businessHours()))
	assert.True(t, AvailableAt(&p, wed(19), businessHours()))

	thu := time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)
	assert.False(t, AvailableAt(&p, thu, businessHours()))

	fri := time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
	assert.True(t, AvailableAt(&p, fri, businessHours()), "missing times default to 08:00-18:00")

	sat := time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)
	assert.False(t, AvailableAt(&p, sat, businessHours()), "days absent from a schedule are unavailable")
}

func TestWithinServiceLimits(t *testing.T) {
	candidates := []models.Candidate{
		{Provider: provider("a"), Location: models.LocatedProvider{DistanceKm: 14.9}},
		{Provider: provider("b"), Location: models.LocatedProvider{DistanceKm: 15}},
		{Provider: provider("c"), Location: models.LocatedProvider{DistanceKm: 15.1}},
	}
	got := WithinServiceLimits(candidates, 15)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Provider.ID)
}

func TestBasicMatchScore(t *testing.T) {
	w := config.DefaultEngineConfig().Matching.Basic
	p := provider("p", "cleaning")
	p.RatingAverage = 4.5
	p.CompletedJobs = 150

	// 36 rating + 26 distance + 15 experience
	assert.Equal(t, 77.0, BasicMatchScore(&p, 2, w))

	p.CompletedJobs = 1000
	assert.Equal(t, 36.0+0+30, BasicMatchScore(&p, 20, w), "distance floors at zero, experience caps at 30")
}

func TestFullMatchScore(t *testing.T) {
	w := config.DefaultEngineConfig().Matching.Full
	p := provider("p", "plumbing")
	p.RatingAverage = 4.5
	p.CompletedJobs = 150
	p.AcceptsEmergencyRequests = true

	// 27 rating + 22 distance + 25 experience + 10 category + 10 emergency + 10 fresh
	assert.Equal(t, 104.0, FullMatchScore(&p, 2, "plumbing", models.PriorityEmergency, true, w))
	assert.Equal(t, 84.0, FullMatchScore(&p, 2, "plumbing", models.PriorityStandard, false, w))
	assert.Equal(t, 74.0, FullMatchScore(&p, 2, "cleaning", models.PriorityStandard, false, w))
}

func TestScoresAreRoundedToCents(t *testing.T) {
	w := config.DefaultEngineConfig().Matching.Basic
	p := provider("p")
	p.RatingAverage = 4.37

	// 34.96 rating + 27.532 distance + 5 experience
	assert.Equal(t, 67.49, BasicMatchScore(&p, 1.234, w))
}

func TestRankTieBreaks(t *testing.T) {
	results := []models.MatchResult{
		{ProviderID: "c", Score: 50, DistanceKm: 3},
		{ProviderID: "b", Score: 50, DistanceKm: 2},
		{ProviderID: "a", Score: 50, DistanceKm: 3},
		{ProviderID: "d", Score: 60, DistanceKm: 9},
	}
	got := Rank(results, 0)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ProviderID
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
	assert.Len(t, Rank(got, 2), 2)
}

type failingLocations struct{ repository.LocationRepository }

func (failingLocations) WithinRadius(context.Context, models.Location, float64) ([]models.ServiceLocation, error) {
	return nil, errors.New("redis down")
}

func newTestService(rows []models.ServiceLocation, providers ...models.ServiceProvider) *DefaultMatchingService {
	return &DefaultMatchingService{
		Locations: repository.NewMemoryLocationRepo(rows...),
		Providers: repository.NewMemoryProviderRepo(providers...),
		Markets:   repository.NewMemoryMarketRepo(),
		Config:    config.NewEngineStore(nil, nil),
		Now:       func() time.Time { return testNow },
	}
}

func TestFindMatchingProviders(t *testing.T) {
	var rows []models.ServiceLocation
	var providers []models.ServiceProvider
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("p%d", i)
		rows = append(rows, freshRow(id, north(30.0+float64(i+1)*0.01)))
		providers = append(providers, provider(id, "cleaning"))
	}
	// Offers another service only.
	rows = append(rows, freshRow("gardener", north(30.001)))
	providers = append(providers, provider("gardener", "landscaping"))

	svc := newTestService(rows, providers...)
	got, err := svc.FindMatchingProviders(context.Background(), MatchRequest{
		Property:    models.PropertyLocation{Location: origin, PropertyType: models.PropertyRental},
		ServiceType: "cleaning",
		RequestedAt: testNow,
		Priority:    models.PriorityStandard,
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "p0", got[0].ProviderID)
	assert.Equal(t, 1.11, got[0].DistanceKm)
	assert.Equal(t, 15, got[0].EstimatedArrivalMinutes)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestFindMatchingProvidersHonoursMarketTimezone(t *testing.T) {
	rows := []models.ServiceLocation{freshRow("p", north(30.01))}
	svc := newTestService(rows, provider("p", "cleaning"))
	markets := repository.NewMemoryMarketRepo()
	require.NoError(t, markets.UpsertMarket(context.Background(), &models.Market{ID: "austin", Timezone: "America/Chicago"}))
	svc.Markets = markets

	// 20:00 UTC is 14:00 in Chicago, inside default hours.
	late := time.Date(2024, 1, 3, 20, 0, 0, 0, time.UTC)
	req := MatchRequest{
		Property:    models.PropertyLocation{Location: origin, PropertyType: models.PropertyRental, MarketID: "austin"},
		ServiceType: "cleaning",
		RequestedAt: late,
	}
	got, err := svc.FindMatchingProviders(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	req.Property.MarketID = ""
	got, err = svc.FindMatchingProviders(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindMatchingProvidersEmptyIsNotAnError(t *testing.T) {
	svc := newTestService(nil)
	got, err := svc.FindMatchingProviders(context.Background(), MatchRequest{
		Property:    models.PropertyLocation{Location: origin},
		ServiceType: "cleaning",
		RequestedAt: testNow,
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindMatchingProvidersRejectsInvalidInput(t *testing.T) {
	svc := newTestService(nil)
	cases := map[string]MatchRequest{
		"latitude":     {Property: models.PropertyLocation{Location: models.Location{Latitude: 91}}, ServiceType: "cleaning"},
		"service type": {Property: models.PropertyLocation{Location: origin}, ServiceType: "juggling"},
		"priority":     {Property: models.PropertyLocation{Location: origin}, ServiceType: "cleaning", Priority: "asap"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.FindMatchingProviders(context.Background(), req)
			var verr *models.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestFindMatchingProvidersWrapsRepositoryFailure(t *testing.T) {
	svc := newTestService(nil)
	svc.Locations = failingLocations{}
	_, err := svc.FindMatchingProviders(context.Background(), MatchRequest{
		Property:    models.PropertyLocation{Location: origin},
		ServiceType: "cleaning",
		RequestedAt: testNow,
	})
	var merr *MatchError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "LOCATION_LOOKUP_FAILED", merr.Code)
}

func TestDiscoverProviders(t *testing.T) {
	rows := []models.ServiceLocation{
		freshRow("near", north(30.01)),
		freshRow("mid", north(30.05)),
		freshRow("beyond-default", north(30.12)),
	}
	svc := newTestService(rows,
		provider("near", "cleaning"),
		provider("mid", "landscaping"),
		provider("beyond-default", "cleaning"))

	got, err := svc.DiscoverProviders(context.Background(), DiscoveryQuery{Origin: origin})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].ProviderID)

	got, err = svc.DiscoverProviders(context.Background(), DiscoveryQuery{Origin: origin, RadiusKm: 20, ServiceType: "cleaning"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "beyond-default", got[1].ProviderID)
	assert.Equal(t, 27, got[1].EstimatedArrivalMinutes)

	_, err = svc.DiscoverProviders(context.Background(), DiscoveryQuery{Origin: origin, RadiusKm: 51})
	assert.Error(t, err)
}

func TestCountProviders(t *testing.T) {
	rows := []models.ServiceLocation{freshRow("a", north(30.01)), freshRow("b", north(30.02))}
	svc := newTestService(rows, provider("a", "cleaning"), provider("b", "plumbing"))

	n, err := svc.CountProviders(context.Background(), origin, 10, "cleaning")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
