package locationRepo

import (
	"context"
	"testing"
	"time"

	"propertyservices/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC)

func row(id string, lat float64, age time.Duration) models.ServiceLocation {
	return models.ServiceLocation{
		ProviderID:    id,
		Location:      models.Location{Latitude: lat, Longitude: -97.0},
		IsAvailable:   true,
		LastUpdatedAt: now.Add(-age),
	}
}

func TestUpsertKeepsNewestReport(t *testing.T) {
	repo := NewMemoryLocationRepo()
	ctx := context.Background()

	applied, err := repo.Upsert(ctx, row("p1", 30.01, time.Minute))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.Upsert(ctx, row("p1", 30.05, 5*time.Minute))
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.Upsert(ctx, row("p1", 30.02, time.Minute))
	require.NoError(t, err)
	assert.True(t, applied, "an equal timestamp replaces the stored row")

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 30.02, got.Location.Latitude)
}

func TestWithinRadiusAndRemoveStale(t *testing.T) {
	repo := NewMemoryLocationRepo(
		row("near", 30.01, time.Minute),
		row("far", 30.5, time.Minute),
		row("old", 30.02, 3*time.Hour),
	)
	ctx := context.Background()
	origin := models.Location{Latitude: 30.0, Longitude: -97.0}

	rows, err := repo.WithinRadius(ctx, origin, 5)
	require.NoError(t, err)
	ids := []string{}
	for _, r := range rows {
		ids = append(ids, r.ProviderID)
	}
	assert.Equal(t, []string{"near", "old"}, ids)

	removed, err := repo.RemoveStale(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
