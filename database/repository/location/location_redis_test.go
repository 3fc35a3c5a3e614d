package locationRepo

import (
	"context"
	"strings"
	"testing"
	"time"

	"propertyservices/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisUpsertRejectsPolarLatitude(t *testing.T) {
	// Never dialled: the report is rejected before any command is sent.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	repo := NewRedisLocationRepo(client, "test:")

	for _, lat := range []float64{85.1, -89.9, 90} {
		applied, err := repo.Upsert(context.Background(), models.ServiceLocation{
			ProviderID:    "p1",
			Location:      models.Location{Latitude: lat, Longitude: 10},
			LastUpdatedAt: time.Now(),
		})
		assert.False(t, applied)
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "latitude", verr.Field)
	}
}

func TestUpsertScriptIndexesBeforeWriting(t *testing.T) {
	geoadd := strings.Index(upsertSource, "GEOADD")
	hset := strings.Index(upsertSource, "HSET")
	assert.Positive(t, geoadd)
	assert.Less(t, geoadd, hset)
}
