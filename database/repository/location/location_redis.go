package locationRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"propertyservices/models"

	"github.com/go-redis/redis/v8"
)

const (
	geoKey       = "locations:geo"
	docKey       = "locations:doc"
	updatedAtKey = "locations:updated"

	// radiusPadding covers the difference between Redis' geohash distance and haversine.
	radiusPadding = 1.01

	// maxGeoLatitude is the GEOADD limit of the Web Mercator projection.
	maxGeoLatitude = 85.05112878
)

// upsertScript applies a report only when it is not older than the stored one. GEOADD runs
// first so a rejected coordinate leaves no hash entries behind.
// KEYS: geo, doc, updated. ARGV: id, updatedAtMillis, json, lon, lat.
const upsertSource = `
local cur = redis.call('HGET', KEYS[3], ARGV[1])
if cur and tonumber(cur) > tonumber(ARGV[2]) then
  return 0
end
redis.call('GEOADD', KEYS[1], ARGV[4], ARGV[5], ARGV[1])
redis.call('HSET', KEYS[3], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[3])
return 1
`

var upsertScript = redis.NewScript(upsertSource)

// sweepScript removes every row updated before ARGV[1] (unix millis).
var sweepScript = redis.NewScript(`
local all = redis.call('HGETALL', KEYS[3])
local removed = 0
for i = 1, #all, 2 do
  if tonumber(all[i + 1]) < tonumber(ARGV[1]) then
    redis.call('HDEL', KEYS[3], all[i])
    redis.call('HDEL', KEYS[2], all[i])
    redis.call('ZREM', KEYS[1], all[i])
    removed = removed + 1
  end
end
return removed
`)

// RedisLocationRepo keeps live locations in a GEO index plus a JSON hash.
type RedisLocationRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisLocationRepo namespaces its keys with prefix, which may be empty.
func NewRedisLocationRepo(client *redis.Client, prefix string) *RedisLocationRepo {
	return &RedisLocationRepo{client: client, prefix: prefix}
}

func (r *RedisLocationRepo) keys() []string {
	return []string{r.prefix + geoKey, r.prefix + docKey, r.prefix + updatedAtKey}
}

// Upsert rejects latitudes the GEO index cannot store with a ValidationError.
func (r *RedisLocationRepo) Upsert(ctx context.Context, loc models.ServiceLocation) (bool, error) {
	if lat := loc.Location.Latitude; math.Abs(lat) > maxGeoLatitude {
		return false, models.NewValidationError("latitude", "must be between -%v and %v for live tracking, got %v",
			maxGeoLatitude, maxGeoLatitude, lat)
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		return false, fmt.Errorf("failed to encode location for %s: %w", loc.ProviderID, err)
	}
	applied, err := upsertScript.Run(ctx, r.client, r.keys(),
		loc.ProviderID,
		loc.LastUpdatedAt.UnixMilli(),
		string(payload),
		strconv.FormatFloat(loc.Location.Longitude, 'f', -1, 64),
		strconv.FormatFloat(loc.Location.Latitude, 'f', -1, 64),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to upsert location for %s: %w", loc.ProviderID, err)
	}
	return applied == 1, nil
}

func (r *RedisLocationRepo) Get(ctx context.Context, providerID string) (*models.ServiceLocation, error) {
	raw, err := r.client.HGet(ctx, r.prefix+docKey, providerID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("location for %s: %w", providerID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read location for %s: %w", providerID, err)
	}
	var loc models.ServiceLocation
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, fmt.Errorf("failed to decode location for %s: %w", providerID, err)
	}
	return &loc, nil
}

func (r *RedisLocationRepo) WithinRadius(ctx context.Context, origin models.Location, radiusKm float64) ([]models.ServiceLocation, error) {
	hits, err := r.client.GeoRadius(ctx, r.prefix+geoKey, origin.Longitude, origin.Latitude, &redis.GeoRadiusQuery{
		Radius: radiusKm * radiusPadding,
		Unit:   "km",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo radius query failed: %w", err)
	}
	if len(hits) == 0 {
		return []models.ServiceLocation{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.Name
	}
	raws, err := r.client.HMGet(ctx, r.prefix+docKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read locations: %w", err)
	}

	rows := make([]models.ServiceLocation, 0, len(raws))
	for i, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			// Swept between the two calls.
			continue
		}
		var loc models.ServiceLocation
		if err := json.Unmarshal([]byte(s), &loc); err != nil {
			return nil, fmt.Errorf("failed to decode location for %s: %w", ids[i], err)
		}
		rows = append(rows, loc)
	}
	return rows, nil
}

func (r *RedisLocationRepo) RemoveStale(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := sweepScript.Run(ctx, r.client, r.keys(), cutoff.UnixMilli()).Int()
	if err != nil {
		return 0, fmt.Errorf("stale location sweep failed: %w", err)
	}
	return removed, nil
}
