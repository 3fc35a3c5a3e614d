package quoteRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"propertyservices/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// QuoteLog keeps recent proximity samples for analytics.
type QuoteLog interface {
	Record(ctx context.Context, sample models.QuoteSample) error
	// Since returns samples created at or after t, oldest first.
	Since(ctx context.Context, t time.Time) ([]models.QuoteSample, error)
}

const quoteKey = "quotes:proximity"

// RedisQuoteLog stores samples in a sorted set scored by creation time. Entries older than
// retention are trimmed on write.
type RedisQuoteLog struct {
	client    *redis.Client
	retention time.Duration
	logger    *zap.Logger
}

func NewRedisQuoteLog(client *redis.Client, retention time.Duration, logger *zap.Logger) *RedisQuoteLog {
	return &RedisQuoteLog{client: client, retention: retention, logger: logger}
}

func (l *RedisQuoteLog) Record(ctx context.Context, sample models.QuoteSample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to encode quote sample: %w", err)
	}
	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, quoteKey, &redis.Z{Score: float64(sample.CreatedAt.UnixMilli()), Member: payload})
	cutoff := sample.CreatedAt.Add(-l.retention).UnixMilli()
	pipe.ZRemRangeByScore(ctx, quoteKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record quote sample: %w", err)
	}
	return nil
}

func (l *RedisQuoteLog) Since(ctx context.Context, t time.Time) ([]models.QuoteSample, error) {
	raws, err := l.client.ZRangeByScore(ctx, quoteKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(t.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read quote samples: %w", err)
	}
	return decodeSamples(raws, l.logger), nil
}

// decodeSamples drops entries that do not decode, logging each one.
func decodeSamples(raws []string, logger *zap.Logger) []models.QuoteSample {
	samples := make([]models.QuoteSample, 0, len(raws))
	for _, raw := range raws {
		var s models.QuoteSample
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			logger.Warn("Skipping undecodable quote sample",
				zap.String("key", quoteKey),
				zap.Int("bytes", len(raw)),
				zap.Error(err))
			continue
		}
		samples = append(samples, s)
	}
	return samples
}

// MemoryQuoteLog is an in-process QuoteLog.
type MemoryQuoteLog struct {
	mu      sync.Mutex
	samples []models.QuoteSample
}

func NewMemoryQuoteLog() *MemoryQuoteLog {
	return &MemoryQuoteLog{}
}

func (l *MemoryQuoteLog) Record(_ context.Context, sample models.QuoteSample) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = append(l.samples, sample)
	return nil
}

func (l *MemoryQuoteLog) Since(_ context.Context, t time.Time) ([]models.QuoteSample, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.QuoteSample, 0, len(l.samples))
	for _, s := range l.samples {
		if !s.CreatedAt.Before(t) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
