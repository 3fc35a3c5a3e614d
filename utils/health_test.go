package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthStatusHealthy(t *testing.T) {
	checked := time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC)

	assert.False(t, HealthStatus{}.Healthy(), "never checked")
	assert.True(t, HealthStatus{Mongo: true, Redis: map[string]bool{"geo": true, "cache": true}, CheckedAt: checked}.Healthy())
	assert.False(t, HealthStatus{Mongo: true, Redis: map[string]bool{"geo": true, "cache": false}, CheckedAt: checked}.Healthy())
	assert.False(t, HealthStatus{Mongo: false, CheckedAt: checked}.Healthy())
}
