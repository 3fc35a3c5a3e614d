package providerRepo

import (
	"testing"
	"time"

	"propertyservices/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestProviderDocumentDecoding(t *testing.T) {
	stored := bson.M{
		"id":                       "p1",
		"name":                     "Sparkle Co",
		"ratingAverage":            4.7,
		"totalReviews":             31,
		"completedJobs":            88,
		"serviceCategories":        bson.A{"cleaning", "laundry"},
		"acceptsEmergencyRequests": true,
		"baseHourlyRate":           42.5,
		"availabilitySchedule": bson.M{
			"1": bson.M{"available": true, "startTime": "09:00", "endTime": "17:00"},
			"6": bson.M{"available": false},
		},
		"serviceRadiusKm": 20.0,
	}
	raw, err := bson.Marshal(stored)
	require.NoError(t, err)

	var doc providerDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.toModel()
	assert.Equal(t, "42.5", got.BaseHourlyRate.String())
	assert.Equal(t, map[time.Weekday]models.DaySchedule{
		time.Monday:   {Available: true, StartTime: "09:00", EndTime: "17:00"},
		time.Saturday: {Available: false},
	}, got.AvailabilitySchedule)
	assert.Equal(t, []string{"cleaning", "laundry"}, got.ServiceCategories)
	assert.True(t, got.AcceptsEmergencyRequests)
	assert.Equal(t, 88, got.CompletedJobs)
	assert.Equal(t, 20.0, got.ServiceRadiusKm)
}

func TestProviderDocumentSkipsUnknownWeekdays(t *testing.T) {
	doc := providerDocument{
		ID: "p1",
		AvailabilitySchedule: map[string]models.DaySchedule{
			"2":   {Available: true},
			"7":   {Available: true},
			"wed": {Available: true},
		},
	}
	got := doc.toModel()
	assert.Len(t, got.AvailabilitySchedule, 1)
	assert.Contains(t, got.AvailabilitySchedule, time.Tuesday)
	assert.Nil(t, got.BaseHourlyRate)
}
