package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"propertyservices/config"
	"propertyservices/database/repository"
	"propertyservices/models"
	"propertyservices/services/location"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (c *captureEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

var now = time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC)

func newLocationService() *location.DefaultLocationService {
	return &location.DefaultLocationService{
		Locations: repository.NewMemoryLocationRepo(),
		Config:    config.NewEngineStore(nil, nil),
		Now:       func() time.Time { return now },
	}
}

func TestEnqueueThenHandleLocationReport(t *testing.T) {
	q := &captureEnqueuer{}
	req := location.ReportRequest{
		ProviderID:  "p1",
		Location:    models.Location{Latitude: 30.0, Longitude: -97.0},
		IsAvailable: true,
		ReportedAt:  now.Add(-time.Minute),
	}
	require.NoError(t, EnqueueLocationReport(context.Background(), q, req))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeLocationReport, q.tasks[0].Type())

	svc := newLocationService()
	handler := HandleLocationReport(svc, zap.NewNop())
	require.NoError(t, handler(context.Background(), q.tasks[0]))

	stored, err := svc.Locations.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)
	assert.True(t, stored.LastUpdatedAt.Equal(now.Add(-time.Minute)))
}

func TestEnqueueRejectsInvalidReport(t *testing.T) {
	q := &captureEnqueuer{}
	err := EnqueueLocationReport(context.Background(), q, location.ReportRequest{ProviderID: "p1", Location: models.Location{Latitude: 95}})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, q.tasks)
}

func TestEnqueueFailure(t *testing.T) {
	q := &captureEnqueuer{err: errors.New("redis down")}
	err := EnqueueLocationReport(context.Background(), q, location.ReportRequest{ProviderID: "p1"})
	assert.ErrorContains(t, err, "redis down")
}

func TestHandleLocationReportSkipsRetryOnBadPayload(t *testing.T) {
	handler := HandleLocationReport(newLocationService(), zap.NewNop())

	err := handler(context.Background(), asynq.NewTask(TypeLocationReport, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	b, _ := json.Marshal(LocationReportPayload{ProviderID: "", Latitude: 1, Longitude: 1})
	err = handler(context.Background(), asynq.NewTask(TypeLocationReport, b))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleLocationSweep(t *testing.T) {
	svc := newLocationService()
	ctx := context.Background()
	_, err := svc.Locations.Upsert(ctx, models.ServiceLocation{ProviderID: "old", LastUpdatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	require.NoError(t, HandleLocationSweep(svc, zap.NewNop())(ctx, NewLocationSweepTask()))
	_, err = svc.Locations.Get(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type polarRejectingLocations struct{ repository.LocationRepository }

func (polarRejectingLocations) Upsert(context.Context, models.ServiceLocation) (bool, error) {
	return false, models.NewValidationError("latitude", "outside the geo index")
}

func TestHandleLocationReportSkipsRetryOnStoreRejection(t *testing.T) {
	svc := newLocationService()
	svc.Locations = polarRejectingLocations{}
	handler := HandleLocationReport(svc, zap.NewNop())

	b, _ := json.Marshal(LocationReportPayload{ProviderID: "p1", Latitude: 89, Longitude: 1, ReportedAt: now})
	err := handler(context.Background(), asynq.NewTask(TypeLocationReport, b))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
