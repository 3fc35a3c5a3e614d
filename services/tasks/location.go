package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"propertyservices/models"
	"propertyservices/services/location"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeLocationReport = "location:report"
	TypeLocationSweep  = "location:sweep"

	// QueueLocations carries position reports; the sweep runs on the default queue.
	QueueLocations = "locations"
)

// LocationReportPayload is the queued form of a provider position report.
type LocationReportPayload struct {
	ProviderID  string    `json:"providerId"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IsAvailable bool      `json:"isAvailable"`
	ReportedAt  time.Time `json:"reportedAt"`
}

func (p LocationReportPayload) request() location.ReportRequest {
	return location.ReportRequest{
		ProviderID:  p.ProviderID,
		Location:    models.Location{Latitude: p.Latitude, Longitude: p.Longitude},
		IsAvailable: p.IsAvailable,
		ReportedAt:  p.ReportedAt,
	}
}

// NewLocationReportTask builds a report task. ReportedAt must be set by the caller so that the
// ordering guard sees the time the provider reported, not the time the worker ran.
func NewLocationReportTask(payload LocationReportPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeLocationReport, b)
	opts := []asynq.Option{
		asynq.Queue(QueueLocations),
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

func NewLocationSweepTask() *asynq.Task {
	return asynq.NewTask(TypeLocationSweep, nil)
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueLocationReport queues a report for the worker.
func EnqueueLocationReport(ctx context.Context, e Enqueuer, req location.ReportRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	reportedAt := req.ReportedAt
	if reportedAt.IsZero() {
		reportedAt = time.Now().UTC()
	}
	task, opts, err := NewLocationReportTask(LocationReportPayload{
		ProviderID:  req.ProviderID,
		Latitude:    req.Location.Latitude,
		Longitude:   req.Location.Longitude,
		IsAvailable: req.IsAvailable,
		ReportedAt:  reportedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to build location task: %w", err)
	}
	if _, err := e.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue location report: %w", err)
	}
	return nil
}

// HandleLocationReport applies a queued report. Malformed payloads are not retried.
func HandleLocationReport(svc location.LocationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p LocationReportPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid location report payload", zap.Error(err))
			return fmt.Errorf("decode location report: %v: %w", err, asynq.SkipRetry)
		}
		req := p.request()
		if err := req.Validate(); err != nil {
			logger.Error("Rejected queued location report", zap.String("providerId", p.ProviderID), zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		res, err := svc.Report(ctx, req)
		if err != nil {
			logger.Warn("Location report failed", zap.String("providerId", p.ProviderID), zap.Error(err))
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		logger.Debug("Processed location report",
			zap.String("providerId", p.ProviderID),
			zap.Bool("applied", res.Applied))
		return nil
	}
}

// HandleLocationSweep removes stale locations.
func HandleLocationSweep(svc location.LocationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		if _, err := svc.SweepStale(ctx); err != nil {
			logger.Warn("Stale location sweep failed", zap.Error(err))
			return err
		}
		return nil
	}
}
