package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"propertyservices/config"
	"propertyservices/services/location"
	"propertyservices/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection for the task queue database.
func QueueRedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// LocationWorker runs the location report consumer and the periodic stale sweep.
type LocationWorker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
	redisOpt  asynq.RedisClientOpt
	done      chan struct{}
	stopOnce  sync.Once
}

const redisPingInterval = 10 * time.Second

// NewLocationWorker wires the task handlers. The sweep is scheduled every
// cfg.LocationSweepInterval.
func NewLocationWorker(cfg config.Config, svc location.LocationService, logger *zap.Logger) (*LocationWorker, error) {
	redisOpt := QueueRedisOpt(cfg)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			tasks.QueueLocations: 6,
			"default":            1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeLocationReport, tasks.HandleLocationReport(svc, logger))
	mux.HandleFunc(tasks.TypeLocationSweep, tasks.HandleLocationSweep(svc, logger))

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	spec := fmt.Sprintf("@every %s", cfg.LocationSweepInterval)
	if _, err := scheduler.Register(spec, tasks.NewLocationSweepTask(), asynq.Unique(cfg.LocationSweepInterval)); err != nil {
		return nil, fmt.Errorf("failed to schedule location sweep: %w", err)
	}

	return &LocationWorker{
		server:    srv,
		scheduler: scheduler,
		mux:       mux,
		logger:    logger,
		redisOpt:  redisOpt,
		done:      make(chan struct{}),
	}, nil
}

// Start launches the server and scheduler, retrying the server start with backoff. Shutdown
// is left to the caller.
func (w *LocationWorker) Start() {
	go w.monitorRedisConnection(redisPingInterval)

	go func() {
		w.logger.Info("Starting location worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.server.Start(w.mux)
			if err == nil {
				break
			}
			w.logger.Error("Location worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Fatal("Location worker exhausted start attempts")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
		if err := w.scheduler.Start(); err != nil {
			w.logger.Error("Location sweep scheduler failed to start", zap.Error(err))
		}
	}()
}

// Shutdown stops the connection monitor and the scheduler, then drains in-flight tasks.
func (w *LocationWorker) Shutdown() {
	w.stopMonitor()
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func (w *LocationWorker) stopMonitor() {
	w.stopOnce.Do(func() { close(w.done) })
}

// monitorRedisConnection pings the queue database every interval until the worker shuts down.
func (w *LocationWorker) monitorRedisConnection(interval time.Duration) {
	client := redis.NewClient(&redis.Options{
		Addr:     w.redisOpt.Addr,
		Password: w.redisOpt.Password,
		DB:       w.redisOpt.DB,
	})
	defer client.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if err := client.Ping(ctx).Err(); err != nil {
				w.logger.Warn("Queue Redis connection lost", zap.Error(err))
			}
			cancel()
		}
	}
}
