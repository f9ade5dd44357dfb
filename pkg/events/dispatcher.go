package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/pkg/jobs"
	"github.com/noah-isme/alumni-mentorship-api/pkg/middleware/requestid"
)

const jobTypePublish = "publish_event"

// DispatcherConfig tunes asynchronous delivery.
type DispatcherConfig struct {
	Workers        int
	MaxRetries     int
	RetryDelay     time.Duration
	PublishTimeout time.Duration
	// OnResult observes every delivery attempt outcome; err is nil on success.
	OnResult func(eventType string, err error)
	Logger   *zap.Logger
}

// Dispatcher hands events to a Publisher off the request path.
type Dispatcher struct {
	publisher Publisher
	queue     *jobs.Queue
	timeout   time.Duration
	onResult  func(string, error)
	logger    *zap.Logger
}

// NewDispatcher wires publisher behind a retrying worker queue.
func NewDispatcher(publisher Publisher, cfg DispatcherConfig) *Dispatcher {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 10 * time.Second
	}
	d := &Dispatcher{
		publisher: publisher,
		timeout:   cfg.PublishTimeout,
		onResult:  cfg.OnResult,
		logger:    cfg.Logger,
	}
	d.queue = jobs.NewQueue("events", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     cfg.Logger,
		OnFailure: func(job jobs.Job, err error) {
			cfg.Logger.Error("event dropped", zap.String("event_id", job.ID), zap.String("event_type", eventType(job)), zap.Error(err))
		},
	})
	return d
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop halts delivery and closes the publisher.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
	if err := d.publisher.Close(); err != nil {
		d.logger.Warn("failed to close event publisher", zap.Error(err))
	}
}

// Emit schedules evt for delivery. It never blocks on the broker.
func (d *Dispatcher) Emit(ctx context.Context, evt Event) error {
	if d == nil {
		return nil
	}
	if evt.RequestID == "" {
		evt.RequestID = requestid.FromContext(ctx)
	}
	if err := d.queue.Enqueue(jobs.Job{ID: evt.ID, Type: jobTypePublish, Payload: evt}); err != nil {
		d.observe(evt.Type, err)
		return fmt.Errorf("enqueue event %s: %w", evt.Type, err)
	}
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	evt, ok := job.Payload.(Event)
	if !ok {
		d.logger.Error("unexpected event payload", zap.String("job_id", job.ID))
		return nil
	}
	pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err := d.publisher.Publish(pubCtx, evt)
	d.observe(evt.Type, err)
	return err
}

func (d *Dispatcher) observe(eventType string, err error) {
	if d.onResult != nil {
		d.onResult(eventType, err)
	}
}

func eventType(job jobs.Job) string {
	if evt, ok := job.Payload.(Event); ok {
		return evt.Type
	}
	return job.Type
}
