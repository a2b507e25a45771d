// Package queue provides the in-process job dispatch layer. Each pipeline
// phase runs on its own named queue with a small worker pool; a worker owns a
// dequeued job until it finishes or fails.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ezanim/backend/internal/logging"
)

// Handler processes a single job payload. Returning an error marks the job
// failed; the queue itself never retries.
type Handler func(ctx context.Context, payload any) error

// Config controls the concurrency characteristics of a queue.
type Config struct {
	QueueSize int
	Workers   int
}

// ErrClosed is returned when enqueueing after shutdown has begun.
var ErrClosed = errors.New("queue closed")

type job struct {
	id      string
	payload any
}

// Queue is a named bounded worker pool. Enqueue is fire-and-forget: it
// returns an opaque job id immediately and gives no ordering guarantee across
// jobs handled by different workers.
type Queue struct {
	name    string
	handler Handler
	logger  *slog.Logger

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// New constructs a queue and starts its workers.
func New(name string, handler Handler, cfg Config, logger *slog.Logger) *Queue {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		name:    name,
		handler: handler,
		logger:  logger.With(slog.String("queue", name)),
		jobs:    make(chan job, cfg.QueueSize),
	}

	q.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go q.worker()
	}

	return q
}

// Enqueue schedules a job and returns its id without waiting for execution.
// Once accepted, a job is guaranteed to reach the handler: shutdown drains
// the buffer rather than abandoning it.
func (q *Queue) Enqueue(ctx context.Context, payload any) (string, error) {
	j := job{id: uuid.NewString(), payload: payload}

	// The read lock holds off Shutdown's close of the channel until the
	// send has either landed or been abandoned, so the send can never hit
	// a closed channel.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return "", ErrClosed
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case q.jobs <- j:
		metricEnqueued.WithLabelValues(q.name).Inc()
		return j.id, nil
	}
}

// Shutdown stops accepting jobs and waits for the workers to finish every
// job already accepted. It returns ctx.Err() if the drain outlives ctx.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.jobs)
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for j := range q.jobs {
		q.handleJob(j)
	}
}

func (q *Queue) handleJob(j job) {
	start := time.Now()
	metricInFlight.WithLabelValues(q.name).Inc()
	defer metricInFlight.WithLabelValues(q.name).Dec()

	jobLogger := q.logger.With(slog.String("job_id", j.id))
	ctx := logging.WithLogger(context.Background(), jobLogger)

	jobLogger.Info("job started")

	if err := q.handler(ctx, j.payload); err != nil {
		metricFailed.WithLabelValues(q.name).Inc()
		jobLogger.Error("job failed", "error", err, slog.Duration("duration", time.Since(start)))
		return
	}

	metricCompleted.WithLabelValues(q.name).Inc()
	jobLogger.Info("job completed", slog.Duration("duration", time.Since(start)))
}
