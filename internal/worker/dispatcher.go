package worker

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tulis",
		Subsystem: "grading",
		Name:      "queue_depth",
		Help:      "Number of submissions waiting for a grading worker",
	})

	queueDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tulis",
		Subsystem: "grading",
		Name:      "queue_dropped_total",
		Help:      "Number of submissions that could not be enqueued",
	})

	queueRequeued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tulis",
		Subsystem: "grading",
		Name:      "queue_requeued_total",
		Help:      "Number of stale queued submissions the sweeper rescheduled",
	})
)

// Processor handles a single grading attempt for a submission.
type Processor interface {
	Process(ctx context.Context, submissionID uint)
}

// Dispatcher owns the in-process grading queue. Intake hands submission IDs
// over without waiting; a fixed pool of workers drains the queue.
type Dispatcher struct {
	queue     chan uint
	processor Processor
	workers   int
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher builds a dispatcher with a bounded queue and worker pool.
func NewDispatcher(processor Processor, workers, queueSize int, logger zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Dispatcher{
		queue:     make(chan uint, queueSize),
		processor: processor,
		workers:   workers,
		logger:    logger.With().Str("component", "grading_dispatcher").Logger(),
	}
}

// Start launches the worker pool. Workers run until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i)
	}
}

// Wait blocks until all workers have exited after context cancellation.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue schedules a submission for grading without blocking the caller.
// When the queue is full the submission stays queued in the database and the
// drop is logged; the requeue sweep reschedules it once capacity frees up.
func (d *Dispatcher) Enqueue(submissionID uint) bool {
	select {
	case d.queue <- submissionID:
		queueDepth.Set(float64(len(d.queue)))
		return true
	default:
		queueDropped.Inc()
		d.logger.Error().Uint("submission_id", submissionID).Msg("grading queue full, submission not scheduled")
		return false
	}
}

func (d *Dispatcher) run(ctx context.Context, id int) {
	defer d.wg.Done()

	logger := d.logger.With().Int("worker", id).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case submissionID := <-d.queue:
			queueDepth.Set(float64(len(d.queue)))
			d.process(ctx, submissionID, logger)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, submissionID uint, logger zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Uint("submission_id", submissionID).Interface("panic", r).Msg("grading worker panicked")
		}
	}()

	d.processor.Process(ctx, submissionID)
}
