package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// QueuedSource lists submissions still waiting for a grading worker.
type QueuedSource interface {
	StaleQueuedIDs(ctx context.Context, olderThan time.Time) ([]uint, error)
}

// Queue accepts submission ids for grading without blocking.
type Queue interface {
	Enqueue(submissionID uint) bool
}

// Sweeper reschedules submissions that were accepted at intake or rescore but
// never reached a worker, either because the queue was full or because a
// restart emptied the channel. Redelivering an id is harmless: the
// queued-to-processing transition is a compare-and-set, so only one worker
// can claim it.
type Sweeper struct {
	source   QueuedSource
	queue    Queue
	interval time.Duration
	minAge   time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSweeper builds a sweeper. minAge keeps freshly enqueued rows out of the
// sweep so normal deliveries are not duplicated.
func NewSweeper(source QueuedSource, queue Queue, interval, minAge time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if minAge <= 0 {
		minAge = time.Minute
	}

	return &Sweeper{
		source:   source,
		queue:    queue,
		interval: interval,
		minAge:   minAge,
		logger:   logger.With().Str("component", "grading_sweeper").Logger(),
		now:      time.Now,
	}
}

// Start runs an immediate sweep to recover rows left behind by a previous
// process, then sweeps on every tick until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Sweep(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Sweep re-enqueues every stale queued submission and reports how many the
// queue accepted.
func (s *Sweeper) Sweep(ctx context.Context) int {
	ids, err := s.source.StaleQueuedIDs(ctx, s.now().Add(-s.minAge))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list stale queued submissions")
		return 0
	}

	accepted := 0
	for _, id := range ids {
		if !s.queue.Enqueue(id) {
			// Queue filled up again; the rest waits for the next tick.
			break
		}
		accepted++
	}

	if accepted > 0 {
		queueRequeued.Add(float64(accepted))
		s.logger.Warn().Int("requeued", accepted).Int("stale", len(ids)).Msg("rescheduled stale queued submissions")
	}

	return accepted
}
