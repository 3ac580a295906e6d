package syncq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/metrics"
)

const (
	// Concurrency is the worker pool size.
	Concurrency = 5
	// MaxAttempts bounds how many times one job is tried before it is
	// dropped as terminally failed.
	MaxAttempts = 3

	promoteInterval = time.Second
	// claimBackoff is how long a worker waits after a failed claim, so a
	// dead broker does not turn the pool into a busy loop.
	claimBackoff = time.Second
)

// backoff returns the exponential retry delay after the given attempt
// count: 1s, 2s, 4s.
func backoff(attempts int) time.Duration {
	d := time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
	}
	return d
}

// Worker drains the queue with a fixed-size pool. Jobs are independent;
// no cross-job ordering is guaranteed.
type Worker struct {
	queue       Queue
	handler     *Handler
	concurrency int
	logger      zerolog.Logger
}

// NewWorker creates a worker pool over queue.
func NewWorker(queue Queue, handler *Handler, logger zerolog.Logger) *Worker {
	return &Worker{
		queue:       queue,
		handler:     handler,
		concurrency: Concurrency,
		logger:      logger,
	}
}

// Run claims and processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup

	// Promote due retries back onto the pending list.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(promoteInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.queue.PromoteDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
					w.logger.Warn().Err(err).Msg("promoting delayed jobs failed")
				}
			}
		}
	}()

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				job, err := w.queue.Claim(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					w.logger.Warn().Err(err).Msg("claim failed")
					select {
					case <-ctx.Done():
						return
					case <-time.After(claimBackoff):
					}
					continue
				}
				if job == nil {
					continue
				}
				w.process(ctx, job)
			}
		}()
	}

	wg.Wait()
}

// process runs one delivery of a job and applies the retry policy:
// up to MaxAttempts tries with exponential backoff, then the job is
// dropped with a logged terminal failure.
func (w *Worker) process(ctx context.Context, job *Job) {
	job.Attempts++

	err := w.handler.Handle(ctx, job)
	if err == nil {
		metrics.JobsProcessed.WithLabelValues(string(job.Type), "completed").Inc()
		w.logger.Debug().
			Str("job_id", job.ID).
			Str("type", string(job.Type)).
			Int("attempt", job.Attempts).
			Msg("job completed")
		return
	}

	if errors.Is(err, ErrInvalidJob) {
		metrics.JobsProcessed.WithLabelValues(string(job.Type), "failed").Inc()
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("invalid job dropped")
		return
	}

	if job.Attempts >= MaxAttempts {
		metrics.JobsProcessed.WithLabelValues(string(job.Type), "failed").Inc()
		w.logger.Error().
			Err(err).
			Str("job_id", job.ID).
			Str("type", string(job.Type)).
			Int("attempts", job.Attempts).
			Msg("job terminally failed")
		return
	}

	metrics.JobsProcessed.WithLabelValues(string(job.Type), "retried").Inc()
	delay := backoff(job.Attempts)
	w.logger.Warn().
		Err(err).
		Str("job_id", job.ID).
		Int("attempt", job.Attempts).
		Dur("retry_in", delay).
		Msg("job failed, scheduling retry")

	if err := w.queue.Retry(ctx, job, delay); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("scheduling retry failed, job lost")
	}
}
