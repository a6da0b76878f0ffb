package queue

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Handler executes one queued job. The context is cancelled when the pool shuts down.
type Handler func(ctx context.Context, job Job) error

type Worker struct {
	ID      int        // worker id
	JobChan <-chan Job // shared queue
	Wg      *sync.WaitGroup
	Handler Handler
	Logger  *zap.Logger
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case job, ok := <-w.JobChan:
				if !ok {
					w.Logger.Debug("Job channel closed", zap.Int("worker", w.ID))
					return
				}
				select {
				case <-ctx.Done():
					w.Logger.Info("Job dropped, pool is stopping",
						zap.Int("worker", w.ID),
						zap.String("job_id", job.JobID),
					)
					continue
				default:
					w.processJob(ctx, job)
				}
			case <-ctx.Done():
				w.Logger.Debug("Worker stopping", zap.Int("worker", w.ID))
				return
			}
		}
	}()
}

func (w *Worker) processJob(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			w.Logger.Error("Job handler panicked",
				zap.Int("worker", w.ID),
				zap.String("job_id", job.JobID),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	w.Logger.Debug("Processing job",
		zap.Int("worker", w.ID),
		zap.String("type", string(job.Type)),
		zap.String("job_id", job.JobID),
	)

	if err := w.Handler(ctx, job); err != nil {
		w.Logger.Warn("Job failed",
			zap.Int("worker", w.ID),
			zap.String("job_id", job.JobID),
			zap.Error(err),
		)
	}
}
