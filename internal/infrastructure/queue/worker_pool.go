package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is shut down")

type WorkerPool struct {
	jobChan     chan Job
	workerCount int
	logger      *zap.Logger

	wg      sync.WaitGroup
	ctx     context.Context    // cancelled on shutdown
	cancel  context.CancelFunc // cancelled on shutdown
	startMu sync.Mutex
	started bool
}

func NewWorkerPool(workerCount, queueSize int, logger *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobChan:     make(chan Job, queueSize),
		workerCount: workerCount,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (p *WorkerPool) Start(handler Handler) {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workerCount; i++ {
		worker := &Worker{
			ID:      i,
			JobChan: p.jobChan,
			Wg:      &p.wg,
			Handler: handler,
			Logger:  p.logger,
		}
		p.wg.Add(1)
		worker.Start(p.ctx)
	}
	p.logger.Info("Worker pool started", zap.Int("workers", p.workerCount))
}

// AddJob enqueues job without blocking the caller. When the buffer is full the send
// is handed to a goroutine that waits for room or for shutdown.
func (p *WorkerPool) AddJob(job Job) error {
	if p.ctx.Err() != nil {
		return ErrPoolClosed
	}
	select {
	case p.jobChan <- job:
	default:
		p.logger.Warn("Job queue full, deferring enqueue", zap.String("job_id", job.JobID))
		go func() {
			select {
			case p.jobChan <- job:
			case <-p.ctx.Done():
			}
		}()
	}
	return nil
}

// Pending returns the number of jobs waiting in the buffer.
func (p *WorkerPool) Pending() int {
	return len(p.jobChan)
}

// Shutdown cancels in-flight work and waits for every worker to return.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}
