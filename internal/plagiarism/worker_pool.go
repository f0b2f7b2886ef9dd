package plagiarism

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

type Job interface {
	Execute(ctx context.Context) error
}

// WorkerPool runs jobs on a fixed number of goroutines
type WorkerPool struct {
	size   int
	jobs   chan Job
	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	closed sync.Once
}

// NewWorkerPool starts size workers; size <= 0 leaves a quarter of the CPUs
// to the rest of the process
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		cpus := runtime.NumCPU()
		size = max(1, cpus-max(1, cpus/4))
		log.Debug().Int("cpus", cpus).Msg("Sizing worker pool from CPU count")
	}

	poolCtx, stop := context.WithCancel(ctx)
	p := &WorkerPool{
		size: size,
		jobs: make(chan Job, size*2),
		ctx:  poolCtx,
		stop: stop,
	}

	p.wg.Add(size)
	for id := 0; id < size; id++ {
		go p.run(id)
	}

	log.Info().Int("workers", size).Msg("Worker pool initialized")
	return p
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			if err := job.Execute(p.ctx); err != nil {
				log.Error().Err(err).Int("worker", id).Msg("Worker failed to execute job")
			}
		}
	}
}

// Submit queues job, blocking while the queue is full
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Close stops the workers and waits for them; queued jobs are dropped
func (p *WorkerPool) Close() {
	p.closed.Do(func() {
		p.stop()
		p.wg.Wait()
	})
}

func (p *WorkerPool) Size() int {
	return p.size
}
