package worker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job represents a unit of background work.
type Job interface {
	Execute(ctx context.Context) error // performs the work within the given deadline
	ID() string                        // identifies the job in logs
}

// Worker pulls jobs from the dispatcher's queue until it is closed.
type Worker struct {
	ID      int
	queue   <-chan Job
	timeout time.Duration
	logger  logrus.FieldLogger
	wg      *sync.WaitGroup
}

// NewWorker creates a new Worker reading from queue.
func NewWorker(id int, queue <-chan Job, timeout time.Duration, logger logrus.FieldLogger, wg *sync.WaitGroup) Worker {
	return Worker{
		ID:      id,
		queue:   queue,
		timeout: timeout,
		logger:  logger.WithField("worker_id", id),
		wg:      wg,
	}
}

// Start makes the Worker process jobs in its own goroutine.
func (w Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for job := range w.queue {
			w.run(job)
		}
		w.logger.Debug("worker stopped")
	}()
}

func (w Worker) run(job Job) {
	logger := w.logger.WithField("job_id", job.ID())
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Error("job panicked")
		}
	}()

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		logger.WithError(err).Warn("job failed")
		return
	}
	logger.WithField("duration", time.Since(start).String()).Debug("job finished")
}

// Dispatcher owns a bounded job queue drained by a fixed set of workers.
type Dispatcher struct {
	MaxWorkers int
	JobQueue   chan Job
	Workers    []Worker

	timeout time.Duration
	logger  logrus.FieldLogger
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher with maxWorkers workers, a queue of
// jobQueueSize and a per-job timeout. A nil logger discards output.
func NewDispatcher(maxWorkers, jobQueueSize int, timeout time.Duration, logger logrus.FieldLogger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if jobQueueSize < 0 {
		jobQueueSize = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		timeout:    timeout,
		logger:     logger.WithField("component", "dispatcher"),
	}
}

// Run starts the workers.
func (d *Dispatcher) Run() {
	for i := 1; i <= d.MaxWorkers; i++ {
		worker := NewWorker(i, d.JobQueue, d.timeout, d.logger, &d.wg)
		d.Workers = append(d.Workers, worker)
		worker.Start()
	}
	d.logger.WithField("workers", d.MaxWorkers).Info("dispatcher running")
}

// SubmitJob enqueues job without blocking. It reports false when the queue is
// full or the dispatcher has been stopped; the job is then dropped.
func (d *Dispatcher) SubmitJob(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.logger.WithField("job_id", job.ID()).Warn("dispatcher stopped, job dropped")
		return false
	}
	select {
	case d.JobQueue <- job:
		return true
	default:
		d.logger.WithField("job_id", job.ID()).Warn("job queue full, job dropped")
		return false
	}
}

// Stop refuses new jobs, lets the workers finish everything already queued
// and waits for them to exit. It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.JobQueue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}
