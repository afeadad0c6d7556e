package services

import (
	"context"
	"sync"
	"time"

	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

type PostCommitJob func(ctx context.Context) error

type postCommitTask struct {
	name string
	run  PostCommitJob
}

// PostCommitDispatcher runs best-effort work after a transaction commits.
// Dispatch never blocks: when the queue is full the job is dropped.
type PostCommitDispatcher struct {
	queue      chan postCommitTask
	jobTimeout time.Duration
	pending    sync.WaitGroup
	workers    sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
}

func NewPostCommitDispatcher(cfg *infrastructures.AppConfig) *PostCommitDispatcher {
	return StartPostCommitDispatcher(cfg.POST_COMMIT_WORKERS, cfg.POST_COMMIT_QUEUE_SIZE, cfg.TX_TIMEOUT)
}

func StartPostCommitDispatcher(workers int, queueSize int, jobTimeout time.Duration) *PostCommitDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Second
	}

	d := &PostCommitDispatcher{
		queue:      make(chan postCommitTask, queueSize),
		jobTimeout: jobTimeout,
	}
	for i := 0; i < workers; i++ {
		d.workers.Add(1)
		go d.work()
	}
	return d
}

// Dispatch queues job and reports whether it was accepted.
func (d *PostCommitDispatcher) Dispatch(name string, job PostCommitJob) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		logrus.WithField("job", name).Warn("post-commit dispatcher stopped, job dropped")
		return false
	}

	d.pending.Add(1)
	select {
	case d.queue <- postCommitTask{name: name, run: job}:
		return true
	default:
		d.pending.Done()
		logrus.WithField("job", name).Warn("post-commit queue full, job dropped")
		return false
	}
}

// Flush blocks until every accepted job has finished.
func (d *PostCommitDispatcher) Flush() {
	d.pending.Wait()
}

// Shutdown stops accepting jobs, drains the queue and waits for the workers
// or for ctx to expire.
func (d *PostCommitDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *PostCommitDispatcher) work() {
	defer d.workers.Done()
	for task := range d.queue {
		d.run(task)
	}
}

func (d *PostCommitDispatcher) run(task postCommitTask) {
	defer d.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("job", task.name).Errorf("post-commit job panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	if err := task.run(ctx); err != nil {
		logrus.WithField("job", task.name).Warnf("post-commit job failed: %v", err)
	}
}
