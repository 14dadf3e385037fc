package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ghplayer/internal/logging"
)

// ErrStopped is returned for jobs submitted to, or still queued on, a stopped worker.
var ErrStopped = errors.New("worker stopped")

type job struct {
	id       string
	name     string
	enqueued time.Time
	run      func(ctx context.Context)
	abort    func(err error)
}

// Worker executes jobs sequentially in FIFO order.
type Worker struct {
	mu      sync.Mutex
	pending []job
	notify  chan struct{}
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *Metrics
	active  string
}

// Option customizes a Worker.
type Option func(*Worker)

// WithMetrics records queue depth and job outcomes.
func WithMetrics(m *Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// New constructs an idle worker. Call Start before submitting.
func New(logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		notify: make(chan struct{}, 1),
		logger: logging.NewComponentLogger(logger, "worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the processing goroutine.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	go w.loop(runCtx)
	return nil
}

// Stop cancels the running job's context, fails queued jobs, and waits for the
// goroutine to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.mu.Lock()
	drained := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, j := range drained {
		j.abort(ErrStopped)
	}
	w.metrics.setDepth(0)
}

// Depth returns the number of jobs waiting to start.
func (w *Worker) Depth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Active returns the name of the running job, if any.
func (w *Worker) Active() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Running reports whether Start has been called without a matching Stop.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Submit queues fn and returns immediately. name labels the job in logs and metrics.
func Submit[T any](w *Worker, name string, fn func(ctx context.Context) (T, error)) *Future[T] {
	id := uuid.NewString()
	future := newFuture[T](id)
	var zero T

	j := job{
		id:       id,
		name:     name,
		enqueued: time.Now(),
		run: func(ctx context.Context) {
			val, err := safeCall(ctx, fn)
			future.complete(val, err)
		},
		abort: func(err error) {
			future.complete(zero, err)
		},
	}

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		future.complete(zero, ErrStopped)
		return future
	}
	w.pending = append(w.pending, j)
	depth := len(w.pending)
	w.mu.Unlock()

	w.metrics.setDepth(depth)
	select {
	case w.notify <- struct{}{}:
	default:
	}
	return future
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		j, ok := w.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-w.notify:
				continue
			}
		}
		if ctx.Err() != nil {
			j.abort(ErrStopped)
			return
		}
		w.execute(ctx, j)
	}
}

func (w *Worker) next() (job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return job{}, false
	}
	j := w.pending[0]
	w.pending[0] = job{}
	w.pending = w.pending[1:]
	w.active = j.name
	w.metrics.setDepth(len(w.pending))
	return j, true
}

func (w *Worker) execute(ctx context.Context, j job) {
	jobCtx := logging.WithJobID(ctx, j.id)
	logger := logging.WithContext(jobCtx, w.logger)
	start := time.Now()
	logger.Debug("job started",
		logging.String("job", j.name),
		logging.Duration("queued_for", start.Sub(j.enqueued)),
	)

	j.run(jobCtx)

	elapsed := time.Since(start)
	w.metrics.observeJob(j.name, elapsed)
	logger.Debug("job finished",
		logging.String("job", j.name),
		logging.Duration("elapsed", elapsed),
	)

	w.mu.Lock()
	w.active = ""
	w.mu.Unlock()
}

func safeCall[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			val = zero
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}
