// Package persist runs best-effort state writes on a single ordered worker.
package persist

import (
	"log/slog"
	"sync"

	"github.com/starford/stickies/internal/apperr"
)

// ErrorSink receives failures of fire-and-forget tasks.
type ErrorSink interface {
	Report(op string, err error)
}

// LogSink reports failures to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// Report logs err at Error level.
func (s LogSink) Report(op string, err error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("persist: task failed",
		slog.String("op", op),
		slog.String("error", err.Error()))
}

type task struct {
	op   string
	fn   func() error
	done chan error // nil for fire-and-forget
}

// Queue executes tasks one at a time in submission order.
//
// Concurrency model: a single worker goroutine drains an unbounded FIFO so
// that submitting never blocks the caller, even from inside another task.
type Queue struct {
	sink ErrorSink

	mu      sync.Mutex
	cond    *sync.Cond
	pending []task
	busy    bool
	closed  bool

	stopped chan struct{}
}

// NewQueue starts the worker. A nil sink logs to slog.Default.
func NewQueue(sink ErrorSink) *Queue {
	if sink == nil {
		sink = LogSink{}
	}
	q := &Queue{
		sink:    sink,
		stopped: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.stopped)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending[0] = task{}
		q.pending = q.pending[1:]
		q.busy = true
		q.mu.Unlock()

		err := t.fn()
		if t.done != nil {
			t.done <- err
		} else if err != nil {
			q.sink.Report(t.op, err)
		}

		q.mu.Lock()
		q.busy = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}

func (q *Queue) submit(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.pending = append(q.pending, t)
	q.cond.Broadcast()
	return true
}

// Go enqueues fn without waiting. Its error goes to the sink.
func (q *Queue) Go(op string, fn func() error) {
	if !q.submit(task{op: op, fn: fn}) {
		q.sink.Report(op, apperr.ErrClosed)
	}
}

// Do enqueues fn and waits for its result. Because tasks run in order, fn
// observes the effect of every task submitted before it. Do must not be
// called from inside a queued task.
func (q *Queue) Do(op string, fn func() error) error {
	done := make(chan error, 1)
	if !q.submit(task{op: op, fn: fn, done: done}) {
		return apperr.ErrClosed
	}
	return <-done
}

// Flush blocks until every task submitted so far has run.
func (q *Queue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) > 0 || q.busy {
		q.cond.Wait()
	}
}

// Close drains pending tasks and stops the worker. Later submissions fail
// with apperr.ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.stopped
}
