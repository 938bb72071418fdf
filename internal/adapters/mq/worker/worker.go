// Package worker runs the write-behind saver that persists store snapshots
// off the request path.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/daybook/internal/adapters/mq/queue"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/pkg/logger"
)

// Source provides the events to persist.
type Source interface {
	All(ctx context.Context) []model.Event
}

// SaveFunc persists a full snapshot of events.
type SaveFunc func(ctx context.Context, events []model.Event) error

// Queue defines how the saver receives requests.
type Queue interface {
	Dequeue() <-chan queue.Request
}

// Saver drains save requests and writes one snapshot per burst of requests.
type Saver struct {
	queue  Queue
	source Source
	save   SaveFunc
	name   string

	// mu serializes writes between Run and Flush.
	mu   sync.Mutex
	done chan struct{}

	logger logger.Logger
}

// NewSaver creates a saver.
func NewSaver(q Queue, source Source, save SaveFunc, opts ...Option) *Saver {
	w := &Saver{
		queue:  q,
		source: source,
		save:   save,
		name:   "saver",
		done:   make(chan struct{}),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes requests until the queue is closed or ctx is cancelled.
func (w *Saver) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			n := 1 + drain(requests)
			if err := w.Flush(ctx); err != nil {
				w.logger.Error(ctx, "save failed", logger.String("reason", r.Reason), logger.Error(err))
				continue
			}
			w.logger.Debug(ctx, "snapshot saved", logger.String("reason", r.Reason), logger.Int("coalesced", n))
		}
	}
}

// drain consumes whatever is already pending without blocking.
func drain(ch <-chan queue.Request) int {
	n := 0
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Flush writes the current snapshot synchronously.
func (w *Saver) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.save(ctx, w.source.All(ctx))
}

// Wait blocks until Run has returned or ctx expires. Close the queue first.
func (w *Saver) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("saver shutdown timed out: %w", ctx.Err())
	}
}
