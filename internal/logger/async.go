package logger

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultQueueSize is the record buffer used when NewAsyncHandler is given
// a non-positive size.
const DefaultQueueSize = 1024

type queued struct {
	ctx context.Context
	h   slog.Handler
	r   slog.Record
}

type queue struct {
	mu     sync.RWMutex
	closed bool
	ch     chan queued
	done   chan struct{}
}

// AsyncHandler hands records to a single writer goroutine. Records from any
// handler derived through WithAttrs or WithGroup share one queue, so output
// order matches the order Handle was called in. Handle blocks only when the
// queue is full.
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

// NewAsyncHandler starts the writer goroutine. Close must be called to
// flush pending records and stop it.
func NewAsyncHandler(next slog.Handler, size int) *AsyncHandler {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &queue{
		ch:   make(chan queued, size),
		done: make(chan struct{}),
	}
	go func() {
		defer close(q.done)
		for item := range q.ch {
			_ = item.h.Handle(item.ctx, item.r)
		}
	}()
	return &AsyncHandler{next: next, q: q}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle enqueues r. After Close, records are written synchronously once the
// queue has drained.
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	if h.q.closed {
		<-h.q.done
		return h.next.Handle(ctx, r)
	}
	h.q.ch <- queued{ctx: context.WithoutCancel(ctx), h: h.next, r: r.Clone()}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

// Close drains the queue and waits for the writer to finish. It is safe to
// call more than once.
func (h *AsyncHandler) Close() error {
	h.q.mu.Lock()
	if !h.q.closed {
		h.q.closed = true
		close(h.q.ch)
	}
	h.q.mu.Unlock()
	<-h.q.done
	return nil
}
