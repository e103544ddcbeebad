// Package mailbox hands values from one producer goroutine to one consumer
// goroutine where only the most recent value matters.
//
// Publish never blocks: an unconsumed value is overwritten and counted as a drop.
// Next blocks until a value is available, the mailbox is closed, or the context
// is done. There is no queue to drain, so a slow consumer always sees the latest
// value instead of a backlog.
package mailbox

import (
	"context"
	"sync"
	"sync/atomic"
)

type Latest[T any] struct {
	slot      chan T
	done      chan struct{}
	closeOnce sync.Once

	published atomic.Uint64
	drops     atomic.Uint64
}

func New[T any]() *Latest[T] {
	return &Latest[T]{
		slot: make(chan T, 1),
		done: make(chan struct{}),
	}
}

// Publish stores v, replacing any value the consumer has not read yet.
// Must only be called from a single goroutine.
func (m *Latest[T]) Publish(v T) {
	select {
	case <-m.done:
		return
	default:
	}

	m.published.Add(1)
	for {
		select {
		case m.slot <- v:
			return
		default:
		}

		// slot full: discard the stale value; if the consumer beat us to it the
		// next send succeeds anyway.
		select {
		case <-m.slot:
			m.drops.Add(1)
		default:
		}
	}
}

// Next returns the latest value. ok is false once the mailbox is closed and
// empty, or when ctx is done.
func (m *Latest[T]) Next(ctx context.Context) (v T, ok bool) {
	select {
	case v = <-m.slot:
		return v, true
	default:
	}

	select {
	case v = <-m.slot:
		return v, true
	case <-m.done:
		// a value published right before Close is still delivered
		select {
		case v = <-m.slot:
			return v, true
		default:
			return v, false
		}
	case <-ctx.Done():
		return v, false
	}
}

func (m *Latest[T]) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

func (m *Latest[T]) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *Latest[T]) Published() uint64 { return m.published.Load() }
func (m *Latest[T]) Drops() uint64     { return m.drops.Load() }
