package workpool

import "sync"

// Queue is a mutex-guarded multi-producer/multi-consumer work queue.
// The zero value is ready to use. Items are handed out in roughly FIFO
// order, but consumers must not rely on ordering for correctness.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// Push adds an item to the queue.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// TryPop removes and returns one item without blocking. It returns the zero
// value and false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
