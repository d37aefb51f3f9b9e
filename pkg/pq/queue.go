// Package pq provides a generic min-priority queue used by the shortest-path
// engine.
//
// The queue is a binary heap. Every entry carries an insertion sequence number,
// so entries with equal priority are dequeued in the order they were enqueued.
package pq

import "errors"

// ErrEmptyQueue is the panic value raised by Dequeue on an empty queue.
// Callers must check IsEmpty first.
var ErrEmptyQueue = errors.New("pq: dequeue on empty queue")

// Item is a queue entry.
type Item[T any] struct {
	Value    T
	Priority float64
}

type entry[T any] struct {
	item Item[T]
	seq  uint64
}

// Queue is a min-priority queue. Duplicate values and duplicate priorities
// are allowed; nothing is deduplicated. The zero value is an empty queue.
type Queue[T any] struct {
	items []entry[T]
	seq   uint64
}

// New returns an empty queue with room for capacity entries.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{items: make([]entry[T], 0, capacity)}
}

// Len returns the number of entries, stale ones included.
func (q *Queue[T]) Len() int { return len(q.items) }

// IsEmpty reports whether the queue holds no entries.
func (q *Queue[T]) IsEmpty() bool { return len(q.items) == 0 }

// Enqueue inserts value with the given priority. +Inf is a valid priority.
func (q *Queue[T]) Enqueue(value T, priority float64) {
	q.items = append(q.items, entry[T]{item: Item[T]{Value: value, Priority: priority}, seq: q.seq})
	q.seq++
	q.siftUp(len(q.items) - 1)
}

// Dequeue removes and returns the entry with the smallest priority.
// It panics with ErrEmptyQueue if the queue is empty.
func (q *Queue[T]) Dequeue() Item[T] {
	n := len(q.items)
	if n == 0 {
		panic(ErrEmptyQueue)
	}
	top := q.items[0]
	q.items[0] = q.items[n-1]
	q.items[n-1] = entry[T]{}
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return top.item
}

// Peek returns the minimum entry without removing it.
func (q *Queue[T]) Peek() (Item[T], bool) {
	if len(q.items) == 0 {
		return Item[T]{}, false
	}
	return q.items[0].item, true
}

// Reset empties the queue, keeping its backing storage.
func (q *Queue[T]) Reset() {
	clear(q.items)
	q.items = q.items[:0]
	q.seq = 0
}

// siftUp uses hole-sift: the floating entry is held aside and written once.
func (q *Queue[T]) siftUp(i int) {
	e := q.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if !less(e, q.items[parent]) {
			break
		}
		q.items[i] = q.items[parent]
		i = parent
	}
	q.items[i] = e
}

func (q *Queue[T]) siftDown(i int) {
	n := len(q.items)
	e := q.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && less(q.items[right], q.items[child]) {
			child = right
		}
		if !less(q.items[child], e) {
			break
		}
		q.items[i] = q.items[child]
		i = child
	}
	q.items[i] = e
}

// less orders by priority, then by insertion sequence.
func less[T any](a, b entry[T]) bool {
	if a.item.Priority != b.item.Priority {
		return a.item.Priority < b.item.Priority
	}
	return a.seq < b.seq
}
