package sequence

// Queue is a first-in-first-out queue backed by a slice.
// The zero value is an empty queue ready to use.
type Queue[T any] struct {
	items []T
	head  int
}

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{items: make([]T, 0, capacity)}
}

// Push appends value at the back of the queue.
func (q *Queue[T]) Push(value T) {
	q.items = append(q.items, value)
}

// Pop removes and returns the front value.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.Len() == 0 {
		return zero, false
	}
	value := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	q.compact()
	return value, true
}

// Peek returns the front value without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	return q.At(0)
}

// At returns the i-th value counted from the front.
func (q *Queue[T]) At(i int) (T, bool) {
	if i < 0 || i >= q.Len() {
		var zero T
		return zero, false
	}
	return q.items[q.head+i], true
}

func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Clear drops every queued value and keeps the allocated storage.
func (q *Queue[T]) Clear() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}

// Values returns a copy of the queued values, front first.
func (q *Queue[T]) Values() []T {
	out := make([]T, q.Len())
	copy(out, q.items[q.head:])
	return out
}

// compact reclaims the consumed prefix once it dominates the backing array.
func (q *Queue[T]) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head > 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}
