package utils

import (
	"sync"
)

// Mailbox is a single-slot, latest-value-wins cell. Putting a value overwrites any value not yet
// taken, so a consumer only ever acts on the most recent one.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
	ready chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

// Put stores v, dropping any value not yet taken. It reports whether a value was dropped.
func (mb *Mailbox[T]) Put(v T) bool {
	mb.mu.Lock()
	dropped := mb.full
	mb.value = v
	mb.full = true
	mb.mu.Unlock()

	select {
	case mb.ready <- struct{}{}:
	default:
	}
	return dropped
}

// Take removes and returns the current value, if any.
func (mb *Mailbox[T]) Take() (T, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var zero T
	if !mb.full {
		return zero, false
	}
	v := mb.value
	mb.value = zero
	mb.full = false
	return v, true
}

// Peek returns the current value without removing it.
func (mb *Mailbox[T]) Peek() (T, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.value, mb.full
}

// Ready is signalled at least once after every Put. A receive does not guarantee a value is
// still present, since another consumer may have taken it.
func (mb *Mailbox[T]) Ready() <-chan struct{} {
	return mb.ready
}
