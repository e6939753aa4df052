// Package chronicle holds the bounded histories the dashboard renders:
// narrated commentary and the raw system log.
package chronicle

import (
	"fmt"
	"time"
)

// Ring is a fixed-capacity FIFO. Pushing onto a full ring evicts the oldest
// entry. Ring is not safe for concurrent use; the owner serializes access.
type Ring[T any] struct {
	buf   []T
	start int
	size  int
}

// NewRing creates a ring holding at most capacity entries.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry when full.
func (r *Ring[T]) Push(v T) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Items returns a copy of the entries, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Last returns the newest entry.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.buf[(r.start+r.size-1)%len(r.buf)], true
}

// Len returns the number of stored entries.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// NarratedEvent is one line of commentary.
type NarratedEvent struct {
	Speaker string `json:"speaker"`
	Name    string `json:"name"`
	Trigger string `json:"trigger"`
	Text    string `json:"text"`
}

// LogLine is one raw log entry.
type LogLine struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

func (l LogLine) String() string {
	return fmt.Sprintf("[%s] %s", l.Time.Format("15:04:05"), l.Text)
}
