package core

import (
	"errors"
)

// Trace represents a simple FIFO queue of executed-instruction
// lines, kept around for post-mortem dumps.
type Trace struct {
	items   []string
	size    int // Current number of elements in the queue
	maxSize int
}

// NewTrace creates a new empty trace queue.
func NewTrace(maxSize int) *Trace {
	t := &Trace{}
	t.maxSize = maxSize
	return t
}

// Push adds a line to the rear of the queue, dropping the oldest
// once the queue is full.
func (t *Trace) Push(line string) {
	if t.size == t.maxSize {
		t.Pop()
	}
	t.items = append(t.items, line)
	t.size++
}

// Pop removes and returns the line from the front of the queue.
func (t *Trace) Pop() (string, error) {
	if t.size == 0 {
		return "", errors.New("trace is empty")
	}
	front := t.items[0]
	t.items = t.items[1:]
	t.size--
	return front, nil
}

// IsEmpty checks if the queue is empty.
func (t *Trace) IsEmpty() bool {
	return t.size == 0
}

// Lines returns the buffered lines oldest first without draining.
func (t *Trace) Lines() []string {
	out := make([]string, len(t.items))
	copy(out, t.items)
	return out
}
