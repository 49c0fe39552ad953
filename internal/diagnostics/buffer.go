// Package diagnostics keeps a bounded in-memory history of recent errors
// for the admin diagnostics page.
package diagnostics

import (
	"sync"
	"time"
)

// Entry is one recorded error.
type Entry struct {
	Time    time.Time         `json:"time"`
	Source  string            `json:"source"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

// Recorder is the write side used by services.
type Recorder interface {
	Record(source, message string, context map[string]string)
}

// Buffer is a fixed-capacity ring of entries, safe for concurrent use.
// Once full, each new entry overwrites the oldest.
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	size    int
	now     func() time.Time
}

// NewBuffer creates a Buffer holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{entries: make([]Entry, capacity), now: time.Now}
}

// Add stores e, stamping it with the current time when unset.
func (b *Buffer) Add(e Entry) {
	if e.Time.IsZero() {
		e.Time = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = e
	b.next = (b.next + 1) % len(b.entries)
	if b.size < len(b.entries) {
		b.size++
	}
}

// Record implements Recorder.
func (b *Buffer) Record(source, message string, context map[string]string) {
	b.Add(Entry{Source: source, Message: message, Context: context})
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (b *Buffer) Recent(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > b.size {
		n = b.size
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (b.next - i + len(b.entries)) % len(b.entries)
		out = append(out, b.entries[idx])
	}
	return out
}

// Len returns the number of stored entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Capacity returns the maximum number of entries.
func (b *Buffer) Capacity() int {
	return len(b.entries)
}

// Clear drops all entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make([]Entry, len(b.entries))
	b.next = 0
	b.size = 0
}
