package model

import (
	"errors"
	"sync"
)

// ErrBatchBusy is returned when the batch is mutated during an upload run
var ErrBatchBusy = errors.New("batch is locked by a running upload")

// Batch holds the entries of the most recent scan and guards them against
// selection changes while an upload is running.
type Batch struct {
	mu      sync.RWMutex
	entries []FileEntry
	running bool
}

func NewBatch(entries []FileEntry) *Batch {
	return &Batch{entries: entries}
}

// Replace swaps in a fresh scan result. Selection state of the old batch is lost.
func (b *Batch) Replace(entries []FileEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return ErrBatchBusy
	}
	b.entries = entries
	return nil
}

// Entries returns a copy of the current batch
func (b *Batch) Entries() []FileEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]FileEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func (b *Batch) SetAllSelected(value bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return ErrBatchBusy
	}
	SetAllSelected(b.entries, value)
	return nil
}

// Toggle flips the selection of the entry at index i (0-based)
func (b *Batch) Toggle(i int) error {
	return b.update(i, func(e *FileEntry) { e.Toggle() })
}

// Select sets the selection of the entry at index i (0-based)
func (b *Batch) Select(i int, value bool) error {
	return b.update(i, func(e *FileEntry) { e.Selected = value })
}

// SelectWhere sets Selected=true on every entry matching fn and returns how many matched
func (b *Batch) SelectWhere(fn func(FileEntry) bool) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return 0, ErrBatchBusy
	}
	matched := 0
	for i := range b.entries {
		if fn(b.entries[i]) {
			b.entries[i].Selected = true
			matched++
		}
	}
	return matched, nil
}

func (b *Batch) update(i int, fn func(*FileEntry)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return ErrBatchBusy
	}
	if i < 0 || i >= len(b.entries) {
		return errors.New("entry index out of range")
	}
	fn(&b.entries[i])
	return nil
}

// BeginRun locks the batch for an upload run and returns a snapshot of it
func (b *Batch) BeginRun() ([]FileEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil, ErrBatchBusy
	}
	b.running = true
	out := make([]FileEntry, len(b.entries))
	copy(out, b.entries)
	return out, nil
}

// EndRun releases the lock taken by BeginRun
func (b *Batch) EndRun() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

func (b *Batch) Running() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}
