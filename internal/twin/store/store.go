// Package store holds the wedding twin's in-memory state: an ordered
// generic table, a simulated clock, and the MemoryStore aggregate of
// users, sessions and wedding documents.
package store

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
)

type row[T any] struct {
	id  string
	val T
}

// Table is a concurrency-safe keyed collection that lists rows in the order
// they were first inserted.
type Table[T any] struct {
	mu     sync.RWMutex
	prefix string
	seq    uint64
	rows   []row[T]
	index  map[string]int
}

// NewTable creates a Table whose generated ids look like "<prefix>_000001".
func NewTable[T any](prefix string) *Table[T] {
	return &Table[T]{prefix: prefix, index: make(map[string]int)}
}

// NextID allocates the next sequential id.
func (t *Table[T]) NextID() string {
	t.mu.Lock()
	t.seq++
	n := t.seq
	t.mu.Unlock()
	return fmt.Sprintf("%s_%06d", t.prefix, n)
}

// Set stores val under id. Replacing an existing row keeps its position.
func (t *Table[T]) Set(id string, val T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.index[id]; ok {
		t.rows[i].val = val
		return
	}
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, row[T]{id: id, val: val})
}

func (t *Table[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i].val, true
}

// Update runs fn on a copy of the row under id and writes the copy back only
// when fn succeeds. found is false for an unknown id.
func (t *Table[T]) Update(id string, fn func(*T) error) (found bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[id]
	if !ok {
		return false, nil
	}
	val := t.rows[i].val
	if err := fn(&val); err != nil {
		return true, err
	}
	t.rows[i].val = val
	return true, nil
}

// Delete removes the row under id and reports whether it existed.
func (t *Table[T]) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	delete(t.index, id)
	for j := i; j < len(t.rows); j++ {
		t.index[t.rows[j].id] = j
	}
	return true
}

// List returns every value in insertion order.
func (t *Table[T]) List() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.val
	}
	return out
}

// Find returns the first row, in insertion order, accepted by match.
func (t *Table[T]) Find(match func(id string, val T) bool) (string, T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.rows {
		if match(r.id, r.val) {
			return r.id, r.val, true
		}
	}
	var zero T
	return "", zero, false
}

func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Reset drops every row and restarts id allocation.
func (t *Table[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = nil
	t.index = make(map[string]int)
	t.seq = 0
}

// Snapshot copies the rows into a map keyed by id.
func (t *Table[T]) Snapshot() map[string]T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]T, len(t.rows))
	for _, r := range t.rows {
		out[r.id] = r.val
	}
	return out
}

// LoadSnapshot replaces the contents with snap, ordered by id. The id
// sequence moves past any loaded id this table could have generated.
func (t *Table[T]) LoadSnapshot(snap map[string]T) {
	ids := slices.Sorted(maps.Keys(snap))
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = make([]row[T], len(ids))
	t.index = make(map[string]int, len(ids))
	for i, id := range ids {
		t.rows[i] = row[T]{id: id, val: snap[id]}
		t.index[id] = i
		if n, ok := t.seqOf(id); ok && n > t.seq {
			t.seq = n
		}
	}
}

func (t *Table[T]) seqOf(id string) (uint64, bool) {
	digits, ok := strings.CutPrefix(id, t.prefix+"_")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	return n, err == nil
}
