// Package slotmap provides a generation-checked arena.
//
// Keys carry the slot index and a sequence number drawn from a single
// monotonically increasing counter. A slot may be reused after removal but
// its new occupant gets a fresh sequence number, so stale keys never resolve.
package slotmap

import (
	"fmt"
	"iter"
)

// Key identifies a value stored in a Map. The zero Key is never valid.
type Key struct {
	index uint32
	seq   uint64
}

// Seq returns the insertion sequence number. Sequence numbers start at 1 and
// strictly increase across inserts on the same Map.
func (k Key) Seq() uint64 {
	return k.seq
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k.seq == 0
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("#%d", k.seq)
}

type slot[T any] struct {
	seq   uint64 // 0 when vacant
	value T
}

// Map is an arena of values addressed by Key. Not safe for concurrent use.
type Map[T any] struct {
	slots   []slot[T]
	free    []uint32
	nextSeq uint64
	length  int
}

// New creates an empty Map.
func New[T any]() *Map[T] {
	return &Map[T]{}
}

// Insert stores v and returns its key.
func (m *Map[T]) Insert(v T) Key {
	m.nextSeq++
	var idx uint32
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		idx = uint32(len(m.slots))
		m.slots = append(m.slots, slot[T]{})
	}
	m.slots[idx] = slot[T]{seq: m.nextSeq, value: v}
	m.length++
	return Key{index: idx, seq: m.nextSeq}
}

// Get returns the value for k.
func (m *Map[T]) Get(k Key) (T, bool) {
	if !m.valid(k) {
		var zero T
		return zero, false
	}
	return m.slots[k.index].value, true
}

// Contains reports whether k refers to a live value.
func (m *Map[T]) Contains(k Key) bool {
	return m.valid(k)
}

// Remove deletes the value for k and returns it.
func (m *Map[T]) Remove(k Key) (T, bool) {
	var zero T
	if !m.valid(k) {
		return zero, false
	}
	v := m.slots[k.index].value
	m.slots[k.index] = slot[T]{}
	m.free = append(m.free, k.index)
	m.length--
	return v, true
}

// Len returns the number of live values.
func (m *Map[T]) Len() int {
	return m.length
}

// All iterates live entries in slot order.
func (m *Map[T]) All() iter.Seq2[Key, T] {
	return func(yield func(Key, T) bool) {
		for i := range m.slots {
			s := &m.slots[i]
			if s.seq == 0 {
				continue
			}
			if !yield(Key{index: uint32(i), seq: s.seq}, s.value) {
				return
			}
		}
	}
}

// Values iterates live values in slot order.
func (m *Map[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (m *Map[T]) valid(k Key) bool {
	return k.seq != 0 && int(k.index) < len(m.slots) && m.slots[k.index].seq == k.seq
}
