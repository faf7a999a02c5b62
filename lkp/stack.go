// Package lkp tracks held keys in press order. The most recently pressed key
// that is still held is the one that sounds (last-key priority).
package lkp

import "go-cvkeys/keys"

// DefaultCapacity is the number of simultaneous presses tracked before new
// presses are dropped
const DefaultCapacity = 20

const nilSlot = -1

// slot is one pool entry. An empty slot has key == keys.None and is linked
// into the free list through next.
type slot struct {
	key  keys.ID
	prev int16
	next int16
}

// Stack is a fixed pool of slots threaded by an index-based doubly linked
// list in press order. It is not safe for concurrent use; one goroutine owns it.
type Stack struct {
	pool  []slot
	index [256]int16 // key -> slot, nilSlot if not held

	head, tail int16
	free       int16
	n          int

	dropped uint64
}

// New allocates a stack with room for capacity held keys
func New(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > 255 {
		capacity = 255
	}
	s := &Stack{pool: make([]slot, capacity)}
	s.Reset()
	return s
}

// Reset releases every key
func (s *Stack) Reset() {
	for i := range s.index {
		s.index[i] = nilSlot
	}
	for i := range s.pool {
		s.pool[i] = slot{key: keys.None, prev: nilSlot, next: int16(i + 1)}
	}
	s.pool[len(s.pool)-1].next = nilSlot
	s.free = 0
	s.head, s.tail = nilSlot, nilSlot
	s.n = 0
}

// Push records a press as the newest held key. It returns false when the
// press could not be tracked: the sentinel key, or an exhausted pool. A
// dropped press is counted and its later release is a no-op. Pressing a key
// that is already held moves it to the top.
func (s *Stack) Push(id keys.ID) bool {
	if id == keys.None {
		return false
	}
	if i := s.index[id]; i != nilSlot {
		if i != s.tail {
			s.unlink(i)
			s.linkTail(i)
		}
		return true
	}
	if s.free == nilSlot {
		s.dropped++
		return false
	}

	i := s.free
	s.free = s.pool[i].next
	s.pool[i].key = id
	s.index[id] = i
	s.linkTail(i)
	s.n++
	return true
}

// Pop removes a released key from anywhere in the order and returns true if
// it was the sounding (top) key. Keys that are not held are ignored.
func (s *Stack) Pop(id keys.ID) bool {
	if id == keys.None {
		return false
	}
	i := s.index[id]
	if i == nilSlot {
		return false
	}
	wasTop := i == s.tail

	s.unlink(i)
	s.index[id] = nilSlot
	s.pool[i] = slot{key: keys.None, prev: nilSlot, next: s.free}
	s.free = i
	s.n--
	return wasTop
}

// Current returns the sounding key
func (s *Stack) Current() (keys.ID, bool) {
	if s.tail == nilSlot {
		return keys.None, false
	}
	return s.pool[s.tail].key, true
}

// Contains reports whether id is held and tracked
func (s *Stack) Contains(id keys.ID) bool {
	return s.index[id] != nilSlot
}

// Len returns the number of tracked keys
func (s *Stack) Len() int { return s.n }

// Cap returns the pool size
func (s *Stack) Cap() int { return len(s.pool) }

// Dropped returns how many presses were lost to pool exhaustion
func (s *Stack) Dropped() uint64 { return s.dropped }

// AppendKeys appends the held keys, oldest first, to dst
func (s *Stack) AppendKeys(dst []keys.ID) []keys.ID {
	for i := s.head; i != nilSlot; i = s.pool[i].next {
		dst = append(dst, s.pool[i].key)
	}
	return dst
}

func (s *Stack) linkTail(i int16) {
	s.pool[i].prev = s.tail
	s.pool[i].next = nilSlot
	if s.tail != nilSlot {
		s.pool[s.tail].next = i
	} else {
		s.head = i
	}
	s.tail = i
}

func (s *Stack) unlink(i int16) {
	prev, next := s.pool[i].prev, s.pool[i].next
	if prev != nilSlot {
		s.pool[prev].next = next
	} else {
		s.head = next
	}
	if next != nilSlot {
		s.pool[next].prev = prev
	} else {
		s.tail = prev
	}
	s.pool[i].prev, s.pool[i].next = nilSlot, nilSlot
}
