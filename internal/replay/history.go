// Package replay implements the server's bounded digest history used to
// reject replayed ciphertexts.
package replay

import (
	"container/list"
	"sync"
)

// Digest is a SHA-256 hash of a full wire frame (header plus ciphertext).
type Digest [32]byte

// History is a bounded, most-recent-first sequence of digests. Contains
// and Insert are each O(1): a doubly linked list carries recency order,
// a map carries O(1) containment, and the two are kept in lockstep under
// a single mutex, per spec.md section 9's suggested optimization.
type History struct {
	mu    sync.Mutex
	depth int
	order *list.List
	index map[Digest]*list.Element
}

// New builds a History bounded to depth entries. depth must be positive.
func New(depth int) *History {
	return &History{
		depth: depth,
		order: list.New(),
		index: make(map[Digest]*list.Element, depth),
	}
}

// Contains reports whether d has already been recorded.
func (h *History) Contains(d Digest) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.index[d]
	return ok
}

// Insert records d at the front of the history, evicting the oldest entry
// if the configured depth is exceeded. Inserting a digest already present
// is a no-op.
func (h *History) Insert(d Digest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.index[d]; ok {
		return
	}

	h.index[d] = h.order.PushFront(d)

	if h.order.Len() > h.depth {
		oldest := h.order.Back()
		h.order.Remove(oldest)
		delete(h.index, oldest.Value.(Digest))
	}
}

// Len returns the current number of recorded digests.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.order.Len()
}

// Entries returns the recorded digests, most-recent-first. Intended for
// tests; callers must not rely on this for anything performance sensitive.
func (h *History) Entries() []Digest {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := make([]Digest, 0, h.order.Len())
	for e := h.order.Front(); e != nil; e = e.Next() {
		entries = append(entries, e.Value.(Digest))
	}
	return entries
}
