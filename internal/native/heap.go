// Package native models the handle-based spooler API that the safe wrappers
// in internal/cups are built on.
//
// Every allocation the spooler hands out (destination arrays, destination
// info, option arrays) lives in a Heap and is addressed by a Ptr. Callers
// never see the Go value behind a Ptr directly except through the typed
// accessors in this package.
package native

import (
	"errors"
	"sync"
)

// Ptr is the address of a spooler allocation. The zero value is Null.
type Ptr uintptr

// Null is the address of no allocation.
const Null Ptr = 0

// IsNull reports whether p addresses nothing.
func (p Ptr) IsNull() bool { return p == Null }

// ErrInvalidFree is returned when freeing an address that is not live.
var ErrInvalidFree = errors.New("free of unallocated or already freed address")

// Heap is the allocation table of one spooler.
type Heap struct {
	mu    sync.RWMutex
	slots map[Ptr]any
	next  Ptr
}

func NewHeap() *Heap {
	return &Heap{slots: make(map[Ptr]any), next: 1}
}

// Alloc stores v and returns its address.
func (h *Heap) Alloc(v any) Ptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.next
	h.next++
	h.slots[p] = v
	return p
}

// Load returns the value stored at p.
func (h *Heap) Load(p Ptr) (any, bool) {
	if p.IsNull() {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.slots[p]
	return v, ok
}

// Store replaces the value at a live address, like an in-place realloc.
func (h *Heap) Store(p Ptr, v any) bool {
	if p.IsNull() {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.slots[p]; !ok {
		return false
	}
	h.slots[p] = v
	return true
}

// Free releases p. Freeing Null is a no-op.
func (h *Heap) Free(p Ptr) error {
	if p.IsNull() {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.slots[p]; !ok {
		return ErrInvalidFree
	}
	delete(h.slots, p)
	return nil
}

// Live returns the number of allocations not yet freed.
func (h *Heap) Live() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.slots)
}

// LoadAs loads p and asserts the stored type.
func LoadAs[T any](h *Heap, p Ptr) (T, bool) {
	var zero T
	v, ok := h.Load(p)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
