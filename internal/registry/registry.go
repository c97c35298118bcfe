package registry

import "github.com/yanun0323/errors"

var ErrRegistryFull = errors.New("registry is full")

// Registry assigns a dense positive index to each instrument in first-seen
// order within the current run. Index 0 is reserved, so callers size their
// per-instrument arrays at Capacity()+1 and use the index directly.
//
// Assignment is not persisted; a restart may produce a different mapping.
type Registry struct {
	capacity    int
	indexBySym  map[string]int
	symbolByIdx []string
}

// New creates a registry that can hold up to capacity instruments.
func New(capacity int) *Registry {
	if capacity < 0 {
		capacity = 0
	}
	return &Registry{
		capacity:    capacity,
		indexBySym:  make(map[string]int, capacity),
		symbolByIdx: make([]string, 1, capacity+1),
	}
}

// Assign returns the index for symbol, allocating the next one on first
// sight. It fails once capacity instruments have been assigned.
func (r *Registry) Assign(symbol string) (int, error) {
	if idx, ok := r.indexBySym[symbol]; ok {
		return idx, nil
	}
	if len(r.indexBySym) >= r.capacity {
		return 0, ErrRegistryFull
	}
	idx := len(r.symbolByIdx)
	r.indexBySym[symbol] = idx
	r.symbolByIdx = append(r.symbolByIdx, symbol)
	return idx, nil
}

// Lookup returns the index for symbol without assigning one.
func (r *Registry) Lookup(symbol string) (int, bool) {
	idx, ok := r.indexBySym[symbol]
	return idx, ok
}

// Symbol returns the symbol at index, or "" if the index is unassigned.
func (r *Registry) Symbol(index int) string {
	if index <= 0 || index >= len(r.symbolByIdx) {
		return ""
	}
	return r.symbolByIdx[index]
}

// Len is the number of assigned instruments.
func (r *Registry) Len() int {
	return len(r.indexBySym)
}

// Capacity is the maximum number of instruments this registry accepts.
func (r *Registry) Capacity() int {
	return r.capacity
}
