package undokv

import (
	"slices"
	"sort"
)

// MemHead is a transient in-memory head store intended for tests.
type MemHead struct {
	items map[string][]byte
}

func NewMemHead() *MemHead {
	return &MemHead{items: make(map[string][]byte)}
}

func (h *MemHead) Get(key []byte) ([]byte, bool, error) {
	v, ok := h.items[string(key)]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (h *MemHead) Put(key, value []byte) error {
	h.items[string(key)] = slices.Clone(value)
	return nil
}

func (h *MemHead) Delete(key []byte) error {
	delete(h.items, string(key))
	return nil
}

func (h *MemHead) Len() int {
	return len(h.items)
}

// Keys returns all stored keys in sorted order.
func (h *MemHead) Keys() [][]byte {
	keys := make([]string, 0, len(h.items))
	for k := range h.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([][]byte, len(keys))
	for i, k := range keys {
		result[i] = []byte(k)
	}
	return result
}

var _ Store = (*MemHead)(nil)
