package graph

import "fmt"

// Vertex states tracked by MinHeap.
const (
	stateUnseen uint8 = iota
	stateQueued
	stateFinalized
)

// heapNode is a single entry in the heap array.
type heapNode struct {
	vertex int
	key    float64
}

// MinHeap is an indexed binary min-heap over vertex ids in [0, capacity).
// It supports decrease-key in O(log n) through a vertex -> slot index and
// remembers which vertices have already been extracted (finalized).
//
// A MinHeap is not safe for concurrent use.
type MinHeap struct {
	nodes     []heapNode
	positions []int
	states    []uint8
}

// NewMinHeap allocates a heap that can track vertex ids in [0, capacity).
func NewMinHeap(capacity int) *MinHeap {
	if capacity < 0 {
		capacity = 0
	}
	return &MinHeap{
		nodes:     make([]heapNode, 0, capacity),
		positions: make([]int, capacity),
		states:    make([]uint8, capacity),
	}
}

// Cap returns the number of vertex ids the heap can track.
func (h *MinHeap) Cap() int { return len(h.positions) }

// Len returns the number of live entries.
func (h *MinHeap) Len() int { return len(h.nodes) }

// IsEmpty reports whether the heap has no live entries.
func (h *MinHeap) IsEmpty() bool { return len(h.nodes) == 0 }

// Insert adds vertex v with the given key.
// Inserting a vertex that is queued or already finalized is a no-op;
// use DecreaseKey to lower the key of a queued vertex.
func (h *MinHeap) Insert(v int, key float64) error {
	if v < 0 || v >= len(h.positions) {
		return fmt.Errorf("%w: vertex %d, capacity %d", ErrCapacityExceeded, v, len(h.positions))
	}
	if h.states[v] != stateUnseen {
		return nil
	}

	h.nodes = append(h.nodes, heapNode{vertex: v, key: key})
	slot := len(h.nodes) - 1
	h.positions[v] = slot
	h.states[v] = stateQueued
	h.siftUp(slot)
	return nil
}

// ExtractMin removes and returns the vertex with the smallest key.
// The second return value is false when the heap is empty.
func (h *MinHeap) ExtractMin() (int, bool) {
	if len(h.nodes) == 0 {
		return -1, false
	}

	root := h.nodes[0]
	last := len(h.nodes) - 1
	h.swap(0, last)
	h.nodes = h.nodes[:last]
	h.states[root.vertex] = stateFinalized

	if last > 0 {
		h.heapify(0)
	}
	return root.vertex, true
}

// DecreaseKey lowers the key of a queued vertex and restores heap order.
// It never raises a key: if key is not strictly smaller than the current
// one, or v is not queued, nothing changes and false is returned.
func (h *MinHeap) DecreaseKey(v int, key float64) bool {
	if !h.Contains(v) {
		return false
	}
	slot := h.positions[v]
	if h.nodes[slot].key <= key {
		return false
	}
	h.nodes[slot].key = key
	h.siftUp(slot)
	return true
}

// Contains reports whether v has a live (not yet extracted) entry.
func (h *MinHeap) Contains(v int) bool {
	return v >= 0 && v < len(h.states) && h.states[v] == stateQueued
}

// Finalized reports whether v has been extracted.
func (h *MinHeap) Finalized(v int) bool {
	return v >= 0 && v < len(h.states) && h.states[v] == stateFinalized
}

// Key returns the current key of a queued vertex.
func (h *MinHeap) Key(v int) (float64, bool) {
	if !h.Contains(v) {
		return 0, false
	}
	return h.nodes[h.positions[v]].key, true
}

// heapify sifts the node at slot i down until both children are larger.
func (h *MinHeap) heapify(i int) {
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < len(h.nodes) && h.nodes[left].key < h.nodes[smallest].key {
			smallest = left
		}
		if right < len(h.nodes) && h.nodes[right].key < h.nodes[smallest].key {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

// siftUp walks the node at slot i towards the root while its parent is larger.
func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.nodes[parent].key <= h.nodes[i].key {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *MinHeap) swap(a, b int) {
	h.nodes[a], h.nodes[b] = h.nodes[b], h.nodes[a]
	h.positions[h.nodes[a].vertex] = a
	h.positions[h.nodes[b].vertex] = b
}
