package tree

import (
	"math"
)

// nodeIdx addresses a node slot inside the arena. Zero is the nil node.
type nodeIdx uint32

const nilIdx nodeIdx = 0

// avlNode is the storage unit of the tree.
// Children are owning links, parent is a back-reference.
// balance = height(right) - height(left), always in {-1, 0, 1}.
// gen is bumped every time the slot is recycled so that cursors
// holding an old (idx, gen) pair can detect it.
type avlNode[T any] struct {
	value   T
	parent  nodeIdx
	left    nodeIdx
	right   nodeIdx
	gen     uint32
	balance int8
	inUse   bool
}

// nodeArena owns every node of a tree. Slot 0 is reserved.
// Freed slots are recycled LIFO.
//
// Pointers returned by at() are only valid until the next allocate().
type nodeArena[T any] struct {
	nodes    []avlNode[T]
	recycled []nodeIdx
}

func newNodeArena[T any](capacity int) *nodeArena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &nodeArena[T]{
		nodes:    make([]avlNode[T], 1, capacity+1),
		recycled: make([]nodeIdx, 0, 16),
	}
}

func (arena *nodeArena[T]) allocate(val T, parent nodeIdx) nodeIdx {
	if l := len(arena.recycled); l > 0 {
		idx := arena.recycled[l-1]
		arena.recycled = arena.recycled[:l-1]
		node := &arena.nodes[idx]
		node.value = val
		node.parent = parent
		node.inUse = true
		return idx
	}
	if uint64(len(arena.nodes)) >= math.MaxUint32 {
		panic( /* allocation failure is fatal */ "[avl] node arena exhausted")
	}
	arena.nodes = append(arena.nodes, avlNode[T]{
		value:  val,
		parent: parent,
		inUse:  true,
	})
	return nodeIdx(len(arena.nodes) - 1)
}

func (arena *nodeArena[T]) recycle(idx nodeIdx) {
	node := &arena.nodes[idx]
	gen := node.gen + 1
	*node = avlNode[T]{gen: gen}
	arena.recycled = append(arena.recycled, idx)
}

func (arena *nodeArena[T]) at(idx nodeIdx) *avlNode[T] {
	return &arena.nodes[idx]
}

// live reports whether (idx, gen) still names an allocated node.
func (arena *nodeArena[T]) live(idx nodeIdx, gen uint32) bool {
	if idx == nilIdx || int(idx) >= len(arena.nodes) {
		return false
	}
	node := &arena.nodes[idx]
	return node.inUse && node.gen == gen
}

// reset drops every node. Generations keep growing so that handles taken
// before the reset never match a slot allocated after it.
func (arena *nodeArena[T]) reset() {
	arena.recycled = arena.recycled[:0]
	for i := len(arena.nodes) - 1; i > 0; i-- {
		gen := arena.nodes[i].gen + 1
		arena.nodes[i] = avlNode[T]{gen: gen}
		arena.recycled = append(arena.recycled, nodeIdx(i))
	}
}

func (arena *nodeArena[T]) slots() int {
	return len(arena.nodes)
}

func (arena *nodeArena[T]) recycledLen() int {
	return len(arena.recycled)
}
